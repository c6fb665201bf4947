// Package termserver implements xutil.Server on a character terminal
// through github.com/gdamore/tcell/v2.
//
// The screen is treated as a grid of cells of a fixed pixel size, so
// grid-aligned windows and text map one glyph to one terminal cell.
// Glyph bytes are shown as Latin-1 characters in 24-bit color.
package termserver

import (
	"errors"
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/x11util/x11util/xutil"
	"github.com/x11util/x11util/xutil/rgb"
)

var errClosed = errors.New("termserver: closed")

type window struct {
	r      image.Rectangle // pixels, root coordinates
	bg     uint32
	mapped bool
}

type gcontext struct {
	font   xutil.ID
	fg, bg uint32
}

// A Server draws on a tcell screen.
type Server struct {
	screen  tcell.Screen
	cell    xutil.FontMetrics // pixel size of one terminal cell
	next    xutil.ID
	root    xutil.ID
	windows map[xutil.ID]*window
	fonts   map[xutil.ID]xutil.FontMetrics
	gcs     map[xutil.ID]*gcontext
	closed  bool
}

// Open initializes the controlling terminal.
func Open(cell xutil.FontMetrics) (*Server, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("termserver: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("termserver: %w", err)
	}
	return New(s, cell), nil
}

// New returns a server drawing on an initialized screen whose cells
// are cell pixels in size. The Server owns screen; Close finalizes it.
func New(screen tcell.Screen, cell xutil.FontMetrics) *Server {
	if cell.Width <= 0 || cell.Height <= 0 {
		cell = xutil.DefaultFontMetrics
	}
	s := &Server{
		screen:  screen,
		cell:    cell,
		windows: make(map[xutil.ID]*window),
		fonts:   make(map[xutil.ID]xutil.FontMetrics),
		gcs:     make(map[xutil.ID]*gcontext),
	}
	cols, rows := screen.Size()
	s.root = s.alloc()
	s.windows[s.root] = &window{r: image.Rect(0, 0, cols*cell.Width, rows*cell.Height), mapped: true}
	return s
}

func (s *Server) alloc() xutil.ID {
	s.next++
	return s.next
}

func color(pixel uint32) tcell.Color {
	c := rgb.RGBA(pixel)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// floorDiv returns a/b rounded toward negative infinity, for b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// cells converts a pixel rectangle to the cells it touches,
// clipped to the screen.
func (s *Server) cells(r image.Rectangle) image.Rectangle {
	cols, rows := s.screen.Size()
	c := image.Rect(
		floorDiv(r.Min.X, s.cell.Width),
		floorDiv(r.Min.Y, s.cell.Height),
		floorDiv(r.Max.X+s.cell.Width-1, s.cell.Width),
		floorDiv(r.Max.Y+s.cell.Height-1, s.cell.Height),
	)
	return c.Intersect(image.Rect(0, 0, cols, rows))
}

func (s *Server) fill(r image.Rectangle, pixel uint32) {
	st := tcell.StyleDefault.Background(color(pixel))
	c := s.cells(r)
	for y := c.Min.Y; y < c.Max.Y; y++ {
		for x := c.Min.X; x < c.Max.X; x++ {
			s.screen.SetContent(x, y, ' ', nil, st)
		}
	}
}

func (s *Server) Screen() xutil.ScreenInfo {
	r := s.windows[s.root].r
	return xutil.ScreenInfo{
		Root:       s.root,
		BlackPixel: 0x000000,
		WhitePixel: 0xFFFFFF,
		Depth:      24,
		Width:      r.Dx(),
		Height:     r.Dy(),
	}
}

func (s *Server) window(id xutil.ID) (*window, error) {
	if s.closed {
		return nil, errClosed
	}
	w, ok := s.windows[id]
	if !ok {
		return nil, fmt.Errorf("termserver: bad window %d", id)
	}
	return w, nil
}

func (s *Server) CreateWindow(r image.Rectangle, a xutil.WindowAttrs) (xutil.ID, error) {
	if s.closed {
		return 0, errClosed
	}
	if r.Empty() {
		return 0, fmt.Errorf("termserver: bad window size %v", r.Size())
	}
	id := s.alloc()
	s.windows[id] = &window{r: r, bg: a.Background}
	return id, nil
}

func (s *Server) MapWindow(id xutil.ID) error {
	w, err := s.window(id)
	if err != nil {
		return err
	}
	w.mapped = true
	s.fill(w.r, w.bg)
	return nil
}

func (s *Server) DestroyWindow(id xutil.ID) error {
	w, err := s.window(id)
	if err != nil {
		return err
	}
	if id == s.root {
		return fmt.Errorf("termserver: cannot destroy root window")
	}
	if w.mapped {
		s.fill(w.r, s.windows[s.root].bg)
	}
	delete(s.windows, id)
	return nil
}

func (s *Server) Geometry(id xutil.ID) (image.Rectangle, error) {
	w, err := s.window(id)
	if err != nil {
		return image.Rectangle{}, err
	}
	return w.r, nil
}

func (s *Server) ClearArea(id xutil.ID, r image.Rectangle) error {
	w, err := s.window(id)
	if err != nil {
		return err
	}
	if w.mapped {
		s.fill(r.Add(w.r.Min).Intersect(w.r), w.bg)
	}
	return nil
}

// OpenFont accepts any name. The font's metrics are read from the name,
// falling back to the cell size.
func (s *Server) OpenFont(name string) (xutil.ID, error) {
	if s.closed {
		return 0, errClosed
	}
	m, _ := xutil.ParseFontName(name, s.cell)
	id := s.alloc()
	s.fonts[id] = m
	return id, nil
}

func (s *Server) CloseFont(id xutil.ID) error {
	if s.closed {
		return errClosed
	}
	if _, ok := s.fonts[id]; !ok {
		return fmt.Errorf("termserver: bad font %d", id)
	}
	delete(s.fonts, id)
	return nil
}

func (s *Server) AllocNamedColor(name string) (uint32, error) {
	if s.closed {
		return 0, errClosed
	}
	c, ok := rgb.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("termserver: unknown color %q", name)
	}
	return rgb.Pixel(c), nil
}

func (s *Server) CreateGC(drawable, fid xutil.ID, fg, bg uint32) (xutil.ID, error) {
	if _, err := s.window(drawable); err != nil {
		return 0, err
	}
	if _, ok := s.fonts[fid]; !ok {
		return 0, fmt.Errorf("termserver: bad font %d", fid)
	}
	id := s.alloc()
	s.gcs[id] = &gcontext{font: fid, fg: fg, bg: bg}
	return id, nil
}

func (s *Server) FreeGC(id xutil.ID) error {
	if s.closed {
		return errClosed
	}
	if _, ok := s.gcs[id]; !ok {
		return fmt.Errorf("termserver: bad gc %d", id)
	}
	delete(s.gcs, id)
	return nil
}

func (s *Server) gc(drawable, id xutil.ID) (*window, *gcontext, error) {
	w, err := s.window(drawable)
	if err != nil {
		return nil, nil, err
	}
	gc, ok := s.gcs[id]
	if !ok {
		return nil, nil, fmt.Errorf("termserver: bad gc %d", id)
	}
	return w, gc, nil
}

func (s *Server) FillRectangle(drawable, gid xutil.ID, r image.Rectangle) error {
	w, gc, err := s.gc(drawable, gid)
	if err != nil {
		return err
	}
	if w.mapped {
		s.fill(r.Add(w.r.Min).Intersect(w.r), gc.fg)
	}
	return nil
}

// PolyText8 sets one cell per glyph. Like the X request it paints only
// the glyphs, so each cell keeps its background.
func (s *Server) PolyText8(drawable, gid xutil.ID, p image.Point, items []byte) error {
	w, gc, err := s.gc(drawable, gid)
	if err != nil {
		return err
	}
	glyphs, err := xutil.DecodeTextItems(items)
	if err != nil {
		return err
	}
	if !w.mapped {
		return nil
	}
	m := s.fonts[gc.font]
	if m.Width <= 0 || m.Height <= 0 {
		m = s.cell
	}
	fg := color(gc.fg)
	clip := s.cells(w.r)
	top := w.r.Min.Y + p.Y - m.Height + 1
	row := floorDiv(top, s.cell.Height)
	x := w.r.Min.X + p.X
	for _, g := range glyphs {
		x += g.Delta
		col := floorDiv(x, s.cell.Width)
		x += m.Width
		if !image.Pt(col, row).In(clip) {
			continue
		}
		_, _, st, _ := s.screen.GetContent(col, row)
		_, bg, _ := st.Decompose()
		s.screen.SetContent(col, row, rune(g.C), nil, tcell.StyleDefault.Foreground(fg).Background(bg))
	}
	return nil
}

// Sync shows everything drawn so far.
func (s *Server) Sync() error {
	if s.closed {
		return errClosed
	}
	s.screen.Show()
	return nil
}

func (s *Server) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.screen.Fini()
	return nil
}
