// Package imgserver implements xutil.Server by rendering into an
// in-memory image. It needs no X server, which makes it useful for
// tests and for saving what a program would have drawn.
//
// Windows are rectangles of one root image and are painted when mapped.
// Glyphs are drawn with the 7x13 face from golang.org/x/image/font/basicfont,
// one per cell of the metrics named by the font, and glyph bytes are
// taken as Latin-1 code points.
package imgserver

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/x11util/x11util/xutil"
	"github.com/x11util/x11util/xutil/rgb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var errClosed = errors.New("imgserver: closed")

// An Op records one PolyText8 request.
type Op struct {
	Window xutil.ID
	GC     xutil.ID
	Fg, Bg uint32
	At     image.Point // baseline origin in window coordinates
	Text   string      // glyph bytes
}

type window struct {
	r      image.Rectangle // in root coordinates
	attrs  xutil.WindowAttrs
	mapped bool
}

type gcontext struct {
	drawable xutil.ID
	font     xutil.ID
	fg, bg   uint32
}

// A Server is an in-memory display server with a single TrueColor screen.
type Server struct {
	img     *image.RGBA
	root    xutil.ID
	next    xutil.ID
	windows map[xutil.ID]*window
	fonts   map[xutil.ID]xutil.FontMetrics
	gcs     map[xutil.ID]*gcontext
	ops     []Op
	allocs  int
	syncs   int
	closed  bool
}

// New returns a server whose screen is width by height pixels, initially black.
func New(width, height int) *Server {
	s := &Server{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		windows: make(map[xutil.ID]*window),
		fonts:   make(map[xutil.ID]xutil.FontMetrics),
		gcs:     make(map[xutil.ID]*gcontext),
	}
	draw.Draw(s.img, s.img.Bounds(), image.Black, image.Point{}, draw.Src)
	s.root = s.alloc()
	s.windows[s.root] = &window{r: s.img.Bounds(), mapped: true}
	return s
}

func (s *Server) alloc() xutil.ID {
	s.next++
	return s.next
}

func (s *Server) Screen() xutil.ScreenInfo {
	return xutil.ScreenInfo{
		Root:       s.root,
		BlackPixel: 0x000000,
		WhitePixel: 0xFFFFFF,
		Depth:      24,
		Width:      s.img.Bounds().Dx(),
		Height:     s.img.Bounds().Dy(),
	}
}

func (s *Server) window(id xutil.ID) (*window, error) {
	if s.closed {
		return nil, errClosed
	}
	w, ok := s.windows[id]
	if !ok {
		return nil, fmt.Errorf("imgserver: bad window %d", id)
	}
	return w, nil
}

func (s *Server) CreateWindow(r image.Rectangle, a xutil.WindowAttrs) (xutil.ID, error) {
	if s.closed {
		return 0, errClosed
	}
	if r.Empty() {
		return 0, fmt.Errorf("imgserver: bad window size %v", r.Size())
	}
	id := s.alloc()
	s.windows[id] = &window{r: r, attrs: a}
	return id, nil
}

func (s *Server) MapWindow(id xutil.ID) error {
	w, err := s.window(id)
	if err != nil {
		return err
	}
	w.mapped = true
	s.fill(w.r, w.attrs.Background)
	return nil
}

func (s *Server) DestroyWindow(id xutil.ID) error {
	if _, err := s.window(id); err != nil {
		return err
	}
	if id == s.root {
		return fmt.Errorf("imgserver: cannot destroy root window")
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

// SetGeometry moves or resizes a window, as a window manager would.
func (s *Server) SetGeometry(id xutil.ID, r image.Rectangle) error {
	w, err := s.window(id)
	if err != nil {
		return err
	}
	w.r = r
	return nil
}

func (s *Server) ClearArea(id xutil.ID, r image.Rectangle) error {
	w, err := s.window(id)
	if err != nil {
		return err
	}
	s.fill(r.Add(w.r.Min).Intersect(w.r), w.attrs.Background)
	return nil
}

func (s *Server) OpenFont(name string) (xutil.ID, error) {
	if s.closed {
		return 0, errClosed
	}
	if name == "" {
		return 0, fmt.Errorf("imgserver: empty font name")
	}
	m, _ := xutil.ParseFontName(name, xutil.DefaultFontMetrics)
	id := s.alloc()
	s.fonts[id] = m
	return id, nil
}

func (s *Server) CloseFont(id xutil.ID) error {
	if s.closed {
		return errClosed
	}
	if _, ok := s.fonts[id]; !ok {
		return fmt.Errorf("imgserver: bad font %d", id)
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
		return 0, fmt.Errorf("imgserver: unknown color %q", name)
	}
	s.allocs++
	return rgb.Pixel(c), nil
}

func (s *Server) CreateGC(drawable, fid xutil.ID, fg, bg uint32) (xutil.ID, error) {
	if _, err := s.window(drawable); err != nil {
		return 0, err
	}
	if _, ok := s.fonts[fid]; !ok {
		return 0, fmt.Errorf("imgserver: bad font %d", fid)
	}
	id := s.alloc()
	s.gcs[id] = &gcontext{drawable: drawable, font: fid, fg: fg, bg: bg}
	return id, nil
}

func (s *Server) FreeGC(id xutil.ID) error {
	if s.closed {
		return errClosed
	}
	if _, ok := s.gcs[id]; !ok {
		return fmt.Errorf("imgserver: bad gc %d", id)
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
		return nil, nil, fmt.Errorf("imgserver: bad gc %d", id)
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

func (s *Server) PolyText8(drawable, gid xutil.ID, p image.Point, items []byte) error {
	w, gc, err := s.gc(drawable, gid)
	if err != nil {
		return err
	}
	m := s.fonts[gc.font]
	glyphs, err := xutil.DecodeTextItems(items)
	if err != nil {
		return err
	}
	text := make([]byte, len(glyphs))
	for i, g := range glyphs {
		text[i] = g.C
	}
	s.ops = append(s.ops, Op{Window: drawable, GC: gid, Fg: gc.fg, Bg: gc.bg, At: p, Text: string(text)})
	if !w.mapped {
		return nil
	}
	d := font.Drawer{
		Dst:  s.img.SubImage(w.r).(*image.RGBA),
		Src:  image.NewUniform(rgb.RGBA(gc.fg)),
		Face: basicfont.Face7x13,
	}
	x := w.r.Min.X + p.X
	for _, g := range glyphs {
		x += g.Delta
		d.Dot = fixed.P(x, w.r.Min.Y+p.Y)
		d.DrawString(string(rune(g.C)))
		x += m.Width
	}
	return nil
}

func (s *Server) fill(r image.Rectangle, pixel uint32) {
	draw.Draw(s.img, r, image.NewUniform(rgb.RGBA(pixel)), image.Point{}, draw.Src)
}

func (s *Server) Sync() error {
	if s.closed {
		return errClosed
	}
	s.syncs++
	return nil
}

func (s *Server) Close() error {
	s.closed = true
	return nil
}

// Image returns the root image.
func (s *Server) Image() *image.RGBA {
	return s.img
}

// WritePNG encodes the root image as PNG.
func (s *Server) WritePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// Ops returns the text requests received so far.
func (s *Server) Ops() []Op {
	return append([]Op(nil), s.ops...)
}

// Live reports the number of windows (excluding the root), fonts and
// graphics contexts currently allocated.
func (s *Server) Live() (windows, fonts, gcs int) {
	return len(s.windows) - 1, len(s.fonts), len(s.gcs)
}

// Allocs returns the number of successful AllocNamedColor requests.
func (s *Server) Allocs() int {
	return s.allocs
}

// Syncs returns the number of Sync requests.
func (s *Server) Syncs() int {
	return s.syncs
}
