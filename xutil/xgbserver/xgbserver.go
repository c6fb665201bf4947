// Package xgbserver implements xutil.Server on a connection to a real X
// server, using the pure-Go protocol binding github.com/BurntSushi/xgb.
//
// Requests that return no reply are sent checked, so every method
// reports the server's error for its own request.
package xgbserver

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/x11util/x11util/xutil"
)

// colorCacheSize bounds the named colors remembered per connection.
const colorCacheSize = 64

// A Server is a connection to an X server and its default screen.
type Server struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	colors *lru.Cache[string, uint32]
}

// Open connects to display, such as ":0". An empty display means $DISPLAY.
func Open(display string) (*Server, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("xgbserver: connect %q: %w", display, err)
	}
	return New(conn), nil
}

// New returns a Server using an established connection.
// The Server owns conn; Close closes it.
func New(conn *xgb.Conn) *Server {
	colors, err := lru.New[string, uint32](colorCacheSize)
	if err != nil {
		// Only a non-positive size fails.
		panic("xgbserver: " + err.Error())
	}
	return &Server{
		conn:   conn,
		screen: xproto.Setup(conn).DefaultScreen(conn),
		colors: colors,
	}
}

// Conn returns the underlying connection.
func (s *Server) Conn() *xgb.Conn {
	return s.conn
}

func (s *Server) Screen() xutil.ScreenInfo {
	return xutil.ScreenInfo{
		Root:       xutil.ID(s.screen.Root),
		BlackPixel: s.screen.BlackPixel,
		WhitePixel: s.screen.WhitePixel,
		Depth:      int(s.screen.RootDepth),
		Width:      int(s.screen.WidthInPixels),
		Height:     int(s.screen.HeightInPixels),
	}
}

func boolValue(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (s *Server) CreateWindow(r image.Rectangle, a xutil.WindowAttrs) (xutil.ID, error) {
	wid, err := xproto.NewWindowId(s.conn)
	if err != nil {
		return 0, err
	}
	// Values must be listed in increasing mask bit order.
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask)
	values := []uint32{a.Background, boolValue(a.OverrideRedirect), uint32(a.EventMask)}
	err = xproto.CreateWindowChecked(s.conn, s.screen.RootDepth, wid, s.screen.Root,
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), 0,
		xproto.WindowClassInputOutput, s.screen.RootVisual, mask, values).Check()
	if err != nil {
		return 0, err
	}
	if a.BackingStore {
		err = xproto.ChangeWindowAttributesChecked(s.conn, wid,
			xproto.CwBackingStore, []uint32{xproto.BackingStoreAlways}).Check()
		if err != nil {
			xproto.DestroyWindow(s.conn, wid)
			return 0, err
		}
	}
	return xutil.ID(wid), nil
}

func (s *Server) MapWindow(w xutil.ID) error {
	return xproto.MapWindowChecked(s.conn, xproto.Window(w)).Check()
}

func (s *Server) DestroyWindow(w xutil.ID) error {
	return xproto.DestroyWindowChecked(s.conn, xproto.Window(w)).Check()
}

func (s *Server) Geometry(w xutil.ID) (image.Rectangle, error) {
	g, err := xproto.GetGeometry(s.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rect(int(g.X), int(g.Y), int(g.X)+int(g.Width), int(g.Y)+int(g.Height)), nil
}

func (s *Server) ClearArea(w xutil.ID, r image.Rectangle) error {
	return xproto.ClearAreaChecked(s.conn, false, xproto.Window(w),
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy())).Check()
}

func (s *Server) OpenFont(name string) (xutil.ID, error) {
	fid, err := xproto.NewFontId(s.conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.OpenFontChecked(s.conn, fid, uint16(len(name)), name).Check(); err != nil {
		return 0, err
	}
	return xutil.ID(fid), nil
}

func (s *Server) CloseFont(f xutil.ID) error {
	return xproto.CloseFontChecked(s.conn, xproto.Font(f)).Check()
}

// AllocNamedColor allocates name in the default colormap. Pixels of
// names already allocated on this connection are served from a cache.
func (s *Server) AllocNamedColor(name string) (uint32, error) {
	if pixel, ok := s.colors.Get(name); ok {
		return pixel, nil
	}
	c, err := xproto.AllocNamedColor(s.conn, s.screen.DefaultColormap, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	s.colors.Add(name, c.Pixel)
	return c.Pixel, nil
}

func (s *Server) CreateGC(drawable, font xutil.ID, fg, bg uint32) (xutil.ID, error) {
	gc, err := xproto.NewGcontextId(s.conn)
	if err != nil {
		return 0, err
	}
	mask := uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcFont)
	err = xproto.CreateGCChecked(s.conn, gc, xproto.Drawable(drawable), mask,
		[]uint32{fg, bg, uint32(font)}).Check()
	if err != nil {
		return 0, err
	}
	return xutil.ID(gc), nil
}

func (s *Server) FreeGC(gc xutil.ID) error {
	return xproto.FreeGCChecked(s.conn, xproto.Gcontext(gc)).Check()
}

func (s *Server) FillRectangle(drawable, gc xutil.ID, r image.Rectangle) error {
	rect := xproto.Rectangle{
		X:      int16(r.Min.X),
		Y:      int16(r.Min.Y),
		Width:  uint16(r.Dx()),
		Height: uint16(r.Dy()),
	}
	return xproto.PolyFillRectangleChecked(s.conn, xproto.Drawable(drawable),
		xproto.Gcontext(gc), []xproto.Rectangle{rect}).Check()
}

func (s *Server) PolyText8(drawable, gc xutil.ID, p image.Point, items []byte) error {
	return xproto.PolyText8Checked(s.conn, xproto.Drawable(drawable),
		xproto.Gcontext(gc), int16(p.X), int16(p.Y), items).Check()
}

// Sync waits for the reply to a GetInputFocus request, by which time
// the server has processed every earlier request.
func (s *Server) Sync() error {
	_, err := xproto.GetInputFocus(s.conn).Reply()
	return err
}

func (s *Server) Close() error {
	s.conn.Close()
	return nil
}
