package xutil_test

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/x11util/x11util/xutil"
	"github.com/x11util/x11util/xutil/imgserver"
)

const hello = "Hello, World!"

func setup(t *testing.T) (*imgserver.Server, *xutil.Display, *xutil.Window, *xutil.Font, *xutil.ContextTable) {
	t.Helper()
	srv := imgserver.New(1024, 768)
	d := xutil.Open(srv)
	opt := xutil.DefaultWindowOptions
	opt.Width, opt.Height, opt.X, opt.Y = 320, 240, 100, 200
	w, err := d.CreateWindow(opt)
	if err != nil {
		t.Fatal(err)
	}
	f, err := d.LoadFont("", xutil.DefaultFontMetrics)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := d.NewContextTable(w, f, xutil.DefaultPalette)
	if err != nil {
		t.Fatal(err)
	}
	return srv, d, w, f, tab
}

func TestHelloWorld(t *testing.T) {
	srv, d, w, f, tab := setup(t)
	defer d.Close()

	if f.Name != xutil.DefaultFontName || f.Metrics != (xutil.FontMetrics{Width: 8, Height: 8}) {
		t.Fatalf("default font = %s %v", f.Name, f.Metrics)
	}
	g, err := srv.Geometry(w.ID)
	if err != nil || g != image.Rect(100, 200, 420, 440) {
		t.Fatalf("window geometry = %v, %v", g, err)
	}

	opt := xutil.DefaultTextOptions
	opt.Col, opt.Row = 10, 20
	if err := w.DrawString(tab, hello, opt); err != nil {
		t.Fatal(err)
	}
	opt.Col, opt.Row, opt.Level = 11, 21, 50
	if err := w.DrawString(tab, hello, opt); err != nil {
		t.Fatal(err)
	}
	if err := d.Flush(); err != nil {
		t.Fatal(err)
	}
	if srv.Syncs() != 1 {
		t.Errorf("Flush made %d round trips, want 1", srv.Syncs())
	}

	full, _ := tab.Lookup("PaleGreen", 100)
	half, _ := tab.Lookup("PaleGreen", 50)
	want := []imgserver.Op{
		{Window: w.ID, GC: full, Fg: 0x98FB98, At: image.Pt(80, 167), Text: hello},
		{Window: w.ID, GC: half, Fg: 0x4C7D4C, At: image.Pt(88, 175), Text: hello},
	}
	if diff := cmp.Diff(want, srv.Ops()); diff != "" {
		t.Errorf("text requests (-want +got):\n%s", diff)
	}

	// The half-brightness string is drawn in exactly half of PaleGreen.
	cell := image.Rect(100+88, 200+175-13, 100+88+8*len(hello), 200+175+3)
	halfGreen := color.RGBA{152 / 2, 251 / 2, 152 / 2, 255}
	n := 0
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			if srv.Image().RGBAAt(x, y) == halfGreen {
				n++
			}
		}
	}
	if n == 0 {
		t.Error("no half-brightness PaleGreen pixels rendered")
	}
}

func TestContextTableComplete(t *testing.T) {
	srv, d, _, _, tab := setup(t)
	defer d.Close()

	if diff := cmp.Diff(xutil.DefaultPalette, tab.Colors()); diff != "" {
		t.Errorf("colors (-want +got):\n%s", diff)
	}
	if tab.Len() != 13*101 {
		t.Errorf("Len = %d, want %d", tab.Len(), 13*101)
	}
	seen := make(map[xutil.ID]bool)
	for _, color := range xutil.DefaultPalette {
		if n := tab.Levels(color); n != 101 {
			t.Errorf("Levels(%s) = %d, want 101", color, n)
		}
		full, err := tab.Pixel(color, xutil.MaxLevel)
		if err != nil {
			t.Fatal(err)
		}
		for level := 0; level <= xutil.MaxLevel; level++ {
			gc, err := tab.Lookup(color, level)
			if err != nil {
				t.Fatalf("Lookup(%s, %d): %v", color, level, err)
			}
			if seen[gc] {
				t.Fatalf("Lookup(%s, %d) = %d reused", color, level, gc)
			}
			seen[gc] = true
			p, _ := tab.Pixel(color, level)
			if p != xutil.Scale(full, level) {
				t.Errorf("Pixel(%s, %d) = %#06x, want %#06x", color, level, p, xutil.Scale(full, level))
			}
		}
		if p, _ := tab.Pixel(color, 0); p != 0 {
			t.Errorf("Pixel(%s, 0) = %#06x, want black", color, p)
		}
	}
	if tab.Levels("white") != 0 {
		t.Error("table has white")
	}
	if srv.Allocs() != 13 {
		t.Errorf("allocated %d colors, want 13", srv.Allocs())
	}
	if _, _, gcs := srv.Live(); gcs != 13*101 {
		t.Errorf("server holds %d gcs, want %d", gcs, 13*101)
	}
}

func TestLookupErrors(t *testing.T) {
	_, d, w, _, tab := setup(t)
	defer d.Close()

	if _, err := tab.Lookup("white", 10); !errors.Is(err, xutil.ErrUnknownColor) {
		t.Errorf("Lookup(white) error = %v", err)
	}
	for _, level := range []int{-1, 101} {
		if _, err := tab.Lookup("orange", level); !errors.Is(err, xutil.ErrLevel) {
			t.Errorf("Lookup(orange, %d) error = %v", level, err)
		}
	}
	opt := xutil.DefaultTextOptions
	opt.Color = "NoSuchColor"
	if err := w.DrawString(tab, "x", opt); !errors.Is(err, xutil.ErrUnknownColor) {
		t.Errorf("DrawString with unknown color: %v", err)
	}
}

func TestReverseVideo(t *testing.T) {
	srv, d, w, _, tab := setup(t)
	defer d.Close()

	opt := xutil.TextOptions{Col: 1, Row: 1, Color: "orange", Level: 100, Reverse: true}
	if err := w.DrawString(tab, "  ", opt); err != nil {
		t.Fatal(err)
	}
	black, _ := tab.Lookup("black", 100)
	ops := srv.Ops()
	if len(ops) != 1 || ops[0].GC != black || ops[0].Fg != 0 {
		t.Fatalf("reverse text drawn with %+v, want black foreground", ops)
	}
	// The cells behind the text are filled with orange.
	orange := color.RGBA{255, 165, 0, 255}
	for _, p := range []image.Point{{100 + 8, 200 + 8}, {100 + 23, 200 + 15}} {
		if c := srv.Image().RGBAAt(p.X, p.Y); c != orange {
			t.Errorf("pixel %v = %v, want orange", p, c)
		}
	}
	if c := srv.Image().RGBAAt(100+24, 200+8); c == orange {
		t.Error("fill extends past the text")
	}

	// Reversing the reversed request is the plain request.
	opt.Reverse = false
	if err := w.DrawString(tab, "ab", opt); err != nil {
		t.Fatal(err)
	}
	plain, _ := tab.Lookup("orange", 100)
	if ops := srv.Ops(); ops[1].GC != plain || ops[1].Fg != 0xFFA500 {
		t.Errorf("plain text drawn with %+v", ops[1])
	}
}

func TestLatin1(t *testing.T) {
	srv, d, w, _, tab := setup(t)
	defer d.Close()

	opt := xutil.DefaultTextOptions
	opt.Latin1 = true
	if err := w.DrawString(tab, "café", opt); err != nil {
		t.Fatal(err)
	}
	opt.Latin1 = false
	if err := w.DrawString(tab, "café", opt); err != nil {
		t.Fatal(err)
	}
	ops := srv.Ops()
	if ops[0].Text != "caf\xe9" || ops[1].Text != "caf\xc3\xa9" {
		t.Errorf("texts = %q, %q", ops[0].Text, ops[1].Text)
	}
}

func TestClear(t *testing.T) {
	srv, d, w, _, tab := setup(t)
	defer d.Close()

	opt := xutil.DefaultTextOptions
	if err := w.DrawString(tab, "XXXX", opt); err != nil {
		t.Fatal(err)
	}
	// Grow the window behind the display's back; Clear must cover it.
	if err := srv.SetGeometry(w.ID, image.Rect(100, 200, 500, 500)); err != nil {
		t.Fatal(err)
	}
	if err := srv.FillRectangle(w.ID, mustLookup(t, tab, "orange", 100), image.Rect(390, 290, 400, 300)); err != nil {
		t.Fatal(err)
	}
	if err := w.Clear(); err != nil {
		t.Fatal(err)
	}
	img := srv.Image()
	for y := 200; y < 500; y++ {
		for x := 100; x < 500; x++ {
			if c := img.RGBAAt(x, y); c != (color.RGBA{0, 0, 0, 255}) {
				t.Fatalf("pixel (%d,%d) = %v after Clear", x, y, c)
			}
		}
	}
	size, err := w.Size()
	if err != nil || size != image.Pt(400, 300) {
		t.Errorf("Size = %v, %v", size, err)
	}
}

func mustLookup(t *testing.T, tab *xutil.ContextTable, color string, level int) xutil.ID {
	t.Helper()
	gc, err := tab.Lookup(color, level)
	if err != nil {
		t.Fatal(err)
	}
	return gc
}

func TestFontFallback(t *testing.T) {
	srv := imgserver.New(100, 100)
	d := xutil.Open(srv)
	defer d.Close()

	prev := xutil.FontMetrics{Width: 6, Height: 13}
	f, err := d.LoadFont("fixed", prev)
	if err != nil {
		t.Fatal(err)
	}
	if f.Status != xutil.FontFallback || f.Metrics != prev {
		t.Errorf("LoadFont(fixed) = %v %v", f.Status, f.Metrics)
	}
	f, err = d.LoadFont("-misc-fixed-medium-r-normal--20-200-75-75-c-100-iso8859-1", prev)
	if err != nil {
		t.Fatal(err)
	}
	if f.Status != xutil.FontParsed || f.Metrics != (xutil.FontMetrics{Width: 20, Height: 10}) {
		t.Errorf("LoadFont(20x10) = %v %v", f.Status, f.Metrics)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	srv, d, w, f, tab := setup(t)

	if err := tab.Free(); err != nil {
		t.Fatal(err)
	}
	if _, _, gcs := srv.Live(); gcs != 0 {
		t.Errorf("%d gcs left after Free", gcs)
	}
	if err := tab.Free(); err != nil {
		t.Errorf("second Free: %v", err)
	}
	if _, err := d.NewContextTable(w, f, xutil.Palette{"red", "blue"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if windows, fonts, gcs := srv.Live(); windows+fonts+gcs != 0 {
		t.Errorf("after Close: %d windows, %d fonts, %d gcs", windows, fonts, gcs)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := d.Flush(); !errors.Is(err, xutil.ErrClosed) {
		t.Errorf("Flush after Close: %v", err)
	}
	if _, err := d.CreateWindow(xutil.DefaultWindowOptions); !errors.Is(err, xutil.ErrClosed) {
		t.Errorf("CreateWindow after Close: %v", err)
	}
}

// failServer fails AllocNamedColor for one color and OpenFont for one name.
type failServer struct {
	*imgserver.Server
	badColor string
	badFont  string
}

func (s *failServer) AllocNamedColor(name string) (uint32, error) {
	if name == s.badColor {
		return 0, errors.New("BadName")
	}
	return s.Server.AllocNamedColor(name)
}

func (s *failServer) OpenFont(name string) (xutil.ID, error) {
	if name == s.badFont {
		return 0, errors.New("BadName")
	}
	return s.Server.OpenFont(name)
}

func TestPartialTableFreed(t *testing.T) {
	srv := &failServer{Server: imgserver.New(100, 100), badColor: "aquamarine3", badFont: "nosuchfont"}
	d := xutil.Open(srv)
	defer d.Close()

	w, err := d.CreateWindow(xutil.DefaultWindowOptions)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.LoadFont("nosuchfont", xutil.DefaultFontMetrics); err == nil {
		t.Error("LoadFont(nosuchfont) succeeded")
	}
	f, err := d.LoadFont("", xutil.DefaultFontMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.NewContextTable(w, f, xutil.DefaultPalette); err == nil {
		t.Fatal("NewContextTable succeeded with a bad color")
	}
	if _, _, gcs := srv.Live(); gcs != 0 {
		t.Errorf("%d gcs leaked by failed NewContextTable", gcs)
	}
	if _, err := d.NewContextTable(w, f, xutil.Palette{"red", "red"}); err == nil {
		t.Error("NewContextTable accepted a duplicate color")
	}
}

func TestDrawStringOtherWindow(t *testing.T) {
	_, d, _, _, tab := setup(t)
	defer d.Close()

	w2, err := d.CreateWindow(xutil.DefaultWindowOptions)
	if err != nil {
		t.Fatal(err)
	}
	if err := w2.DrawString(tab, "x", xutil.DefaultTextOptions); err == nil {
		t.Error("DrawString with another window's table succeeded")
	}
}

// Run with -race: lookups and drawing share the table with Free.
func TestContextTableConcurrentFree(t *testing.T) {
	_, d, w, _, tab := setup(t)
	defer d.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		opt := xutil.DefaultTextOptions
		opt.Color = "orange"
		for i := 0; i < 200; i++ {
			if _, err := tab.Lookup("orange", 50); err != nil && !errors.Is(err, xutil.ErrUnknownColor) {
				t.Errorf("Lookup: %v", err)
				return
			}
			tab.Pixel("orange", 50)
			tab.Levels("orange")
			tab.Colors()
			tab.Len()
			w.DrawString(tab, "x", opt)
		}
	}()
	if err := tab.Free(); err != nil {
		t.Error(err)
	}
	wg.Wait()

	if n := tab.Len(); n != 0 {
		t.Errorf("Len after Free = %d", n)
	}
	if _, err := tab.Lookup("orange", 50); !errors.Is(err, xutil.ErrUnknownColor) {
		t.Errorf("Lookup after Free error = %v", err)
	}
}
