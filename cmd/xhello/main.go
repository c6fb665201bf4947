// Xhello opens a window and greets the world in two shades of green.
//
// Usage:
//
//	xhello [-backend x11|image|term] [-display :0] [-font name] [-palette file]
//	       [-png file] [-wait duration] [-debug] [-profile]
//
// The x11 backend needs an X server. The image backend draws into memory
// and, with -png, saves the result. The term backend draws on the
// terminal, one character cell per glyph.
//
// If -font is not given, the font is taken from $font, as in Plan 9, and
// otherwise defaults to the 8x8 Schumacher Clean bold font.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/profile"
	"github.com/x11util/x11util/xutil"
	"github.com/x11util/x11util/xutil/imgserver"
	"github.com/x11util/x11util/xutil/termserver"
	"github.com/x11util/x11util/xutil/xgbserver"
	"golang.org/x/sys/unix"
)

var (
	backend  = flag.String("backend", "x11", "draw on `server`: x11, image or term")
	display  = flag.String("display", "", "X `display` to connect to (default $DISPLAY)")
	fontName = flag.String("font", os.Getenv("font"), "core X font `name`")
	palette  = flag.String("palette", "", "read color names from `file`")
	pngFile  = flag.String("png", "", "with -backend image, write the screen to `file`")
	wait     = flag.Duration("wait", 10*time.Second, "keep the window up for `duration`")
	debug    = flag.Bool("debug", false, "trace requests")
	prof     = flag.Bool("profile", false, "write a CPU profile to the current directory")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: xhello [options]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("xhello: ")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		usage()
	}
	f := run
	if *prof {
		f = func() error { return profiled(".", run) }
	}
	if err := f(); err != nil {
		log.Fatal(err)
	}
}

// profiled runs f with CPU profiling into dir. The profile is
// written before profiled returns, even when f fails.
func profiled(dir string, f func() error) error {
	p := profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
	err := f()
	p.Stop()
	return err
}

func open() (xutil.Server, *imgserver.Server, error) {
	switch *backend {
	case "x11":
		s, err := xgbserver.Open(*display)
		return s, nil, err
	case "image":
		s := imgserver.New(1024, 768)
		return s, s, nil
	case "term":
		s, err := termserver.Open(xutil.DefaultFontMetrics)
		return s, nil, err
	}
	return nil, nil, fmt.Errorf("unknown backend %q", *backend)
}

func run() error {
	p := xutil.DefaultPalette
	if *palette != "" {
		f, err := os.Open(*palette)
		if err != nil {
			return err
		}
		p, err = xutil.ReadPalette(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", *palette, err)
		}
	}

	srv, img, err := open()
	if err != nil {
		return err
	}
	d := xutil.Open(srv)
	defer d.Close()
	d.SetDebug(*debug)

	f, err := d.LoadFont(*fontName, xutil.DefaultFontMetrics)
	if err != nil {
		return err
	}
	if f.Status == xutil.FontFallback {
		log.Printf("cannot read cell size from font %s; using %dx%d", f.Name, f.Metrics.Width, f.Metrics.Height)
	}

	opt := xutil.DefaultWindowOptions
	opt.Width, opt.Height, opt.X, opt.Y = 320, 240, 100, 200
	w, err := d.CreateWindow(opt)
	if err != nil {
		return err
	}
	t, err := d.NewContextTable(w, f, p)
	if err != nil {
		return err
	}

	text := xutil.DefaultTextOptions
	if len(p) > 0 && t.Levels(text.Color) == 0 {
		text.Color = p[0]
	}
	text.Col, text.Row = 10, 20
	if err := w.DrawString(t, "Hello, World!", text); err != nil {
		return err
	}
	text.Col, text.Row, text.Level = 11, 21, 50
	if err := w.DrawString(t, "Hello, World!", text); err != nil {
		return err
	}
	if err := d.Flush(); err != nil {
		return err
	}

	if img != nil && *pngFile != "" {
		out, err := os.Create(*pngFile)
		if err != nil {
			return err
		}
		if err := img.WritePNG(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(sig)
	select {
	case <-time.After(*wait):
	case s := <-sig:
		if *debug {
			log.Printf("%v", s)
		}
	}
	return d.Close()
}
