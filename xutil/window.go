package xutil

import (
	"fmt"
	"image"
)

// WindowOptions configure CreateWindow.
type WindowOptions struct {
	Width, Height    int
	X, Y             int // top-left corner on the screen
	OverrideRedirect bool
	EventMask        EventMask
}

// DefaultWindowOptions is a 640x480 override-redirect window at the
// origin that reports only exposures.
var DefaultWindowOptions = WindowOptions{
	Width:            640,
	Height:           480,
	OverrideRedirect: true,
	EventMask:        ExposureMask,
}

// A Window is a mapped top-level window.
type Window struct {
	Display *Display
	ID      ID
}

// CreateWindow creates a window with a black background and
// backing-store Always, and maps it.
func (d *Display) CreateWindow(opt WindowOptions) (*Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	r := image.Rect(opt.X, opt.Y, opt.X+opt.Width, opt.Y+opt.Height)
	d.logf("createwindow %v override=%v mask=%#x", r, opt.OverrideRedirect, uint32(opt.EventMask))
	id, err := d.srv.CreateWindow(r, WindowAttrs{
		Background:       d.Screen.BlackPixel,
		OverrideRedirect: opt.OverrideRedirect,
		EventMask:        opt.EventMask,
		BackingStore:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("createwindow %dx%d+%d+%d: %w", opt.Width, opt.Height, opt.X, opt.Y, err)
	}
	w := &Window{Display: d, ID: id}
	if err := d.srv.MapWindow(id); err != nil {
		d.srv.DestroyWindow(id)
		return nil, fmt.Errorf("mapwindow %d: %w", id, err)
	}
	d.add(w)
	return w, nil
}

// Size returns the current size of the window, as reported by the server.
func (w *Window) Size() (image.Point, error) {
	d := w.Display
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return image.Point{}, ErrClosed
	}
	r, err := d.srv.Geometry(w.ID)
	if err != nil {
		return image.Point{}, fmt.Errorf("getgeometry %d: %w", w.ID, err)
	}
	return r.Size(), nil
}

// Clear erases the whole window. The geometry is queried on every call,
// so Clear covers the window after a resize too.
func (w *Window) Clear() error {
	d := w.Display
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	g, err := d.srv.Geometry(w.ID)
	if err != nil {
		return fmt.Errorf("getgeometry %d: %w", w.ID, err)
	}
	r := image.Rectangle{Max: g.Size()}
	d.logf("cleararea %d %v", w.ID, r)
	return d.srv.ClearArea(w.ID, r)
}

// Free destroys the window.
func (w *Window) Free() error {
	d := w.Display
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.release(w)
}

func (w *Window) free() error {
	w.Display.logf("destroywindow %d", w.ID)
	return w.Display.srv.DestroyWindow(w.ID)
}
