package xutil

import (
	"errors"
	"log"
	"sync"
)

// Display locking:
// The exported methods of Display, Window, Font and ContextTable lock the
// Display. The unexported ones do not.

// ErrClosed is returned by operations on a closed Display.
var ErrClosed = errors.New("xutil: display closed")

// A Display is a connection to a server together with every resource
// allocated through it. It is created by calling Open.
type Display struct {
	Screen ScreenInfo // the default screen

	mu     sync.Mutex
	srv    Server
	debug  bool
	closed bool
	res    []resource // live resources, oldest first
}

type resource interface {
	free() error
}

// Open returns a Display using srv and its default screen.
// The Display takes ownership of srv: Close closes it.
func Open(srv Server) *Display {
	return &Display{
		Screen: srv.Screen(),
		srv:    srv,
	}
}

// Server returns the server the display talks to.
func (d *Display) Server() Server {
	return d.srv
}

// SetDebug turns request tracing on or off.
// Traces are written with the standard logger.
func (d *Display) SetDebug(debug bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debug = debug
}

func (d *Display) logf(format string, args ...interface{}) {
	if d.debug {
		log.Printf("xutil: "+format, args...)
	}
}

func (d *Display) add(r resource) {
	d.res = append(d.res, r)
}

// release removes r from the live set and frees it.
// Freeing an already released resource is a no-op.
func (d *Display) release(r resource) error {
	for i := len(d.res) - 1; i >= 0; i-- {
		if d.res[i] == r {
			d.res = append(d.res[:i], d.res[i+1:]...)
			return r.free()
		}
	}
	return nil
}

// Flush makes a round trip to the server, so that every request issued
// so far has been processed when it returns.
func (d *Display) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.logf("sync")
	return d.srv.Sync()
}

// Close frees every resource still owned by the display, newest first,
// and closes the server. It returns the first error encountered.
// Calling Close more than once is harmless.
func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	var first error
	for i := len(d.res) - 1; i >= 0; i-- {
		if err := d.res[i].free(); err != nil && first == nil {
			first = err
		}
	}
	d.res = nil
	d.logf("close")
	if err := d.srv.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
