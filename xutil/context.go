package xutil

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownColor = errors.New("xutil: color not in context table")
	ErrLevel        = errors.New("xutil: brightness level out of range")
)

// A ContextTable holds a graphics context for every color of a palette
// at every brightness level from 0 to MaxLevel, all drawing on one
// window with one font.
type ContextTable struct {
	Display *Display
	Window  *Window
	Font    *Font

	palette Palette
	entries map[string]*shades
}

type shades struct {
	pixel uint32               // allocated full-brightness pixel
	gc    [MaxLevel + 1]ID     // graphics context per level
	fg    [MaxLevel + 1]uint32 // foreground per level
}

// NewContextTable allocates every color of p and creates its
// MaxLevel+1 graphics contexts for w and f. The foreground of the
// context at level l is Scale(pixel, l); the background is black.
// If any request fails, the contexts already created are freed.
func (d *Display) NewContextTable(w *Window, f *Font, p Palette) (*ContextTable, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	t := &ContextTable{
		Display: d,
		Window:  w,
		Font:    f,
		palette: append(Palette(nil), p...),
		entries: make(map[string]*shades, len(p)),
	}
	for _, name := range p {
		if _, ok := t.entries[name]; ok {
			t.free()
			return nil, fmt.Errorf("contexts: duplicate color %s", name)
		}
		pixel, err := d.srv.AllocNamedColor(name)
		if err != nil {
			t.free()
			return nil, fmt.Errorf("allocnamedcolor %s: %w", name, err)
		}
		d.logf("allocnamedcolor %s = %#06x", name, pixel)
		s := &shades{pixel: pixel}
		t.entries[name] = s
		for level := 0; level <= MaxLevel; level++ {
			fg := Scale(pixel, level)
			gc, err := d.srv.CreateGC(w.ID, f.ID, fg, d.Screen.BlackPixel)
			if err != nil {
				t.free()
				return nil, fmt.Errorf("creategc %s %d: %w", name, level, err)
			}
			s.gc[level] = gc
			s.fg[level] = fg
		}
	}
	d.add(t)
	return t, nil
}

func (t *ContextTable) lookup(color string, level int) (*shades, error) {
	s, ok := t.entries[color]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColor, color)
	}
	if level < 0 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d", ErrLevel, level)
	}
	return s, nil
}

// Lookup returns the graphics context for color at level.
func (t *ContextTable) Lookup(color string, level int) (ID, error) {
	t.Display.mu.Lock()
	defer t.Display.mu.Unlock()
	s, err := t.lookup(color, level)
	if err != nil {
		return 0, err
	}
	return s.gc[level], nil
}

// Pixel returns the foreground pixel of the context for color at level.
func (t *ContextTable) Pixel(color string, level int) (uint32, error) {
	t.Display.mu.Lock()
	defer t.Display.mu.Unlock()
	s, err := t.lookup(color, level)
	if err != nil {
		return 0, err
	}
	return s.fg[level], nil
}

// Colors returns the table's colors in palette order.
func (t *ContextTable) Colors() Palette {
	t.Display.mu.Lock()
	defer t.Display.mu.Unlock()
	return append(Palette(nil), t.palette...)
}

// Levels returns the number of contexts held for color,
// zero if the color is not in the table.
func (t *ContextTable) Levels(color string) int {
	t.Display.mu.Lock()
	defer t.Display.mu.Unlock()
	if _, ok := t.entries[color]; !ok {
		return 0
	}
	return MaxLevel + 1
}

// Len returns the total number of contexts in the table.
// It is zero once the table has been freed.
func (t *ContextTable) Len() int {
	t.Display.mu.Lock()
	defer t.Display.mu.Unlock()
	return len(t.entries) * (MaxLevel + 1)
}

// Free releases every context in the table.
func (t *ContextTable) Free() error {
	d := t.Display
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.release(t)
}

func (t *ContextTable) free() error {
	var first error
	for _, name := range t.palette {
		s, ok := t.entries[name]
		if !ok {
			continue
		}
		for _, gc := range s.gc {
			if gc == 0 {
				continue
			}
			if err := t.Display.srv.FreeGC(gc); err != nil && first == nil {
				first = err
			}
		}
		delete(t.entries, name)
	}
	t.Display.logf("freegc %d colors", len(t.palette))
	return first
}
