package xutil

import (
	"fmt"
	"image"

	"golang.org/x/text/encoding/charmap"
)

// TextOptions place and color a string drawn by DrawString.
type TextOptions struct {
	Col, Row int    // grid cell of the first glyph
	Color    string // palette color; empty means PaleGreen
	Level    int    // brightness, 0 to MaxLevel
	Reverse  bool   // swap foreground and background

	// Latin1 encodes the string as ISO 8859-1, one byte per rune,
	// instead of sending its UTF-8 bytes.
	Latin1 bool
}

// DefaultTextOptions draw at the top-left cell in full-brightness PaleGreen.
var DefaultTextOptions = TextOptions{
	Color: "PaleGreen",
	Level: MaxLevel,
}

const background = "black"

// Origin returns the pixel position of the top-left corner of grid
// cell (col, row).
func Origin(col, row int, m FontMetrics) image.Point {
	return image.Pt(col*m.Width, row*m.Height)
}

// Baseline returns the y coordinate of the text baseline for a cell
// whose top-left corner is p.
func Baseline(p image.Point, m FontMetrics) int {
	return p.Y + m.Height - 1
}

// ReverseColors returns the foreground and background color names
// used to draw in color. The background is always black; reverse
// swaps the two.
func ReverseColors(color string, reverse bool) (fg, bg string) {
	fg, bg = color, background
	if reverse {
		fg, bg = bg, fg
	}
	return fg, bg
}

// encodeText returns the glyph indexes for s.
func encodeText(s string, latin1 bool) []byte {
	if !latin1 {
		return []byte(s)
	}
	b := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b = append(b, c)
	}
	return b
}

// DrawString draws s on w with the contexts of t, starting at the grid
// cell given by opt. The string is not wrapped.
func (w *Window) DrawString(t *ContextTable, s string, opt TextOptions) error {
	d := w.Display
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if t.Window != w {
		return fmt.Errorf("drawstring: context table belongs to window %d, not %d", t.Window.ID, w.ID)
	}
	color := opt.Color
	if color == "" {
		color = DefaultTextOptions.Color
	}
	fg, bg := ReverseColors(color, opt.Reverse)
	fs, err := t.lookup(fg, opt.Level)
	if err != nil {
		return fmt.Errorf("drawstring: %w", err)
	}
	m := t.Font.Metrics
	p := Origin(opt.Col, opt.Row, m)
	glyphs := encodeText(s, opt.Latin1)
	if len(glyphs) == 0 {
		return nil
	}
	if bg != background {
		bs, err := t.lookup(bg, opt.Level)
		if err != nil {
			return fmt.Errorf("drawstring: %w", err)
		}
		bgc := bs.gc[opt.Level]
		r := image.Rect(p.X, p.Y, p.X+len(glyphs)*m.Width, p.Y+m.Height)
		d.logf("fillrectangle %d %v", w.ID, r)
		if err := d.srv.FillRectangle(w.ID, bgc, r); err != nil {
			return fmt.Errorf("fillrectangle %v: %w", r, err)
		}
	}
	gc := fs.gc[opt.Level]
	at := image.Pt(p.X, Baseline(p, m))
	d.logf("polytext8 %d %v %q %s/%d", w.ID, at, glyphs, fg, opt.Level)
	if err := d.srv.PolyText8(w.ID, gc, at, TextItems(glyphs)); err != nil {
		return fmt.Errorf("polytext8 %v: %w", at, err)
	}
	return nil
}
