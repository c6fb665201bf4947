package xutil

import "errors"

var errShortItem = errors.New("xutil: short text item")

// fontShift marks a TEXTITEM8 record that switches fonts.
const fontShift = 255

// TextItems packs b into TEXTITEM8 records of one glyph each,
// with no horizontal delta.
func TextItems(b []byte) []byte {
	items := make([]byte, 0, 3*len(b))
	for _, c := range b {
		items = append(items, 1, 0, c) // length, delta, glyph
	}
	return items
}

// A Glyph is one glyph of a decoded TEXTITEM8 list.
type Glyph struct {
	C     byte
	Delta int // pixels to move right before drawing C
}

// DecodeTextItems unpacks a TEXTITEM8 list as sent by PolyText8.
// Font shifts are skipped.
func DecodeTextItems(items []byte) ([]Glyph, error) {
	var glyphs []Glyph
	for len(items) > 0 {
		n := int(items[0])
		if n == fontShift {
			if len(items) < 5 {
				return nil, errShortItem
			}
			items = items[5:]
			continue
		}
		if len(items) < 2+n {
			return nil, errShortItem
		}
		delta := int(int8(items[1]))
		for _, c := range items[2 : 2+n] {
			glyphs = append(glyphs, Glyph{C: c, Delta: delta})
			delta = 0
		}
		items = items[2+n:]
	}
	return glyphs, nil
}
