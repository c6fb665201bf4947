package xutil

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFontName is the font LoadFont opens when given no name.
const DefaultFontName = "-schumacher-clean-bold-r-normal--8-80-75-75-c-80-iso646.1991-irv"

// DefaultFontMetrics are the cell metrics of DefaultFontName.
var DefaultFontMetrics = FontMetrics{Width: 8, Height: 8}

// FontMetrics is the size in pixels of one glyph cell of a fixed-width font.
type FontMetrics struct {
	Width, Height int
}

// ParseStatus reports how a font's metrics were obtained.
type ParseStatus int

const (
	FontParsed   ParseStatus = iota // read from the font name
	FontFallback                    // name unusable; previous metrics kept
)

func (s ParseStatus) String() string {
	switch s {
	case FontParsed:
		return "parsed"
	case FontFallback:
		return "fallback"
	}
	return "ParseStatus(" + strconv.Itoa(int(s)) + ")"
}

// Fields of an X logical font description, counting the empty
// string before the leading hyphen as field 0.
const (
	xlfdPixelSize    = 7  // taken as the cell width
	xlfdAverageWidth = 12 // in tenths of a pixel; taken as ten times the cell height
)

// ParseFontName extracts cell metrics from an X logical font description.
// Field 7 gives the width and field 12 ten times the height. An empty
// field leaves that dimension as in prev. If the name has fewer than 13
// fields, both fields are empty, or a non-empty field is not a positive
// integer, ParseFontName returns prev and FontFallback.
func ParseFontName(name string, prev FontMetrics) (FontMetrics, ParseStatus) {
	f := strings.Split(name, "-")
	if len(f) <= xlfdAverageWidth {
		return prev, FontFallback
	}
	if f[xlfdPixelSize] == "" && f[xlfdAverageWidth] == "" {
		return prev, FontFallback
	}
	m := prev
	if s := f[xlfdPixelSize]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return prev, FontFallback
		}
		m.Width = n
	}
	if s := f[xlfdAverageWidth]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n/10 <= 0 {
			return prev, FontFallback
		}
		m.Height = n / 10
	}
	return m, FontParsed
}

// A Font is a core bitmap font opened on the server.
type Font struct {
	Display *Display
	ID      ID
	Name    string
	Metrics FontMetrics
	Status  ParseStatus
}

// LoadFont opens the named font. If name is empty, DefaultFontName is
// opened with DefaultFontMetrics. Otherwise the metrics come from
// ParseFontName(name, prev); the caller can tell a fallback from the
// returned Font's Status.
func (d *Display) LoadFont(name string, prev FontMetrics) (*Font, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	f := &Font{Display: d, Name: name}
	if name == "" {
		f.Name = DefaultFontName
		f.Metrics = DefaultFontMetrics
		f.Status = FontParsed
	} else {
		f.Metrics, f.Status = ParseFontName(name, prev)
	}
	d.logf("openfont %s %dx%d %v", f.Name, f.Metrics.Width, f.Metrics.Height, f.Status)
	id, err := d.srv.OpenFont(f.Name)
	if err != nil {
		return nil, fmt.Errorf("openfont %s: %w", f.Name, err)
	}
	f.ID = id
	d.add(f)
	return f, nil
}

// Free closes the font.
func (f *Font) Free() error {
	d := f.Display
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.release(f)
}

func (f *Font) free() error {
	f.Display.logf("closefont %d", f.ID)
	return f.Display.srv.CloseFont(f.ID)
}
