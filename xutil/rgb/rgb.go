// Package rgb resolves X11 color names to RGB values without a server.
// It knows a subset of the X.Org rgb.txt database, hexadecimal
// specifications such as #98fb98, and the SVG 1.1 color keywords.
package rgb

import (
	"bufio"
	_ "embed"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

//go:embed rgb.txt
var rgbtxt string

var db map[string]color.RGBA

func init() {
	var err error
	db, err = Parse(strings.NewReader(rgbtxt))
	if err != nil {
		panic("rgb: bad embedded rgb.txt: " + err.Error())
	}
}

// Key returns the database key for name: lower case, without spaces.
// X treats "Pale Green", "pale green" and "PaleGreen" alike.
func Key(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// Parse reads color definitions in rgb.txt format: three decimal
// components followed by a name, which may contain spaces.
// Lines starting with ! are comments.
func Parse(r io.Reader) (map[string]color.RGBA, error) {
	m := make(map[string]color.RGBA)
	s := bufio.NewScanner(r)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '!' {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 4 {
			return nil, fmt.Errorf("rgb.txt:%d: want r g b name", lineno)
		}
		var c [3]uint8
		for i := range c {
			n, err := strconv.ParseUint(f[i], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("rgb.txt:%d: bad component %q", lineno, f[i])
			}
			c[i] = uint8(n)
		}
		m[Key(strings.Join(f[3:], " "))] = color.RGBA{c[0], c[1], c[2], 0xFF}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Lookup returns the color called name.
func Lookup(name string) (color.RGBA, bool) {
	if strings.HasPrefix(name, "#") {
		c, err := colorful.Hex(name)
		if err != nil {
			return color.RGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.RGBA{r, g, b, 0xFF}, true
	}
	k := Key(name)
	if c, ok := db[k]; ok {
		return c, true
	}
	c, ok := colornames.Map[k]
	return c, ok
}

// Pixel packs c into a 0xRRGGBB pixel value.
func Pixel(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA unpacks a 0xRRGGBB pixel value.
func RGBA(pixel uint32) color.RGBA {
	return color.RGBA{uint8(pixel >> 16), uint8(pixel >> 8), uint8(pixel), 0xFF}
}
