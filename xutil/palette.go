package xutil

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MaxLevel is the full brightness level. Levels run from 0 to MaxLevel.
const MaxLevel = 100

// A Palette is an ordered list of X color names.
type Palette []string

// DefaultPalette is the palette used by the demo programs.
var DefaultPalette = Palette{
	"SteelBlue1",
	"PaleGreen",
	"LightGoldenrod",
	"chocolate1",
	"black",
	"LightCyan",
	"aquamarine1",
	"aquamarine2",
	"aquamarine3",
	"aquamarine4",
	"DarkSlateGray",
	"orange",
	"OrangeRed",
}

// ReadPalette reads a palette with one color name per line.
// Blank lines and lines starting with ! or # are ignored, as in rgb.txt.
// A name may not appear twice.
func ReadPalette(r io.Reader) (Palette, error) {
	var p Palette
	seen := make(map[string]int)
	s := bufio.NewScanner(r)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '!' || line[0] == '#' {
			continue
		}
		if n, ok := seen[line]; ok {
			return nil, fmt.Errorf("palette:%d: %s already listed on line %d", lineno, line, n)
		}
		seen[line] = lineno
		p = append(p, line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("palette: no colors")
	}
	return p, nil
}

// Scale returns pixel, a 0xRRGGBB value, with each of red, green and
// blue multiplied by level/MaxLevel, truncating. Level MaxLevel returns
// pixel unchanged and level 0 returns black. Levels outside 0 to
// MaxLevel are clamped to that range.
func Scale(pixel uint32, level int) uint32 {
	level = max(0, min(level, MaxLevel))
	c := func(shift uint) uint32 {
		v := int(pixel>>shift) & 0xFF
		return uint32(v*level/MaxLevel) << shift
	}
	return c(16) | c(8) | c(0)
}
