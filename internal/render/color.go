package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#rrggbb" or "#rgb" color.
func ParseColor(s string) (tcell.Color, error) {
	c, err := colorful.Hex(expandHex(s))
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("parse color %q: %w", s, err)
	}
	return toTcell(c), nil
}

func expandHex(s string) string {
	if len(s) == 4 && s[0] == '#' {
		return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return s
}

// AlternateBackground returns the background of odd blocks: bg moved
// towards the middle of the lightness range by shift, so dark themes get
// a lighter band and light themes a darker one.
func AlternateBackground(bg tcell.Color, shift float64) tcell.Color {
	c, ok := fromTcell(bg)
	if !ok || shift == 0 {
		return bg
	}
	l, a, b := c.Lab()
	if l < 0.5 {
		l += shift
	} else {
		l -= shift
	}
	return toTcell(colorful.Lab(l, a, b))
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func fromTcell(c tcell.Color) (colorful.Color, bool) {
	if !c.Valid() {
		return colorful.Color{}, false
	}
	r, g, b := c.RGB()
	if r < 0 || g < 0 || b < 0 {
		return colorful.Color{}, false
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, true
}
