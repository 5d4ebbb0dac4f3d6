// Package assets provides the fixed resources the panel is drawn with: the
// gray palette, weather icons and font faces.
package assets

import "github.com/flavioheleno/wxpanel/image4bit"

// Levels is the number of shades in a Palette.
const Levels = 11

// Palette is a ramp of shades ordered from lightest to darkest.
type Palette [Levels]image4bit.Gray4

// DefaultPalette returns the ramp used by the panel: 8-bit levels 210, 190,
// down to 10, mapped onto the 16 display levels.
func DefaultPalette() Palette {
	var p Palette
	v := 210
	for i := range p {
		p[i] = image4bit.FromGray8(uint8(v))
		v -= 20
	}
	return p
}

// Shade returns shade i, clamped to the ends of the ramp.
func (p Palette) Shade(i int) image4bit.Gray4 {
	return p[min(max(i, 0), Levels-1)]
}
