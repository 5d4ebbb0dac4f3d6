package compositor

import (
	"image"

	"github.com/flavioheleno/wxpanel/assets"
	"github.com/flavioheleno/wxpanel/image4bit"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Datum selects which point of a text box the draw position refers to.
type Datum int

const (
	TopLeft Datum = iota
	MiddleCentre
)

// line draws a one pixel wide line from (x0, y0) to (x1, y1), both ends
// included.
func line(dst *image4bit.HorizontalNibble, x0, y0, x1, y1 int, c image4bit.Gray4) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		dst.SetGray4(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// fillCircle fills the disc of radius r centred at (cx, cy).
func fillCircle(dst *image4bit.HorizontalNibble, cx, cy, r int, c image4bit.Gray4) {
	for dy := -r; dy <= r; dy++ {
		w := span(r, dy)
		dst.FillRect(image.Rect(cx-w, cy+dy, cx+w+1, cy+dy+1), c)
	}
}

// fillRoundRect fills r with corners rounded to radius rad.
func fillRoundRect(dst *image4bit.HorizontalNibble, r image.Rectangle, rad int, c image4bit.Gray4) {
	rad = min(rad, r.Dx()/2, r.Dy()/2)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		inset := 0
		switch {
		case y < r.Min.Y+rad:
			inset = rad - span(rad, r.Min.Y+rad-y)
		case y >= r.Max.Y-rad:
			inset = rad - span(rad, y-(r.Max.Y-1-rad))
		}
		dst.FillRect(image.Rect(r.Min.X+inset, y, r.Max.X-inset, y+1), c)
	}
}

// span returns the largest dx with dx²+dy² ≤ r².
func span(r, dy int) int {
	dx := r
	for dx > 0 && dx*dx+dy*dy > r*r {
		dx--
	}
	return dx
}

// blit copies the opaque pixels of ic with its top-left corner at (x, y).
func blit(dst *image4bit.HorizontalNibble, ic *assets.Icon, x, y int) {
	for iy := 0; iy < ic.H; iy++ {
		for ix := 0; ix < ic.W; ix++ {
			if c, ok := ic.At(ix, iy); ok {
				dst.SetGray4(x+ix, y+iy, c)
			}
		}
	}
}

// textPen draws text with a reusable font.Drawer.
type textPen struct {
	d   font.Drawer
	src image.Uniform
}

// measure returns the advance width of s in whole pixels.
func (p *textPen) measure(face font.Face, s []byte) int {
	return font.MeasureBytes(face, s).Ceil()
}

// draw renders s into dst at (x, y) using datum to interpret the position.
func (p *textPen) draw(dst *image4bit.HorizontalNibble, face font.Face, s []byte, x, y int, c image4bit.Gray4, datum Datum) {
	if len(s) == 0 {
		return
	}
	m := face.Metrics()
	if datum == MiddleCentre {
		x -= p.measure(face, s) / 2
		y -= (m.Ascent + m.Descent).Ceil() / 2
	}
	p.src.C = c
	p.d.Dst = dst
	p.d.Src = &p.src
	p.d.Face = face
	p.d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + m.Ascent}
	p.d.DrawBytes(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
