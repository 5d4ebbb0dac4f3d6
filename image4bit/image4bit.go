package image4bit

import (
	"image"
	"image/color"
)

// Gray4 represents a 4-bit grayscale color (0-15 intensity levels).
// Only the lower 4 bits of Y are used.
type Gray4 struct {
	Y uint8
}

// RGBA converts the Gray4 color to standard RGBA.
// The 4-bit gray value (0-15) is scaled to 16-bit (0-65535).
func (c Gray4) RGBA() (r, g, b, a uint32) {
	// 0xF * 0x1111 = 0xFFFF, 0x5 * 0x1111 = 0x5555, etc.
	y := uint32(c.Y&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

// FromGray8 returns the Gray4 level nearest to an 8-bit luminance.
func FromGray8(y uint8) Gray4 {
	return Gray4{Y: uint8((uint16(y)*15 + 127) / 255)}
}

// toGray4 converts any color.Color to Gray4.
func toGray4(c color.Color) color.Color {
	if g, ok := c.(Gray4); ok {
		return g
	}
	r, g, b, _ := c.RGBA()
	// 0.299R + 0.587G + 0.114B on 16-bit channels, then down to 4 bits.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Gray4{Y: uint8(y >> 12)}
}

// Gray4Model converts colors to Gray4.
var Gray4Model = color.ModelFunc(toGray4)

// HorizontalNibble is a 4-bit grayscale image where pixels are stored in horizontal nibble packing.
// Each byte contains 2 pixels: high nibble = left pixel, low nibble = right pixel.
type HorizontalNibble struct {
	Pix    []byte          // Pixel data (2 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontalNibble creates a new HorizontalNibble image with the specified bounds.
// The width must be even (since 2 pixels per byte).
func NewHorizontalNibble(r image.Rectangle) *HorizontalNibble {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalNibble{Rect: r}
	}
	if w%2 != 0 {
		panic("image4bit: width must be even")
	}

	stride := w / 2
	return &HorizontalNibble{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *HorizontalNibble) ColorModel() color.Model {
	return Gray4Model
}

// Bounds returns the image bounds.
func (p *HorizontalNibble) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *HorizontalNibble) At(x, y int) color.Color {
	return p.Gray4At(x, y)
}

// Gray4At returns the Gray4 color of the pixel at (x, y).
func (p *HorizontalNibble) Gray4At(x, y int) Gray4 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Gray4{}
	}
	offset, shift := p.pixOffset(x, y)
	return Gray4{Y: (p.Pix[offset] >> shift) & 0x0F}
}

// Set sets the color of the pixel at (x, y).
func (p *HorizontalNibble) Set(x, y int, c color.Color) {
	p.SetGray4(x, y, Gray4Model.Convert(c).(Gray4))
}

// SetGray4 sets the Gray4 color of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *HorizontalNibble) SetGray4(x, y int, c Gray4) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := p.pixOffset(x, y)
	p.Pix[offset] = (p.Pix[offset] &^ (0x0F << shift)) | ((c.Y & 0x0F) << shift)
}

// Fill sets every pixel of the image to c.
func (p *HorizontalNibble) Fill(c Gray4) {
	b := packed(c)
	for i := range p.Pix {
		p.Pix[i] = b
	}
}

// FillRect sets every pixel of r that lies inside the image to c.
// Whole bytes are written where the row span allows it.
func (p *HorizontalNibble) FillRect(r image.Rectangle, c Gray4) {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return
	}
	b := packed(c)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		x := r.Min.X
		if (x-p.Rect.Min.X)&1 == 1 {
			p.SetGray4(x, y, c)
			x++
		}
		// Paired pixels starting on a high nibble.
		if n := (r.Max.X - x) / 2; n > 0 {
			start, _ := p.pixOffset(x, y)
			row := p.Pix[start : start+n]
			for i := range row {
				row[i] = b
			}
			x += n * 2
		}
		if x < r.Max.X {
			p.SetGray4(x, y, c)
		}
	}
}

// CopyFrom copies the pixels of src starting at sp into r of p, without
// any color conversion. When both images share nibble alignment for the
// copied span, rows are moved as bytes.
func (p *HorizontalNibble) CopyFrom(r image.Rectangle, src *HorizontalNibble, sp image.Point) {
	// Clip r against both images, keeping sp aligned with r.Min.
	orig := r.Min
	r = r.Intersect(p.Rect)
	r = r.Intersect(src.Rect.Add(orig.Sub(sp)))
	if r.Empty() {
		return
	}
	sp = sp.Add(r.Min.Sub(orig))

	dx := r.Dx()
	aligned := (r.Min.X-p.Rect.Min.X)&1 == 0 && (sp.X-src.Rect.Min.X)&1 == 0 && dx%2 == 0
	for y := 0; y < r.Dy(); y++ {
		if aligned {
			dOff, _ := p.pixOffset(r.Min.X, r.Min.Y+y)
			sOff, _ := src.pixOffset(sp.X, sp.Y+y)
			copy(p.Pix[dOff:dOff+dx/2], src.Pix[sOff:sOff+dx/2])
			continue
		}
		for x := 0; x < dx; x++ {
			p.SetGray4(r.Min.X+x, r.Min.Y+y, src.Gray4At(sp.X+x, sp.Y+y))
		}
	}
}

// packed returns c replicated in both nibbles of a byte.
func packed(c Gray4) byte {
	y := c.Y & 0x0F
	return y<<4 | y
}

// pixOffset returns the byte offset and bit shift for the pixel at (x, y).
// Even columns (relative to Rect.Min.X) use the high nibble, odd columns
// the low nibble.
func (p *HorizontalNibble) pixOffset(x, y int) (offset int, shift uint) {
	offset = (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)/2
	shift = uint(4 * (1 - ((x - p.Rect.Min.X) & 1)))
	return
}
