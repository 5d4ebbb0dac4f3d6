package ssd1322

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/flavioheleno/wxpanel/image4bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts is the configuration for the SSD1322 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 256, must be even and ≤480)
	H int // Height (default: 64, must be ≤128)

	// Rotation and mirroring
	Rotated       bool // 180° rotation
	Sequential    bool // Sequential COM pin configuration
	SwapTopBottom bool // Swap top/bottom display halves
	Inverted      bool // Start in inverted mode

	// Optional hardware reset pin
	RST gpio.PinIO // Reset pin (optional, nil if not used)
}

// Dev is the device handle for the SSD1322 display.
//
// Dev is safe for concurrent use; every bus transaction holds the device lock
// so a brightness change never interleaves with a frame transfer.
type Dev struct {
	mu sync.Mutex

	// Communication
	c   conn.Conn   // SPI connection
	dc  gpio.PinOut // Data/Command pin
	rst gpio.PinIO  // Reset pin (optional)

	// Display geometry
	rect         image.Rectangle
	columnOffset int // For centering on 480-column RAM

	// Pixel buffers
	next *image4bit.HorizontalNibble // Frame being assembled
	last []byte                      // Last frame sent to the panel

	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new SSD1322 device connected via SPI.
//
// The SPI port is configured for 10MHz, Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided and configured as an output.
//
// opts can be nil to use defaults (256x64 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 256, H: 64}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("ssd1322: dc pin is required")
	}

	// SSD1322 supports Mode0 or Mode3 up to 10MHz serial clock.
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1322: connect: %w", err)
	}

	d := newDev(c, dc, opts)
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(c conn.Conn, dc gpio.PinOut, opts *Opts) *Dev {
	rect := image.Rect(0, 0, opts.W, opts.H)
	return &Dev{
		c:            c,
		dc:           dc,
		rst:          opts.RST,
		rect:         rect,
		columnOffset: (480 - opts.W) / 2,
		next:         image4bit.NewHorizontalNibble(rect),
		last:         make([]byte, opts.W*opts.H/2),
	}
}

func (o *Opts) validate() error {
	if o.W <= 0 || o.W%2 != 0 || o.W > 480 {
		return errors.New("ssd1322: width must be even and between 2 and 480")
	}
	if o.H <= 0 || o.H > 128 {
		return errors.New("ssd1322: height must be between 1 and 128")
	}
	return nil
}

// init sends the initialization sequence to the display.
func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("ssd1322: failed to pull RST low: %w", err)
		}
		time.Sleep(200 * time.Millisecond)

		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("ssd1322: failed to pull RST high: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
	}

	if err := d.sendCommands(initSequence(opts)); err != nil {
		return err
	}
	if err := d.writeFullFrame(d.last); err != nil {
		return err
	}
	return d.sendCommand(0xAF) // Display ON
}

// initSequence builds the power-on command list for opts.
func initSequence(opts *Opts) []byte {
	cmds := []byte{
		0xFD, 0x12, // Unlock command codes
		0xAE,       // Display OFF
		0xB3, 0xF2, // Clock divider and oscillator frequency
		0xCA, byte(opts.H - 1), // MUX ratio
		0xA2, 0x00, // Display offset
		0xA1, 0x00, // Start line
	}

	remap1, remap2 := byte(0x14), byte(0x11)
	if opts.Rotated {
		remap1 = 0x06
	}
	if opts.Sequential {
		remap2 |= 0x01
	}
	if opts.SwapTopBottom {
		remap2 |= 0x02
	}

	mode := byte(0xA6) // Normal display mode
	if opts.Inverted {
		mode = 0xA7
	}

	return append(cmds,
		0xA0, remap1, remap2, // Remap and dual COM mode
		0xAB, 0x01, // Function selection (enable internal VDD)
		0xB4, 0xA0, 0xFD, // VSL (display enhancement)
		0xC1, 0xFF, // Contrast (max)
		0xC7, 0x0F, // Master contrast
		0xB9,       // Use default grayscale table
		0xB1, 0xE2, // Phase length
		0xD1, 0x82, 0x20, // Display enhancements
		0xBB, 0x1F, // Pre-charge voltage
		0xB6, 0x08, // Second pre-charge period
		0xBE, 0x07, // VCOMH voltage
		mode,
		0xA9, // Exit partial display mode
	)
}

func (d *Dev) sendCommand(cmd byte) error {
	return d.sendCommands([]byte{cmd})
}

func (d *Dev) sendCommands(cmds []byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.c.Tx(cmds, nil)
}

func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.c.Tx(data, nil)
}

// writeRect writes pixel data to a rectangular region of the display.
func (d *Dev) writeRect(x, y, width, height int, pixels []byte) error {
	// Column addresses are in units of 4 pixels on the 480-column RAM.
	colStart := byte((x + d.columnOffset) / 4)
	colEnd := byte((x + width - 1 + d.columnOffset) / 4)

	commands := []byte{
		0x15, colStart, colEnd, // Column address
		0x75, byte(y), byte(y + height - 1), // Row address
		0x5C, // Enable write to RAM
	}
	if err := d.sendCommands(commands); err != nil {
		return err
	}
	return d.sendData(pixels)
}

func (d *Dev) writeFullFrame(pixels []byte) error {
	return d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), pixels)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1322.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image4bit.Gray4Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw pixel data to the display in HorizontalNibble format.
// The data must be exactly d.rect.Dx() * d.rect.Dy() / 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return 0, errors.New("ssd1322: halted")
	}
	if len(pixels) != len(d.last) {
		return 0, errors.New("ssd1322: invalid buffer size")
	}
	if err := d.writeFullFrame(pixels); err != nil {
		return 0, err
	}
	copy(d.last, pixels)
	copy(d.next.Pix, pixels)
	return len(pixels), nil
}

// Draw presents src on the display.
//
// The source is first assembled into the device frame, then only the
// bounding box of the pixels that changed since the previous frame is sent, in
// a single RAM window write. A frame is therefore never partially visible.
// HorizontalNibble sources are copied without color conversion.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errors.New("ssd1322: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if img, ok := src.(*image4bit.HorizontalNibble); ok {
		d.next.CopyFrom(dst, img, sp)
	} else {
		draw.Draw(d.next, dst, src, sp, draw.Src)
	}

	minCol, maxCol, minRow, maxRow := d.calculateDiff()
	if minCol > maxCol {
		return nil
	}

	var pixels []byte
	if minCol == 0 && maxCol == d.rect.Dx()-1 && minRow == 0 && maxRow == d.rect.Dy()-1 {
		pixels = d.next.Pix
	} else {
		pixels = d.extractRegion(minCol, maxCol, minRow, maxRow)
	}
	if err := d.writeRect(minCol, minRow, maxCol-minCol+1, maxRow-minRow+1, pixels); err != nil {
		return err
	}
	copy(d.last, d.next.Pix)
	return nil
}

// calculateDiff compares the last sent frame with the next one to find the
// minimal changed region. Returns (minCol, maxCol, minRow, maxRow) with
// minCol > maxCol if nothing changed.
func (d *Dev) calculateDiff() (minCol, maxCol, minRow, maxRow int) {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := width / 2

	minRow, maxRow = height, -1
	minCol, maxCol = width, -1

	for y := 0; y < height; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		if bytes.Equal(d.last[rowStart:rowEnd], d.next.Pix[rowStart:rowEnd]) {
			continue
		}
		minRow = min(minRow, y)
		maxRow = max(maxRow, y)

		for x := 0; x < stride; x++ {
			if d.last[rowStart+x] != d.next.Pix[rowStart+x] {
				// Each byte represents 2 pixels
				minCol = min(minCol, x*2)
				maxCol = max(maxCol, x*2+1)
			}
		}
	}

	// Column windows are addressed in groups of 4 pixels.
	if maxCol >= 0 {
		minCol -= minCol % 4
		maxCol += 3 - maxCol%4
		maxCol = min(maxCol, width-1)
	}
	return
}

// extractRegion extracts the pixel data for a rectangular region.
func (d *Dev) extractRegion(minCol, maxCol, minRow, maxRow int) []byte {
	byteWidth := (maxCol - minCol + 1) / 2
	stride := d.rect.Dx() / 2

	result := make([]byte, 0, byteWidth*(maxRow-minRow+1))
	for y := minRow; y <= maxRow; y++ {
		srcStart := y*stride + minCol/2
		result = append(result, d.next.Pix[srcStart:srcStart+byteWidth]...)
	}
	return result
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errors.New("ssd1322: halted")
	}
	return d.sendCommands([]byte{0xC1, contrast})
}

// SetBrightness maps a backlight level onto the OLED contrast current.
// An OLED has no backlight, so this is how brightness buttons reach it.
func (d *Dev) SetBrightness(level uint8) error {
	return d.SetContrast(level)
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return errors.New("ssd1322: halted")
	}
	mode := byte(0xA6)
	if invert {
		mode = 0xA7
	}
	return d.sendCommand(mode)
}

// Halt powers off the display.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	return d.sendCommand(0xAE) // Display OFF
}
