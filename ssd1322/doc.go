// Package ssd1322 controls a SSD1322 OLED display via SPI.
//
// The SSD1322 is a 4-bit grayscale OLED controller supporting up to 480×128 pixels.
// This driver implements the display.Drawer interface from periph.io and is the
// hardware sink the panel compositor flushes into.
//
// # Display Characteristics
//
// - 4-bit grayscale with 16 intensity levels (0-15)
// - Support for various resolutions (typically 256×64 or 128×64)
// - Adjustable contrast (0-255), exposed as SetBrightness for the buttons
// - 480-column internal RAM with automatic centering for smaller displays
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V (or 5V depending on display)
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select (or GND if always selected)
//	RES         → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	if _, err := host.Init(); err != nil {
//		log.Fatal(err)
//	}
//	port, err := spireg.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	dev, err := ssd1322.NewSPI(port, gpioreg.ByName("GPIO25"), &ssd1322.Opts{
//		W:   256,
//		H:   64,
//		RST: gpioreg.ByName("GPIO27"), // optional
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Halt()
//
//	frame := image4bit.NewHorizontalNibble(dev.Bounds())
//	frame.FillRect(image.Rect(0, 0, 64, 64), image4bit.Gray4{Y: 15})
//	dev.Draw(dev.Bounds(), frame, image.Point{})
//
// When RST is set, the driver pulls it low for 200ms and high for 200ms before
// sending the initialization sequence. Otherwise it relies on power-on reset.
//
// # Frame Transfer
//
// Draw assembles the source into the device frame and sends only the bounding
// box of pixels that changed since the previous frame, aligned to the 4-pixel
// RAM columns, in a single window write. The source may be larger than the
// panel; sp selects the visible window:
//
//	// Show the 256×64 area of a 320×170 layout starting at (32, 100).
//	dev.Draw(dev.Bounds(), layout, image.Point{X: 32, Y: 100})
//
// Write sends a raw full frame (W*H/2 bytes in HorizontalNibble order).
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/SSD1322.pdf
package ssd1322
