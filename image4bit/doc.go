// Package image4bit provides the 4-bit grayscale framebuffer used by the panel.
//
// Frames are composed off-screen in this format and handed to the display sink
// in one piece. The SSD1322 OLED controller consumes the same layout natively, so
// a full-frame flush is a plain byte copy.
//
// Pixels are stored in horizontal nibble packing where each byte contains 2 pixels.
//
// Memory layout example for a 4-pixel row:
//
//	Pixels: 0  1  2  3
//	Values: 5  10 3  12
//	Bytes:  0x5A     0x3C
//	        (0x5A = high nibble: 5, low nibble: A=10)
//	        (0x3C = high nibble: 3, low nibble: C=12)
//
// This package provides:
//
// - Gray4: A color type representing 4-bit grayscale (0-15)
// - Gray4Model: A color model for converting standard Go colors to Gray4
// - HorizontalNibble: An image.Image / draw.Image implementation with
// byte-wise Fill, FillRect and CopyFrom fast paths for compositing
//
// Example usage:
//
//	frame := image4bit.NewHorizontalNibble(image.Rect(0, 0, 320, 170))
//	frame.Fill(image4bit.Gray4{})
//	frame.FillRect(image.Rect(144, 148, 318, 164), image4bit.Gray4{Y: 1})
//
//	strip := image4bit.NewHorizontalNibble(image.Rect(0, 0, 170, 14))
//	frame.CopyFrom(image.Rect(148, 149, 318, 163), strip, image.Point{})
package image4bit
