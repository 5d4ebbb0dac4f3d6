// Package wxpanel drives a small weather station display.
//
// A Panel runs the render loop. Every step advances the scrolling status
// message, polls the brightness buttons and composes a frame that is flushed
// to the display in one transfer. Weather data arrives out of band: a
// fetch.Poller replaces the snapshot held by a weather.Store, which stages a
// new status message on the scroll.Engine. The engine only shows it once the
// current message has scrolled out, so the text never changes mid-scroll.
//
// Packages:
//
//   - scroll: the double-buffered scrolling message
//   - compositor: panel layout, drawing primitives and the flush
//   - weather: the snapshot store and status message
//   - input: debounced brightness buttons and backlight
//   - perf: frame rate and free memory reports
//   - assets: palette, icons and fonts
//   - fetch: OpenWeatherMap client and poller
//   - config: .env and environment configuration
//   - image4bit, ssd1322: the 4-bit framebuffer and the OLED driver
//
// Example wiring, without hardware:
//
//	engine, _ := scroll.New(nil)
//	store := weather.NewStore(engine, nil)
//	engine.Prime(store.Message())
//	fonts, _ := assets.NewFonts(8, nil, nil)
//	disp := config.Default().Display
//	comp, _ := compositor.New(&compositor.Opts{
//		Fonts:   fonts,
//		Engine:  engine,
//		Weather: store,
//		Display: &disp,
//		Sink:    &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 320, 170))},
//	})
//	panel, _ := wxpanel.New(&wxpanel.Opts{Scroll: engine, Compose: comp})
//	panel.Run(ctx, 33*time.Millisecond)
package wxpanel
