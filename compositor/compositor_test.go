package compositor

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/flavioheleno/wxpanel/assets"
	"github.com/flavioheleno/wxpanel/config"
	"github.com/flavioheleno/wxpanel/image4bit"
	"github.com/flavioheleno/wxpanel/perf"
	"github.com/flavioheleno/wxpanel/scroll"
	"github.com/flavioheleno/wxpanel/weather"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"periph.io/x/conn/v3/display/displaytest"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingSink struct {
	displaytest.Drawer
}

func (s *failingSink) Draw(image.Rectangle, image.Image, image.Point) error {
	return errors.New("spi: bus error")
}

type recordingCounter struct {
	frames []time.Time
}

func (r *recordingCounter) Frame(now time.Time) (perf.Report, bool) {
	r.frames = append(r.frames, now)
	return perf.Report{}, false
}

type rig struct {
	comp   *Compositor
	engine *scroll.Engine
	store  *weather.Store
	sink   *displaytest.Drawer
	disp   *config.Display
}

func newRig(t *testing.T, mutate func(o *Opts)) *rig {
	t.Helper()
	engine, err := scroll.New(&scroll.Opts{StripWidth: 170, Start: 0, Threshold: -400, Step: 2, Spacing: 80, Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}
	store := weather.NewStore(engine, quiet())
	engine.Prime(store.Message())

	fonts, err := assets.NewFonts(8, func(assets.FontID) (font.Face, error) {
		return inconsolata.Regular8x16, nil
	}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	disp := config.Default().Display
	sink := &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 320, 170))}

	opts := &Opts{
		Fonts:   fonts,
		Engine:  engine,
		Weather: store,
		Display: &disp,
		Clock:   FixedClock("12:34:56"),
		Sink:    sink,
	}
	if mutate != nil {
		mutate(opts)
	}
	comp, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &rig{comp: comp, engine: engine, store: store, sink: sink, disp: &disp}
}

func TestNewValidation(t *testing.T) {
	fonts, _ := assets.NewFonts(2, nil, quiet())
	engine, _ := scroll.New(nil)
	store := weather.NewStore(nil, quiet())
	disp := config.Default().Display
	sink := &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 320, 170))}
	valid := func() *Opts {
		return &Opts{Fonts: fonts, Engine: engine, Weather: store, Display: &disp, Sink: sink}
	}

	tests := []struct {
		name   string
		mutate func(o *Opts)
	}{
		{"no fonts", func(o *Opts) { o.Fonts = nil }},
		{"no engine", func(o *Opts) { o.Engine = nil }},
		{"no weather", func(o *Opts) { o.Weather = nil }},
		{"no display", func(o *Opts) { o.Display = nil }},
		{"no sink", func(o *Opts) { o.Sink = nil }},
		{"odd width", func(o *Opts) {
			o.Layout = DefaultLayout("x")
			o.Layout.Size.X = 321
		}},
		{"odd strip", func(o *Opts) {
			o.Layout = DefaultLayout("x")
			o.Layout.Strip.Max.X = 317
		}},
	}

	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(o)
			if _, err := New(o); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestComposeDrawsLayout(t *testing.T) {
	r := newRig(t, nil)
	if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	pal := assets.DefaultPalette()
	frame := r.comp.Frame()
	if got := frame.Gray4At(138, 100); got != pal[6] {
		t.Errorf("vertical divider = %v, want %v", got, pal[6])
	}
	if got := frame.Gray4At(134, 108); got != pal[6] {
		t.Errorf("horizontal divider end = %v, want %v", got, pal[6])
	}

	// The sink sees the same frame.
	if got, want := r.sink.Img.NRGBAAt(138, 100), sinkColor(pal[6]); got != want {
		t.Errorf("sink divider = %v, want %v", got, want)
	}
}

func TestComposeStrip(t *testing.T) {
	r := newRig(t, nil)
	if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
		t.Fatal(err)
	}

	pal := assets.DefaultPalette()
	strip := r.comp.Strip()
	if strip.Bounds().Size() != image.Pt(170, 14) {
		t.Fatalf("strip size = %v", strip.Bounds().Size())
	}
	text := 0
	for y := 0; y < 14; y++ {
		for x := 0; x < 170; x++ {
			c := strip.Gray4At(x, y)
			if c == (image4bit.Gray4{}) {
				t.Fatalf("strip pixel (%d, %d) is black", x, y)
			}
			if c != pal[10] {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("no text drawn into the strip")
	}

	if n := stripOverwrites(r.comp); n != 0 {
		t.Errorf("%d strip pixels differ in the frame", n)
	}
}

func TestComposeKeepsStripClear(t *testing.T) {
	tests := []struct {
		name string
		load assets.FaceLoader
	}{
		{"8x16", func(assets.FontID) (font.Face, error) { return inconsolata.Regular8x16, nil }},
		{"fallback 7x13", func(assets.FontID) (font.Face, error) { return nil, errors.New("no fonts") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fonts, err := assets.NewFonts(8, tt.load, quiet())
			if err != nil {
				t.Fatal(err)
			}
			r := newRig(t, func(o *Opts) { o.Fonts = fonts })

			// Enough frames for a two digit counter next to the strip.
			for i := 0; i < 12; i++ {
				if err := r.comp.Compose(time.Unix(int64(i), 0)); err != nil {
					t.Fatal(err)
				}
			}
			if n := stripOverwrites(r.comp); n != 0 {
				t.Errorf("%d strip pixels overwritten", n)
			}
		})
	}
}

// stripOverwrites counts frame pixels in the strip area that differ from the
// strip buffer.
func stripOverwrites(c *Compositor) int {
	l, frame, strip := c.l, c.Frame(), c.Strip()
	n := 0
	for y := 0; y < l.Strip.Dy(); y++ {
		for x := 0; x < l.Strip.Dx(); x++ {
			if frame.Gray4At(l.Strip.Min.X+x, l.Strip.Min.Y+y) != strip.Gray4At(x, y) {
				n++
			}
		}
	}
	return n
}

func sinkColor(c image4bit.Gray4) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func TestSplitClock(t *testing.T) {
	tests := []struct {
		in     string
		hm, ss string
	}{
		{"12:34:56", "12:34", "56"},
		{"07:05:09.123", "07:05", "09"},
		{"12:34", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hm, ss := splitClock(tt.in)
			if hm != tt.hm || ss != tt.ss {
				t.Errorf("splitClock(%q) = %q, %q, want %q, %q", tt.in, hm, ss, tt.hm, tt.ss)
			}
		})
	}
}

func TestAppendCell(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		v        float64
		unit     string
		want     string
	}{
		{"feels like keeps a decimal", 0, 0, 11.14, " °C", "11.1 °C"},
		{"clouds", 0, 1, 75.4, " %", "75 %"},
		{"visibility", 0, 2, 8.4, " km", "8 km"},
		{"humidity", 1, 0, 82.6, " %", "83 %"},
		{"pressure", 1, 1, 1008, " hPa", "1008 hPa"},
		{"wind", 1, 2, 18.04, " km/h", "18 km/h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(appendCell([]byte("x"), tt.row, tt.col, tt.v, tt.unit))
			if got != "x"+tt.want {
				t.Errorf("appendCell() = %q, want %q", got, "x"+tt.want)
			}
		})
	}
}

func TestComposeCounter(t *testing.T) {
	counter := &recordingCounter{}
	r := newRig(t, func(o *Opts) { o.Frames = counter })

	start := time.Unix(100, 0)
	for i := 0; i < 3; i++ {
		if err := r.comp.Compose(start.Add(time.Duration(i) * 33 * time.Millisecond)); err != nil {
			t.Fatal(err)
		}
	}
	if r.comp.Counter() != 3 {
		t.Errorf("Counter() = %d, want 3", r.comp.Counter())
	}
	if len(counter.frames) != 3 || !counter.frames[2].Equal(start.Add(66*time.Millisecond)) {
		t.Errorf("frame counter saw %v", counter.frames)
	}
}

func TestComposeFlushFailure(t *testing.T) {
	counter := &recordingCounter{}
	sink := &failingSink{displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 320, 170))}}
	r := newRig(t, func(o *Opts) {
		o.Sink = sink
		o.Frames = counter
	})

	if err := r.comp.Compose(time.Unix(0, 0)); err == nil {
		t.Fatal("Compose() should fail when the flush fails")
	}
	if r.comp.Counter() != 0 {
		t.Errorf("Counter() = %d after a failed flush, want 0", r.comp.Counter())
	}
	if len(counter.frames) != 0 {
		t.Errorf("frame counter called %d times, want 0", len(counter.frames))
	}
}

func TestComposeOrigin(t *testing.T) {
	sink := &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 16, 16))}
	r := newRig(t, func(o *Opts) {
		o.Sink = sink
		o.Origin = image.Pt(138, 100)
	})
	if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
		t.Fatal(err)
	}
	if got, want := sink.Img.NRGBAAt(0, 0), sinkColor(assets.DefaultPalette()[6]); got != want {
		t.Errorf("sink (0, 0) = %v, want the divider %v", got, want)
	}
}

func TestComposeIcon(t *testing.T) {
	tests := []struct {
		name  string
		icon  string
		drawn bool
	}{
		{"known", "01d", true},
		{"unknown", "99x", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, nil)
			s := weather.DefaultSnapshot()
			s.Icon = tt.icon
			r.store.Replace(s)
			if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
				t.Fatal(err)
			}

			l := DefaultLayout("x")
			lit := 0
			for y := l.Icon.Y; y < l.Icon.Y+16; y++ {
				for x := l.Icon.X; x < l.Icon.X+16; x++ {
					if r.comp.Frame().Gray4At(x, y) != (image4bit.Gray4{}) {
						lit++
					}
				}
			}
			if drawn := lit > 0; drawn != tt.drawn {
				t.Errorf("icon drawn = %v (%d pixels), want %v", drawn, lit, tt.drawn)
			}
		})
	}
}

func TestComposeClock(t *testing.T) {
	tests := []struct {
		name    string
		clock   Clock
		seconds bool
	}{
		{"time", FixedClock("12:34:56"), true},
		{"short", FixedClock("12:34"), false},
		{"empty", FixedClock(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, func(o *Opts) { o.Clock = tt.clock })
			if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
				t.Fatal(err)
			}

			// Seconds are drawn in black on the filled badge.
			l := DefaultLayout("x")
			inner := l.Seconds.Inset(l.SecondsR)
			black := 0
			for y := inner.Min.Y; y < inner.Max.Y; y++ {
				for x := inner.Min.X; x < inner.Max.X; x++ {
					if r.comp.Frame().Gray4At(x, y) == (image4bit.Gray4{}) {
						black++
					}
				}
			}
			if got := black > 0; got != tt.seconds {
				t.Errorf("seconds drawn = %v, want %v", got, tt.seconds)
			}
		})
	}
}

func TestComposeUnits(t *testing.T) {
	tests := []struct {
		units string
		text  string
	}{
		{"metric", "C"},
		{"imperial", "F"},
	}
	for _, tt := range tests {
		t.Run(tt.units, func(t *testing.T) {
			r := newRig(t, nil)
			r.disp.Units = tt.units
			if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
				t.Fatal(err)
			}
			l := DefaultLayout("x")
			at := l.Unit
			if tt.units != "metric" {
				at = l.UnitAlt
			}
			lit := 0
			for y := at.Y; y < at.Y+16; y++ {
				for x := at.X; x < at.X+8; x++ {
					if r.comp.Frame().Gray4At(x, y) != (image4bit.Gray4{}) {
						lit++
					}
				}
			}
			if lit == 0 {
				t.Errorf("unit %q not drawn at %v", tt.text, at)
			}
		})
	}
}

func TestComposeFollowsStagedMessage(t *testing.T) {
	r := newRig(t, nil)
	s := weather.DefaultSnapshot()
	s.Description = "heavy snow"
	r.store.Replace(s)

	if !r.engine.SwapPending() {
		t.Fatal("replacing the snapshot should stage a message")
	}
	for i := 0; i < 201; i++ {
		r.engine.Tick()
	}
	if r.engine.SwapPending() {
		t.Fatal("message should be active after a full scroll")
	}
	if err := r.comp.Compose(time.Unix(0, 0)); err != nil {
		t.Fatal(err)
	}
	if r.engine.Width() != len(s.StatusMessage())*8 {
		t.Errorf("Width() = %d, want %d", r.engine.Width(), len(s.StatusMessage())*8)
	}
}
