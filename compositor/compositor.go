// Package compositor draws the weather panel into an off-screen frame and
// flushes it to a display in one transfer.
//
// Each call to Compose renders the scrolling strip, lays out the left and
// right panels from the current weather snapshot and display settings, and
// hands the finished frame to the sink. Compose only reads state that is
// already in memory; the flush is its only I/O.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/flavioheleno/wxpanel/assets"
	"github.com/flavioheleno/wxpanel/config"
	"github.com/flavioheleno/wxpanel/image4bit"
	"github.com/flavioheleno/wxpanel/perf"
	"github.com/flavioheleno/wxpanel/scroll"
	"github.com/flavioheleno/wxpanel/weather"
	"golang.org/x/image/font"
	"periph.io/x/conn/v3/display"
)

// SnapshotSource returns the weather to show.
type SnapshotSource interface {
	Current() weather.Snapshot
}

// FrameCounter is told about every frame that reached the display.
type FrameCounter interface {
	Frame(now time.Time) (perf.Report, bool)
}

// Opts wires a Compositor to its collaborators.
type Opts struct {
	Layout  Layout         // zero value uses DefaultLayout
	Palette assets.Palette // zero value uses assets.DefaultPalette
	Fonts   *assets.Fonts
	Engine  *scroll.Engine
	Weather SnapshotSource
	Display *config.Display
	Clock   Clock // nil uses SystemClock
	Sink    display.Drawer
	Origin  image.Point // frame point shown at the sink's top-left corner
	Frames  FrameCounter
}

// Compositor owns the frame and strip buffers and the text scratch space.
// It belongs to the render loop.
type Compositor struct {
	l       Layout
	pal     assets.Palette
	fonts   *assets.Fonts
	engine  *scroll.Engine
	weather SnapshotSource
	disp    *config.Display
	clock   Clock
	sink    display.Drawer
	origin  image.Point
	frames  FrameCounter

	frame   *image4bit.HorizontalNibble
	strip   *image4bit.HorizontalNibble
	pen     textPen
	scratch []byte

	stripFace font.Face
	measure   scroll.MeasureFunc
	drawText  scroll.DrawFunc

	counter uint64
}

// New validates opts, preloads the layout fonts and allocates the buffers.
func New(opts *Opts) (*Compositor, error) {
	if opts == nil {
		return nil, errors.New("compositor: opts are required")
	}
	switch {
	case opts.Fonts == nil:
		return nil, errors.New("compositor: fonts are required")
	case opts.Engine == nil:
		return nil, errors.New("compositor: scroll engine is required")
	case opts.Weather == nil:
		return nil, errors.New("compositor: weather source is required")
	case opts.Display == nil:
		return nil, errors.New("compositor: display config is required")
	case opts.Sink == nil:
		return nil, errors.New("compositor: display sink is required")
	}

	l := opts.Layout
	if l.Size == (image.Point{}) {
		l = DefaultLayout(config.Default().Font)
	}
	if l.Size.X <= 0 || l.Size.X%2 != 0 || l.Size.Y <= 0 {
		return nil, fmt.Errorf("compositor: invalid frame size %v", l.Size)
	}
	if l.Strip.Empty() || l.Strip.Dx()%2 != 0 {
		return nil, fmt.Errorf("compositor: invalid strip %v", l.Strip)
	}
	pal := opts.Palette
	if pal == (assets.Palette{}) {
		pal = assets.DefaultPalette()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	c := &Compositor{
		l:       l,
		pal:     pal,
		fonts:   opts.Fonts,
		engine:  opts.Engine,
		weather: opts.Weather,
		disp:    opts.Display,
		clock:   clock,
		sink:    opts.Sink,
		origin:  opts.Origin,
		frames:  opts.Frames,
		frame:   image4bit.NewHorizontalNibble(image.Rectangle{Max: l.Size}),
		strip:   image4bit.NewHorizontalNibble(image.Rectangle{Max: l.Strip.Size()}),
		scratch: make([]byte, 0, 64),
	}
	c.measure = func(text []byte) int {
		return c.pen.measure(c.stripFace, text)
	}
	c.drawText = func(text []byte, x int) {
		c.pen.draw(c.strip, c.stripFace, text, x, c.l.StripTextY, c.pal[1], TopLeft)
	}
	c.fonts.Preload(l.Fonts.IDs()...)
	return c, nil
}

var (
	topLabels    = [3]string{"FEELS", "CLOUDS", "VISIBIL."}
	topUnits     = [3]string{" °C", " %", " km"}
	bottomLabels = [3]string{"HUMIDITY", "PRESSURE", "WIND"}
	bottomUnits  = [3]string{" %", " hPa", " km/h"}
)

// Compose draws one frame, flushes it and, on success, advances the update
// counter and reports the frame to the frame counter.
func (c *Compositor) Compose(now time.Time) error {
	c.strip.Fill(c.pal[10])
	c.stripFace = c.fonts.Bind(c.l.Fonts.Strip)
	c.engine.Render(c.measure, c.drawText)

	c.frame.Fill(image4bit.Gray4{})
	line(c.frame, c.l.VDivider[0].X, c.l.VDivider[0].Y, c.l.VDivider[1].X, c.l.VDivider[1].Y, c.pal[6])
	line(c.frame, c.l.HDivider[0].X, c.l.HDivider[0].Y, c.l.HDivider[1].X, c.l.HDivider[1].Y, c.pal[6])

	snap := c.weather.Current()
	c.drawLeft(snap)
	c.drawRight(snap)

	if err := c.sink.Draw(c.sink.Bounds(), c.frame, c.origin); err != nil {
		return fmt.Errorf("compositor: flush: %w", err)
	}
	c.counter++
	if c.frames != nil {
		c.frames.Frame(now)
	}
	return nil
}

func (c *Compositor) drawLeft(s weather.Snapshot) {
	l, p := &c.l, &c.pal

	c.text(l.Fonts.Header, "WEATHER", l.Header, p[1], TopLeft)
	c.text(l.Fonts.Label, "MICRO", l.Tag[0], p[5], TopLeft)
	c.text(l.Fonts.Label, "STATION", l.Tag[1], p[5], TopLeft)

	c.text(l.Fonts.Body, "CITY:", l.CityLabel, p[7], TopLeft)
	c.text(l.Fonts.Body, c.disp.City, l.City, p[3], TopLeft)

	c.scratch = strconv.AppendFloat(c.scratch[:0], s.Temperature, 'f', 1, 64)
	c.flush(l.Fonts.Big, l.Temperature, p[0], MiddleCentre)

	if c.disp.Metric() {
		c.text(l.Fonts.Body, "C", l.Unit, p[2], TopLeft)
	} else {
		c.text(l.Fonts.Body, "F", l.UnitAlt, p[2], TopLeft)
	}
	fillCircle(c.frame, l.Degree.X, l.Degree.Y, l.DegreeR, p[2])

	hm, ss := splitClock(c.clock.Time())
	c.text(l.Fonts.Time, hm, l.Clock, p[4], TopLeft)
	fillRoundRect(c.frame, l.Seconds, l.SecondsR, p[2])
	mid := l.Seconds.Min.Add(l.Seconds.Size().Div(2))
	c.text(l.Fonts.Body, ss, mid, image4bit.Gray4{}, MiddleCentre)
	c.text(l.Fonts.Label, "SECONDS", l.SecondsCap, p[5], TopLeft)
}

func (c *Compositor) drawRight(s weather.Snapshot) {
	l, p := &c.l, &c.pal

	c.text(l.Fonts.Body, "sunrise:", l.SunriseLabel, p[1], TopLeft)
	c.text(l.Fonts.Body, "sunset:", l.SunsetLabel, p[1], TopLeft)
	c.scratch = s.Sunrise.AppendFormat(c.scratch[:0], "15:04")
	c.flush(l.Fonts.Body, l.Sunrise, p[3], TopLeft)
	c.scratch = s.Sunset.AppendFormat(c.scratch[:0], "15:04")
	c.flush(l.Fonts.Body, l.Sunset, p[3], TopLeft)

	if ic, ok := assets.Lookup(s.Icon); ok {
		blit(c.frame, ic, l.Icon.X, l.Icon.Y)
	}

	top, bottom := s.TopRow(), s.BottomRow()
	for i := 0; i < 3; i++ {
		unit := topUnits[i]
		if i == 0 && !c.disp.Metric() {
			unit = " °F"
		}
		c.cell(0, i, topLabels[i], top[i], unit)
		c.cell(1, i, bottomLabels[i], bottom[i], bottomUnits[i])
	}

	c.text(l.Fonts.Label, "CURRENT CONDITIONS", l.Caption, p[4], TopLeft)
	c.scratch = strconv.AppendUint(c.scratch[:0], c.counter, 10)
	c.flush(l.Fonts.Label, l.Counter, p[9], TopLeft)

	// Drawn last: the strip area of the frame always matches the strip buffer.
	fillRoundRect(c.frame, l.StripBack, l.StripBackR, p[10])
	c.frame.CopyFrom(l.Strip, c.strip, image.Point{})
}

// splitClock splits "HH:MM:SS" into "HH:MM" and "SS". Shorter strings give
// two blanks.
func splitClock(t string) (hm, ss string) {
	if len(t) < 8 {
		return "", ""
	}
	return t[0:5], t[6:8]
}

// cell draws one labelled data box.
func (c *Compositor) cell(row, col int, label string, v float64, unit string) {
	l, p := &c.l, &c.pal
	at := l.Cells.Add(image.Pt(col*l.CellPitch.X, row*l.CellPitch.Y))
	fillRoundRect(c.frame, image.Rectangle{Min: at, Max: at.Add(l.CellSize)}, l.CellR, p[9])

	cx := at.X + l.CellSize.X/2
	c.text(l.Fonts.Label, label, image.Pt(cx, at.Y+l.CellLabelY), p[3], MiddleCentre)

	c.scratch = appendCell(c.scratch[:0], row, col, v, unit)
	c.flush(l.Fonts.Body, image.Pt(cx, at.Y+l.CellValueY), p[2], MiddleCentre)
}

// appendCell appends the value text of cell (row, col) to dst. Feels-like
// (row 0, column 0) keeps one decimal; every other value is rounded to a
// whole number.
func appendCell(dst []byte, row, col int, v float64, unit string) []byte {
	prec := 0
	if row == 0 && col == 0 {
		prec = 1
	}
	dst = strconv.AppendFloat(dst, v, 'f', prec, 64)
	return append(dst, unit...)
}

// text draws s through the scratch buffer.
func (c *Compositor) text(id assets.FontID, s string, at image.Point, col image4bit.Gray4, datum Datum) {
	c.scratch = append(c.scratch[:0], s...)
	c.flush(id, at, col, datum)
}

// flush draws the scratch buffer.
func (c *Compositor) flush(id assets.FontID, at image.Point, col image4bit.Gray4, datum Datum) {
	c.pen.draw(c.frame, c.fonts.Bind(id), c.scratch, at.X, at.Y, col, datum)
}

// Counter returns the number of frames flushed so far.
func (c *Compositor) Counter() uint64 {
	return c.counter
}

// Frame returns the frame buffer. Its content is valid until the next
// Compose.
func (c *Compositor) Frame() *image4bit.HorizontalNibble {
	return c.frame
}

// Strip returns the scrolling strip buffer.
func (c *Compositor) Strip() *image4bit.HorizontalNibble {
	return c.strip
}
