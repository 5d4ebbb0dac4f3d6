// Package scroll implements the scrolling status message of the panel.
//
// An Engine keeps two fixed message buffers. The active buffer is the text
// currently animating across the strip; the pending buffer holds the next
// message. Producers Stage new text into pending at any time, and the render
// loop promotes it to active only when the animation cursor wraps, so the
// visible text never changes mid-scroll.
package scroll

import (
	"errors"
	"log/slog"
	"sync"
	"unicode/utf8"
)

// Capacity is the size in bytes of each message buffer.
const Capacity = 256

// MeasureFunc returns the rendered width in pixels of text.
type MeasureFunc func(text []byte) int

// DrawFunc draws text with its left edge at strip coordinate x.
type DrawFunc func(text []byte, x int)

// Opts is the configuration for an Engine.
type Opts struct {
	StripWidth int // Visible strip width in pixels
	Start      int // Cursor position after a wrap
	Threshold  int // Cursor wraps once it drops below this value
	Step       int // Pixels the cursor moves per tick
	Spacing    int // Gap between two consecutive copies of the text

	Logger *slog.Logger // nil uses slog.Default()
}

// DefaultOpts returns the options used by the weather panel.
func DefaultOpts() Opts {
	return Opts{
		StripWidth: 170,
		Start:      0,
		Threshold:  -400,
		Step:       2,
		Spacing:    80,
	}
}

func (o *Opts) validate() error {
	if o.StripWidth <= 0 {
		return errors.New("scroll: strip width must be positive")
	}
	if o.Step <= 0 {
		return errors.New("scroll: step must be positive")
	}
	if o.Threshold >= o.Start {
		return errors.New("scroll: threshold must be below start")
	}
	if o.Spacing < 0 {
		return errors.New("scroll: spacing must not be negative")
	}
	return nil
}

// Engine is the double-buffered scrolling message.
//
// Stage may be called from any goroutine. Prime, Tick and Render belong to
// the render loop.
type Engine struct {
	opts Opts
	log  *slog.Logger

	mu          sync.Mutex
	pending     [Capacity]byte
	pendingLen  int
	swapPending bool

	active     [Capacity]byte
	activeLen  int
	width      int
	widthValid bool
	cursor     int
}

// New returns an Engine with an empty active message and the cursor at
// opts.Start. opts can be nil to use DefaultOpts.
func New(opts *Opts) (*Engine, error) {
	o := DefaultOpts()
	if opts != nil {
		o = *opts
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		opts:   o,
		log:    log,
		cursor: o.Start,
	}, nil
}

// Stage copies text into the pending buffer, truncated to Capacity bytes on
// a rune boundary, and marks it for promotion at the next wrap. The active
// message and its cached width are left alone.
func (e *Engine) Stage(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingLen = copy(e.pending[:], truncate(text))
	e.swapPending = true
}

// Prime makes text active immediately and clears any staged message. It is
// meant for startup, before the first frame is drawn.
func (e *Engine) Prime(text string) {
	e.mu.Lock()
	e.pendingLen = 0
	e.swapPending = false
	e.mu.Unlock()

	e.activeLen = copy(e.active[:], truncate(text))
	e.widthValid = false
}

// Tick advances the cursor by one step. When the cursor drops below the
// threshold it returns to the start position and, at that instant only, a
// staged message becomes active. Tick reports whether a swap happened.
func (e *Engine) Tick() bool {
	e.cursor -= e.opts.Step
	if e.cursor >= e.opts.Threshold {
		return false
	}
	e.cursor = e.opts.Start

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.swapPending {
		return false
	}
	e.activeLen = copy(e.active[:], e.pending[:e.pendingLen])
	e.swapPending = false
	e.widthValid = false
	e.log.Debug("scroll: message swapped at wrap", "bytes", e.activeLen)
	return true
}

// Render draws the active message into the strip and returns the number of
// copies drawn. The width is measured once after each swap and cached. A
// second copy follows the first at width+spacing so the loop looks
// seamless. Copies lying entirely outside (0, StripWidth) are not drawn.
func (e *Engine) Render(measure MeasureFunc, draw DrawFunc) int {
	text := e.active[:e.activeLen]
	if !e.widthValid {
		e.width = 0
		if len(text) > 0 {
			e.width = max(measure(text), 0)
		}
		e.widthValid = true
	}
	if e.width == 0 {
		return 0
	}

	n := 0
	for _, x := range [2]int{e.cursor, e.cursor + e.width + e.opts.Spacing} {
		if x < e.opts.StripWidth && x+e.width > 0 {
			draw(text, x)
			n++
		}
	}
	return n
}

// Cursor returns the current animation offset.
func (e *Engine) Cursor() int {
	return e.cursor
}

// Width returns the cached pixel width of the active message, or 0 when it
// has not been measured since the last swap.
func (e *Engine) Width() int {
	if !e.widthValid {
		return 0
	}
	return e.width
}

// SwapPending reports whether a staged message is waiting for the next wrap.
func (e *Engine) SwapPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.swapPending
}

// Active returns a copy of the message currently animating.
func (e *Engine) Active() string {
	return string(e.active[:e.activeLen])
}

// truncate cuts s to at most Capacity bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= Capacity {
		return s
	}
	cut := Capacity
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
