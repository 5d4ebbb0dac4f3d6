package wxpanel

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Ticker advances the scrolling animation by one step.
type Ticker interface {
	Tick() bool
}

// Poller samples inputs at a point in time.
type Poller interface {
	Poll(now time.Time) error
}

// Composer draws and flushes one frame.
type Composer interface {
	Compose(now time.Time) error
}

// Opts wires a Panel.
type Opts struct {
	Scroll  Ticker
	Input   Poller // nil when the panel has no buttons
	Compose Composer
	Logger  *slog.Logger     // nil uses slog.Default()
	Now     func() time.Time // nil uses time.Now
}

// Panel is the render loop: each step updates the animation and inputs,
// then draws a frame.
type Panel struct {
	scroll  Ticker
	input   Poller
	compose Composer
	log     *slog.Logger
	now     func() time.Time

	steps  uint64
	errors uint64
}

// New returns a Panel. Scroll and Compose are required.
func New(opts *Opts) (*Panel, error) {
	if opts == nil || opts.Scroll == nil || opts.Compose == nil {
		return nil, errors.New("wxpanel: scroll and compose are required")
	}
	p := &Panel{
		scroll:  opts.Scroll,
		input:   opts.Input,
		compose: opts.Compose,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Update advances the scroll cursor and polls the buttons.
func (p *Panel) Update(now time.Time) error {
	p.scroll.Tick()
	if p.input == nil {
		return nil
	}
	return p.input.Poll(now)
}

// Draw composes and flushes a frame.
func (p *Panel) Draw(now time.Time) error {
	return p.compose.Compose(now)
}

// Step runs Update then Draw. Draw runs even when Update fails.
func (p *Panel) Step(now time.Time) error {
	p.steps++
	return errors.Join(p.Update(now), p.Draw(now))
}

// Run steps the panel every period until ctx is done. Step errors are
// logged and the loop keeps going.
func (p *Panel) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		return errors.New("wxpanel: period must be positive")
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	p.log.Info("wxpanel: render loop started", "period", every)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("wxpanel: render loop stopped", "steps", p.steps, "errors", p.errors)
			return nil
		case <-ticker.C:
			if err := p.Step(p.now()); err != nil {
				p.errors++
				p.log.Error("wxpanel: step failed", "err", err)
			}
		}
	}
}

// Steps returns the number of steps run.
func (p *Panel) Steps() uint64 {
	return p.steps
}
