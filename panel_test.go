package wxpanel

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flavioheleno/wxpanel/assets"
	"github.com/flavioheleno/wxpanel/compositor"
	"github.com/flavioheleno/wxpanel/config"
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

type fakeTicker struct{ ticks atomic.Int64 }

func (f *fakeTicker) Tick() bool {
	f.ticks.Add(1)
	return false
}

type fakePoller struct {
	polls int
	err   error
}

func (f *fakePoller) Poll(time.Time) error {
	f.polls++
	return f.err
}

type fakeComposer struct {
	frames atomic.Int64
	err    error
}

func (f *fakeComposer) Compose(time.Time) error {
	f.frames.Add(1)
	return f.err
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil", nil, true},
		{"no scroll", &Opts{Compose: &fakeComposer{}}, true},
		{"no compose", &Opts{Scroll: &fakeTicker{}}, true},
		{"no input", &Opts{Scroll: &fakeTicker{}, Compose: &fakeComposer{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name       string
		input      *fakePoller
		composeErr error
		wantErr    bool
	}{
		{"ok", &fakePoller{}, nil, false},
		{"no input", nil, nil, false},
		{"input fails", &fakePoller{err: errors.New("gpio")}, nil, true},
		{"flush fails", &fakePoller{}, errors.New("spi"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tick := &fakeTicker{}
			comp := &fakeComposer{err: tt.composeErr}
			opts := &Opts{Scroll: tick, Compose: comp, Logger: quiet()}
			if tt.input != nil {
				opts.Input = tt.input
			}
			p, err := New(opts)
			if err != nil {
				t.Fatal(err)
			}

			err = p.Step(time.Unix(0, 0))
			if (err != nil) != tt.wantErr {
				t.Errorf("Step() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tick.ticks.Load() != 1 || comp.frames.Load() != 1 {
				t.Errorf("ticks = %d, frames = %d, want 1 and 1", tick.ticks.Load(), comp.frames.Load())
			}
			if tt.input != nil && tt.input.polls != 1 {
				t.Errorf("polls = %d, want 1", tt.input.polls)
			}
			if p.Steps() != 1 {
				t.Errorf("Steps() = %d, want 1", p.Steps())
			}
		})
	}
}

func TestRun(t *testing.T) {
	comp := &fakeComposer{err: errors.New("spi")}
	p, err := New(&Opts{Scroll: &fakeTicker{}, Compose: comp, Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Run(context.Background(), 0); err == nil {
		t.Error("Run() with a zero period should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for comp.frames.Load() < 5 {
		select {
		case <-deadline:
			t.Fatalf("only %d frames before deadline", comp.frames.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil after cancel", err)
	}
}

func TestPanelEndToEnd(t *testing.T) {
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
	mon, err := perf.New(&perf.Opts{Interval: time.Second, Logger: quiet(), FreeMemory: func() uint64 { return 1 << 20 }})
	if err != nil {
		t.Fatal(err)
	}
	disp := config.Default().Display
	sink := &displaytest.Drawer{Img: image.NewNRGBA(image.Rect(0, 0, 320, 170))}
	comp, err := compositor.New(&compositor.Opts{
		Fonts:   fonts,
		Engine:  engine,
		Weather: store,
		Display: &disp,
		Clock:   compositor.FixedClock("08:15:00"),
		Sink:    sink,
		Frames:  mon,
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := New(&Opts{Scroll: engine, Compose: comp, Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}

	first := engine.Active()
	s := weather.DefaultSnapshot()
	s.Description = "light rain"
	store.Replace(s)

	now := time.Unix(1000, 0)
	for i := 0; i < 200; i++ {
		if err := p.Step(now); err != nil {
			t.Fatalf("Step(%d) error = %v", i, err)
		}
		if engine.Active() != first {
			t.Fatalf("message changed mid-scroll at step %d", i)
		}
		now = now.Add(33 * time.Millisecond)
	}
	if err := p.Step(now); err != nil {
		t.Fatal(err)
	}
	if engine.Active() != s.StatusMessage() {
		t.Errorf("Active() = %q after wrap, want the staged message", engine.Active())
	}
	if comp.Counter() != 201 {
		t.Errorf("Counter() = %d, want 201", comp.Counter())
	}
	if r := mon.Last(); r.Frames == 0 || r.FreeMemory != 1<<20 {
		t.Errorf("Last() = %+v, want a report over 6.6s of frames", r)
	}
}
