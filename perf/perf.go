// Package perf tracks the frame rate of the render loop and the memory left
// on the device.
package perf

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Report is one reporting window.
type Report struct {
	FPS        float64
	FreeMemory uint64 // bytes
	Frames     int
}

func (r Report) String() string {
	return fmt.Sprintf("Performance: FPS=%.1f, Free Heap=%d bytes, Frame Count=%d", r.FPS, r.FreeMemory, r.Frames)
}

// Opts is the configuration for a Monitor.
type Opts struct {
	Interval   time.Duration         // reporting window, default 10s
	Registerer prometheus.Registerer // nil leaves the metrics unregistered
	FreeMemory func() uint64         // nil reads the system
	Logger     *slog.Logger          // nil uses slog.Default()
}

// Monitor counts frames and emits a Report once per interval. It belongs to
// the render loop.
type Monitor struct {
	interval time.Duration
	free     func() uint64
	log      *slog.Logger

	started     bool
	windowStart time.Time
	count       int
	last        Report

	fps        prometheus.Gauge
	freeMemory prometheus.Gauge
	frames     prometheus.Counter
}

// New returns a Monitor. opts can be nil.
func New(opts *Opts) (*Monitor, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Interval == 0 {
		o.Interval = 10 * time.Second
	}
	if o.Interval < 0 {
		return nil, errors.New("perf: interval must be positive")
	}
	if o.FreeMemory == nil {
		o.FreeMemory = freeMemory
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	m := &Monitor{
		interval: o.Interval,
		free:     o.FreeMemory,
		log:      o.Logger,
	}
	if err := m.register(o.Registerer); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) register(reg prometheus.Registerer) error {
	m.fps = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wxpanel_fps",
		Help: "Frames per second over the last reporting window.",
	})
	m.freeMemory = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wxpanel_free_memory_bytes",
		Help: "Free memory at the last report.",
	})
	m.frames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wxpanel_frames_total",
		Help: "Frames flushed to the display.",
	})
	if reg == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{m.fps, m.freeMemory, m.frames} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("perf: register metrics: %w", err)
		}
	}
	return nil
}

// Frame records a frame flushed at now. The first frame starts the window.
// Once the window spans the interval, Frame logs and returns a Report and
// starts a new window at now.
func (m *Monitor) Frame(now time.Time) (Report, bool) {
	m.frames.Inc()
	if !m.started {
		m.started = true
		m.windowStart = now
		return Report{}, false
	}
	m.count++
	if now.Sub(m.windowStart) < m.interval {
		return Report{}, false
	}

	r := Report{
		FPS:        float64(m.count) / m.interval.Seconds(),
		FreeMemory: m.free(),
		Frames:     m.count,
	}
	m.log.Info(r.String(), "fps", r.FPS, "free_bytes", r.FreeMemory, "frames", r.Frames)
	m.fps.Set(r.FPS)
	m.freeMemory.Set(float64(r.FreeMemory))

	m.last = r
	m.count = 0
	m.windowStart = now
	return r, true
}

// Count returns the frames counted in the current window.
func (m *Monitor) Count() int {
	return m.count
}

// Last returns the most recent Report.
func (m *Monitor) Last() Report {
	return m.last
}

// heapFree estimates free memory from the Go heap.
func heapFree() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapSys - ms.HeapInuse
}
