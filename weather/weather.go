// Package weather holds the latest weather snapshot shown by the panel.
package weather

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Snapshot is one observation of the current weather. It is treated as an
// immutable value and replaced wholesale on every fetch.
type Snapshot struct {
	Temperature   float64
	FeelsLike     float64
	Humidity      float64 // percent
	Pressure      float64 // hPa
	WindSpeed     float64 // km/h
	CloudCoverage float64 // percent
	Visibility    float64 // km

	Sunrise     time.Time
	Sunset      time.Time
	LastUpdated time.Time

	Description string
	Icon        string // OpenWeatherMap icon code, e.g. "01d"
}

// DefaultSnapshot returns the values shown before the first fetch completes.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Temperature:   22.2,
		FeelsLike:     22.2,
		Humidity:      50,
		Pressure:      1013,
		WindSpeed:     5,
		CloudCoverage: 25,
		Visibility:    10,
		Sunrise:       time.Date(0, 1, 1, 6, 0, 0, 0, time.UTC),
		Sunset:        time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC),
		LastUpdated:   time.Date(0, 1, 1, 12, 0, 0, 0, time.UTC),
		Description:   "clear sky",
	}
}

// TopRow returns the values of the upper data cells: feels-like,
// cloud coverage and visibility.
func (s Snapshot) TopRow() [3]float64 {
	return [3]float64{s.FeelsLike, s.CloudCoverage, s.Visibility}
}

// BottomRow returns the values of the lower data cells: humidity, pressure
// and wind speed.
func (s Snapshot) BottomRow() [3]float64 {
	return [3]float64{s.Humidity, s.Pressure, s.WindSpeed}
}

// StatusMessage returns the scrolling status line for s.
func (s Snapshot) StatusMessage() string {
	return fmt.Sprintf("... %s, visibility is %.1fkm/h, wind of %.1fkm/h, last updated at %s ...",
		s.Description, s.Visibility, s.WindSpeed, s.LastUpdated.Format(time.TimeOnly))
}

// Stager receives new status messages.
type Stager interface {
	Stage(text string)
}

// Store holds the current snapshot. Replace may be called from any
// goroutine; readers always see a complete snapshot.
type Store struct {
	cur    atomic.Pointer[Snapshot]
	stager Stager
	log    *slog.Logger
}

// NewStore returns a Store seeded with DefaultSnapshot. Its status message
// is staged on stager. logger can be nil.
func NewStore(stager Stager, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{stager: stager, log: logger}
	s.Replace(DefaultSnapshot())
	return s
}

// Replace swaps in snap and stages its status message.
func (s *Store) Replace(snap Snapshot) {
	s.cur.Store(&snap)
	msg := snap.StatusMessage()
	s.log.Info("weather: snapshot replaced", "description", snap.Description, "temperature", snap.Temperature)
	s.log.Debug("weather: status staged", "message", msg)
	if s.stager != nil {
		s.stager.Stage(msg)
	}
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	return *s.cur.Load()
}

// Message returns the status message of the latest snapshot.
func (s *Store) Message() string {
	return s.Current().StatusMessage()
}
