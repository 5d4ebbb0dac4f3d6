package compositor

import "time"

// Clock supplies the wall time shown on the panel as "HH:MM:SS".
type Clock interface {
	Time() string
}

// SystemClock reads the local time.
type SystemClock struct{}

// Time implements Clock.
func (SystemClock) Time() string {
	return time.Now().Format(time.TimeOnly)
}

// FixedClock always returns the same time. Useful for previews and tests.
type FixedClock string

// Time implements Clock.
func (c FixedClock) Time() string {
	return string(c)
}
