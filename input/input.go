// Package input reads the two brightness buttons and drives the backlight.
package input

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flavioheleno/wxpanel/config"
	"golang.org/x/time/rate"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Backlight sets the display brightness, 0-255.
type Backlight interface {
	SetBrightness(level uint8) error
}

// PWMBacklight dims an LED backlight with a PWM capable pin.
type PWMBacklight struct {
	pin  gpio.PinOut
	freq physic.Frequency
}

// NewPWMBacklight drives pin at 10kHz.
func NewPWMBacklight(pin gpio.PinOut) *PWMBacklight {
	return &PWMBacklight{pin: pin, freq: 10 * physic.KiloHertz}
}

// SetBrightness implements Backlight with a duty cycle of level/255.
func (b *PWMBacklight) SetBrightness(level uint8) error {
	duty := gpio.Duty(int64(gpio.DutyMax) * int64(level) / 255)
	if err := b.pin.PWM(duty, b.freq); err != nil {
		return fmt.Errorf("input: backlight pwm: %w", err)
	}
	return nil
}

// Opts is the configuration for a Controller.
type Opts struct {
	Debounce time.Duration // minimum time between accepted presses, default 200ms
	Step     int           // brightness change per press, default 20
	Logger   *slog.Logger  // nil uses slog.Default()
}

// Controller polls the buttons and applies brightness changes. Buttons are
// active-low with the internal pull-up enabled.
type Controller struct {
	up, down gpio.PinIn
	bl       Backlight
	disp     *config.Display
	lim      *rate.Limiter
	step     int
	log      *slog.Logger
}

// New configures the button pins, clamps the configured brightness into
// range and writes it to the backlight.
func New(up, down gpio.PinIn, bl Backlight, disp *config.Display, opts *Opts) (*Controller, error) {
	if up == nil || down == nil {
		return nil, errors.New("input: both buttons are required")
	}
	if bl == nil {
		return nil, errors.New("input: backlight is required")
	}
	if disp == nil {
		return nil, errors.New("input: display config is required")
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Debounce == 0 {
		o.Debounce = 200 * time.Millisecond
	}
	if o.Step == 0 {
		o.Step = 20
	}
	if o.Debounce < 0 || o.Step < 0 {
		return nil, errors.New("input: debounce and step must be positive")
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if err := errors.Join(
		up.In(gpio.PullUp, gpio.NoEdge),
		down.In(gpio.PullUp, gpio.NoEdge),
	); err != nil {
		return nil, fmt.Errorf("input: configure buttons: %w", err)
	}

	c := &Controller{
		up:   up,
		down: down,
		bl:   bl,
		disp: disp,
		lim:  rate.NewLimiter(rate.Every(o.Debounce), 1),
		step: o.Step,
		log:  o.Logger,
	}
	disp.Brightness = min(max(disp.Brightness, config.MinBrightness), config.MaxBrightness)
	if err := c.apply(); err != nil {
		return nil, err
	}
	c.log.Info("input: brightness control ready", "brightness", disp.Brightness)
	return c, nil
}

// Poll reads both buttons at now. Presses inside the debounce window are
// ignored. Up raises and down lowers the brightness by one step, clamped to
// [config.MinBrightness, config.MaxBrightness]; both may apply in the same
// poll. A press at the bound changes nothing and does not restart the
// debounce window.
func (c *Controller) Poll(now time.Time) error {
	if c.lim.TokensAt(now) < 1 {
		return nil
	}

	var errs []error
	fired := false
	if c.up.Read() == gpio.Low && c.disp.Brightness < config.MaxBrightness {
		c.disp.Brightness = min(c.disp.Brightness+c.step, config.MaxBrightness)
		c.log.Info("input: brightness increased", "brightness", c.disp.Brightness)
		errs = append(errs, c.apply())
		fired = true
	}
	if c.down.Read() == gpio.Low && c.disp.Brightness > config.MinBrightness {
		c.disp.Brightness = max(c.disp.Brightness-c.step, config.MinBrightness)
		c.log.Info("input: brightness decreased", "brightness", c.disp.Brightness)
		errs = append(errs, c.apply())
		fired = true
	}
	if fired {
		c.lim.AllowN(now, 1)
	}
	return errors.Join(errs...)
}

// Brightness returns the current brightness.
func (c *Controller) Brightness() int {
	return c.disp.Brightness
}

func (c *Controller) apply() error {
	if err := c.bl.SetBrightness(uint8(c.disp.Brightness)); err != nil {
		return fmt.Errorf("input: set brightness %d: %w", c.disp.Brightness, err)
	}
	return nil
}
