// Package config loads the station configuration from a .env file and the
// process environment.
//
// Values are resolved in order: built-in defaults, then the .env file, then
// WX_* environment variables. All keys are optional.
//
//	WX_CITY            city shown on the panel and sent to the weather API
//	WX_UNITS           "metric" for Celsius, anything else for Fahrenheit
//	WX_BRIGHTNESS      initial brightness, 10-255
//	WX_API_KEY         OpenWeatherMap application id
//	WX_API_URL         OpenWeatherMap current weather endpoint
//	WX_FETCH_INTERVAL  time between fetches, e.g. "10m"
//	WX_TICK            render loop period, e.g. "33ms"
//	WX_FONT            font file name or path for the panel text
//	WX_SPI             SPI port name ("" for the first one)
//	WX_DC_PIN          display data/command GPIO
//	WX_RST_PIN         display reset GPIO (optional)
//	WX_BTN_UP          brightness up button GPIO
//	WX_BTN_DOWN        brightness down button GPIO
//	WX_BACKLIGHT_PIN   PWM backlight GPIO (optional, OLED contrast otherwise)
//	WX_WIDTH           display width in pixels
//	WX_HEIGHT          display height in pixels
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Brightness bounds.
const (
	MinBrightness = 10
	MaxBrightness = 255
)

// Display is the part of the configuration read by the renderer.
type Display struct {
	City       string
	Units      string
	Brightness int
}

// Metric reports whether temperatures are shown in Celsius.
func (d Display) Metric() bool {
	return d.Units == "metric"
}

// Hardware names the bus and pins the station is wired to.
type Hardware struct {
	SPI          string
	DCPin        string
	RSTPin       string
	ButtonUp     string
	ButtonDown   string
	BacklightPin string
	Width        int
	Height       int
}

// Config is the complete station configuration.
type Config struct {
	Display  Display
	Hardware Hardware

	APIKey        string
	APIURL        string
	FetchInterval time.Duration
	Tick          time.Duration
	Font          string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Display: Display{
			City:       "Plantsville",
			Units:      "metric",
			Brightness: 180,
		},
		Hardware: Hardware{
			DCPin:      "GPIO25",
			RSTPin:     "GPIO27",
			ButtonUp:   "GPIO14",
			ButtonDown: "GPIO0",
			Width:      256,
			Height:     64,
		},
		APIURL:        "https://api.openweathermap.org/data/2.5/weather",
		FetchInterval: 10 * time.Minute,
		Tick:          33 * time.Millisecond,
		Font:          "DejaVuSans.ttf",
	}
}

// Load reads path (skipped when empty) and the WX_* environment variables
// over the defaults.
func Load(path string) (Config, error) {
	env := map[string]string{}
	if path != "" {
		m, err := godotenv.Read(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		env = m
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "WX_") {
			env[k] = v
		}
	}
	return FromMap(env)
}

// FromMap applies env over the defaults and validates the result.
func FromMap(env map[string]string) (Config, error) {
	c := Default()
	p := parser{env: env}

	p.str("WX_CITY", &c.Display.City)
	p.str("WX_UNITS", &c.Display.Units)
	p.integer("WX_BRIGHTNESS", &c.Display.Brightness)
	p.str("WX_API_KEY", &c.APIKey)
	p.str("WX_API_URL", &c.APIURL)
	p.duration("WX_FETCH_INTERVAL", &c.FetchInterval)
	p.duration("WX_TICK", &c.Tick)
	p.str("WX_FONT", &c.Font)
	p.str("WX_SPI", &c.Hardware.SPI)
	p.str("WX_DC_PIN", &c.Hardware.DCPin)
	p.str("WX_RST_PIN", &c.Hardware.RSTPin)
	p.str("WX_BTN_UP", &c.Hardware.ButtonUp)
	p.str("WX_BTN_DOWN", &c.Hardware.ButtonDown)
	p.str("WX_BACKLIGHT_PIN", &c.Hardware.BacklightPin)
	p.integer("WX_WIDTH", &c.Hardware.Width)
	p.integer("WX_HEIGHT", &c.Hardware.Height)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges. Errors name the offending key.
func (c Config) Validate() error {
	var errs []error
	if c.Display.Brightness < MinBrightness || c.Display.Brightness > MaxBrightness {
		errs = append(errs, fmt.Errorf("config: WX_BRIGHTNESS %d outside [%d, %d]", c.Display.Brightness, MinBrightness, MaxBrightness))
	}
	if c.Display.Units == "" {
		errs = append(errs, errors.New("config: WX_UNITS must not be empty"))
	}
	if c.FetchInterval <= 0 {
		errs = append(errs, errors.New("config: WX_FETCH_INTERVAL must be positive"))
	}
	if c.Tick <= 0 {
		errs = append(errs, errors.New("config: WX_TICK must be positive"))
	}
	if c.Hardware.Width <= 0 || c.Hardware.Width%2 != 0 {
		errs = append(errs, fmt.Errorf("config: WX_WIDTH %d must be even and positive", c.Hardware.Width))
	}
	if c.Hardware.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: WX_HEIGHT %d must be positive", c.Hardware.Height))
	}
	return errors.Join(errs...)
}

type parser struct {
	env  map[string]string
	errs []error
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.env[key]; ok {
		*dst = strings.TrimSpace(v)
	}
}

func (p *parser) integer(key string, dst *int) {
	v, ok := p.env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s: %w", key, err))
		return
	}
	*dst = n
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s: %w", key, err))
		return
	}
	*dst = d
}
