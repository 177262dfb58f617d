// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the co2mon settings.
//
// Sources, lowest precedence first: built-in defaults, a YAML file, a .env
// file, CO2MON_ prefixed environment variables and command line flags bound
// with BindFlags. The result is validated once and not modified afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/GermanBionicSystems/co2mon/metrics"
)

const (
	// FileName is the configuration file searched when none is given.
	FileName = "co2mon"
	// EnvPrefix prefixes all environment variables, e.g. CO2MON_LOOP_PERIOD.
	EnvPrefix = "CO2MON"
	// EnvFile is loaded when present and no other env file is given.
	EnvFile = ".env"

	// MinPeriod is the sensor sampling interval in periodic mode.
	MinPeriod = 5 * time.Second
)

// Panel kinds.
const (
	PanelEPD  = "epd"
	PanelTerm = "term"
	PanelNone = "none"
)

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("config: invalid")

type Sensor struct {
	Bus      string `mapstructure:"bus"`
	Address  uint16 `mapstructure:"address"`
	LowPower bool   `mapstructure:"low_power"`
	// TemperatureOffset in °C is applied at start when set.
	TemperatureOffset *float64 `mapstructure:"temperature_offset"`
}

type Display struct {
	Panel            string  `mapstructure:"panel"`
	SPI              string  `mapstructure:"spi"`
	FullRefreshEvery uint    `mapstructure:"full_refresh_every"`
	Font             string  `mapstructure:"font"`
	FontSize         float64 `mapstructure:"font_size"`
}

type Loop struct {
	Period           time.Duration `mapstructure:"period"`
	RetryInterval    time.Duration `mapstructure:"retry_interval"`
	FailureThreshold uint          `mapstructure:"failure_threshold"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`
	BackoffCap       time.Duration `mapstructure:"backoff_cap"`
	SkipUnchanged    bool          `mapstructure:"skip_unchanged"`
}

type Metrics struct {
	// Address is host:port, or a host using metrics.DefaultPort. Publishing
	// is disabled when empty.
	Address string            `mapstructure:"address"`
	Labels  map[string]string `mapstructure:"labels"`
}

type Status struct {
	// Listen is the HTTP status address. Disabled when empty.
	Listen string `mapstructure:"listen"`
}

type Log struct {
	Debug bool `mapstructure:"debug"`
}

// Config holds all settings.
type Config struct {
	Sensor  Sensor  `mapstructure:"sensor"`
	Display Display `mapstructure:"display"`
	Loop    Loop    `mapstructure:"loop"`
	Metrics Metrics `mapstructure:"metrics"`
	Status  Status  `mapstructure:"status"`
	Log     Log     `mapstructure:"log"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

var defaults = map[string]any{
	"sensor.bus":                 "",
	"sensor.address":             0x62,
	"sensor.low_power":           false,
	"display.panel":              PanelEPD,
	"display.spi":                "",
	"display.full_refresh_every": 50,
	"display.font":               "goregular",
	"display.font_size":          18.0,
	"loop.period":                "10s",
	"loop.retry_interval":        "1s",
	"loop.failure_threshold":     3,
	"loop.backoff_base":          "20s",
	"loop.backoff_cap":           "5m",
	"loop.skip_unchanged":        false,
	"metrics.address":            "",
	"metrics.labels":             map[string]string{},
	"status.listen":              "",
	"log.debug":                  false,
}

// New returns a viper instance with the defaults set and the environment
// bound.
func New() *viper.Viper {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// No default, so AutomaticEnv alone would not list it.
	_ = v.BindEnv("sensor.temperature_offset")
	return v
}

// FlagName returns the command line flag for key, e.g. --loop-period for
// loop.period and --sensor-low-power for sensor.low_power.
func FlagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

// BindFlags binds the flags named after a key with FlagName. Only flags set
// on the command line are bound, so a flag left at its default does not
// shadow the file or the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	keys := []string{"sensor.temperature_offset"}
	for k := range defaults {
		keys = append(keys, k)
	}
	for _, k := range keys {
		f := flags.Lookup(FlagName(k))
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(k, f); err != nil {
			return fmt.Errorf("config: bind %s: %w", k, err)
		}
	}
	return nil
}

// Load reads the configuration. An empty file searches co2mon.yaml in the
// working directory and /etc/co2mon and tolerates its absence; an explicit
// one must exist. The same applies to envFile and .env.
func Load(v *viper.Viper, file, envFile string) (*Config, error) {
	if err := loadEnv(envFile); err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/co2mon")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	c.File = v.ConfigFileUsed()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadEnv loads variables from the env file without overriding the ones
// already set in the process environment.
func loadEnv(envFile string) error {
	name := envFile
	if name == "" {
		name = EnvFile
	}
	if err := godotenv.Load(name); err != nil {
		if envFile == "" && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: env file %s: %w", name, err)
	}
	return nil
}

// Validate checks the values that cannot be enforced by the types.
func (c *Config) Validate() error {
	switch {
	case c.Loop.Period < MinPeriod:
		return fmt.Errorf("%w: loop.period %s is shorter than %s", ErrInvalid, c.Loop.Period, MinPeriod)
	case c.Loop.RetryInterval <= 0:
		return fmt.Errorf("%w: loop.retry_interval %s", ErrInvalid, c.Loop.RetryInterval)
	case c.Loop.FailureThreshold < 1:
		return fmt.Errorf("%w: loop.failure_threshold must be at least 1", ErrInvalid)
	case c.Loop.BackoffBase <= 0:
		return fmt.Errorf("%w: loop.backoff_base %s", ErrInvalid, c.Loop.BackoffBase)
	case c.Loop.BackoffCap < c.Loop.BackoffBase:
		return fmt.Errorf("%w: loop.backoff_cap %s is shorter than loop.backoff_base %s", ErrInvalid, c.Loop.BackoffCap, c.Loop.BackoffBase)
	case c.Display.FullRefreshEvery < 1:
		return fmt.Errorf("%w: display.full_refresh_every must be at least 1", ErrInvalid)
	case c.Display.FontSize <= 0:
		return fmt.Errorf("%w: display.font_size %g", ErrInvalid, c.Display.FontSize)
	case c.Sensor.Address == 0 || c.Sensor.Address > 0x7F:
		return fmt.Errorf("%w: sensor.address %#x", ErrInvalid, c.Sensor.Address)
	}
	switch c.Display.Panel {
	case PanelEPD, PanelTerm, PanelNone:
	default:
		return fmt.Errorf("%w: display.panel %q, want %s, %s or %s", ErrInvalid, c.Display.Panel, PanelEPD, PanelTerm, PanelNone)
	}
	if c.Metrics.Address != "" {
		if _, err := metrics.Address(c.Metrics.Address); err != nil {
			return fmt.Errorf("%w: metrics.address: %w", ErrInvalid, err)
		}
	}
	if err := metrics.ValidateLabels(c.Metrics.Labels); err != nil {
		return fmt.Errorf("%w: metrics.labels: %w", ErrInvalid, err)
	}
	return nil
}
