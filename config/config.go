// Package config loads ledcast's TOML configuration and applies it to a
// strip.LedStrip through its reconfiguration surface. Validation of strip
// parameters lives in the strip package; this package only carries values.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ledcast/ledcast/strip"
)

// Strip is one [[strips]] table.
type Strip struct {
	Count    int    `toml:"count"`
	Address  string `toml:"address"`
	Port     int    `toml:"port"`
	Protocol string `toml:"protocol"`
	Flip     bool   `toml:"flip"`
}

// Config is the full configuration file.
type Config struct {
	PowerLimit    float64 `toml:"power_limit"`
	Loop          bool    `toml:"loop"`
	Listen        string  `toml:"listen"`
	MetricsListen string  `toml:"metrics_listen"`
	LogLevel      string  `toml:"log_level"`
	LogFormat     string  `toml:"log_format"`
	Strips        []Strip `toml:"strips"`
}

// Default returns the configuration used when no file (or key) is present.
func Default() Config {
	return Config{
		PowerLimit:    strip.DefaultPowerLimit,
		Listen:        ":24601",
		MetricsListen: "",
		LogLevel:      "info",
		LogFormat:     "text",
		Strips: []Strip{{
			Count:    strip.DefaultLedCount,
			Address:  strip.DefaultAddress,
			Port:     strip.DefaultPort,
			Protocol: strip.DefaultProtocol,
		}},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values; a [[strips]] list in the file replaces the default
// one entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("couldn't read config: %w", err)
	}
	// Strips must not merge with the default entry.
	cfg.Strips = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("couldn't parse config: %w", err)
	}
	if len(cfg.Strips) == 0 {
		cfg.Strips = Default().Strips
	}
	for i := range cfg.Strips {
		if cfg.Strips[i].Count == 0 {
			cfg.Strips[i].Count = strip.DefaultLedCount
		}
		if cfg.Strips[i].Address == "" {
			cfg.Strips[i].Address = strip.DefaultAddress
		}
		if cfg.Strips[i].Port == 0 {
			cfg.Strips[i].Port = strip.DefaultPort
		}
		if cfg.Strips[i].Protocol == "" {
			cfg.Strips[i].Protocol = strip.DefaultProtocol
		}
	}
	return cfg, nil
}

func (c Config) lists() (counts []int, addrs []string, ports []int, protos []string, flips []bool) {
	for _, st := range c.Strips {
		counts = append(counts, st.Count)
		addrs = append(addrs, st.Address)
		ports = append(ports, st.Port)
		protos = append(protos, st.Protocol)
		flips = append(flips, st.Flip)
	}
	return
}

// Options translates the configuration into strip construction options.
func (c Config) Options() []strip.Option {
	counts, addrs, ports, protos, flips := c.lists()
	return []strip.Option{
		strip.WithLedCount(counts...),
		strip.WithAddress(addrs...),
		strip.WithPort(ports...),
		strip.WithProtocol(protos...),
		strip.WithFlip(flips...),
		strip.WithPowerLimit(c.PowerLimit),
		strip.WithLoop(c.Loop),
	}
}

// Apply pushes the configuration into an existing strip in one
// validate-then-commit step: an invalid configuration returns an error
// and leaves the strip entirely untouched.
func (c Config) Apply(s *strip.LedStrip) error {
	return s.Configure(c.Options()...)
}
