package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-bounce/internal/layout"
)

// FrameRate is a frequency written as "60Hz" in yaml.
type FrameRate struct{ physic.Frequency }

func (r *FrameRate) UnmarshalYAML(n *yaml.Node) error {
	if err := r.Set(n.Value); err != nil {
		return fmt.Errorf("frame_rate %q: %w", n.Value, err)
	}
	return nil
}

func (r FrameRate) MarshalYAML() (any, error) { return r.String(), nil }

type Config struct {
	Addr     string `yaml:"addr"`
	DB       string `yaml:"db"`
	Movie    string `yaml:"movie"` // file path or library id
	Ping     string `yaml:"ping"`  // wav played on target hits
	LogLevel string `yaml:"log_level"`

	FrameRate FrameRate `yaml:"frame_rate"`
	Rate      float64   `yaml:"rate"`
	Autoplay  bool      `yaml:"autoplay"`

	Rig layout.Rig `yaml:"rig"`
}

func Default() *Config {
	return &Config{
		Addr:      ":8080",
		DB:        "bounce.db",
		Ping:      "assets/ping.wav",
		LogLevel:  "info",
		FrameRate: FrameRate{60 * physic.Hertz},
		Rate:      1,
		Rig:       layout.Default(),
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if err := LoadInto(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadInto overwrites the fields of c that path sets.
func LoadInto(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ApplyEnv loads the given .env files (".env" when none) into the process
// environment without overriding it, then applies BOUNCE_* variables to c.
// Missing .env files are ignored.
func ApplyEnv(c *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	for key, dst := range map[string]*string{
		"BOUNCE_ADDR":      &c.Addr,
		"BOUNCE_DB":        &c.DB,
		"BOUNCE_MOVIE":     &c.Movie,
		"BOUNCE_PING":      &c.Ping,
		"BOUNCE_LOG_LEVEL": &c.LogLevel,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("BOUNCE_FRAME_RATE"); ok && v != "" {
		if err := c.FrameRate.Set(v); err != nil {
			return fmt.Errorf("BOUNCE_FRAME_RATE: %w", err)
		}
	}
	if v, ok := os.LookupEnv("BOUNCE_RATE"); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BOUNCE_RATE: %w", err)
		}
		c.Rate = r
	}
	return nil
}
