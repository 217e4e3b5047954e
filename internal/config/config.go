package config

import (
	"errors"
	"log"
	"os"
	"time"

	"addition-drill/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	History struct {
		File string `yaml:"file"`
	} `yaml:"history"`
	Drill struct {
		domain.SessionConfig `yaml:",inline"`
		AutoAdvanceDelay     string `yaml:"autoAdvanceDelay"`
	} `yaml:"drill"`
}

// Default returns drill defaults with history kept in a local JSON file.
func Default() Config {
	cfg := Config{}
	cfg.History.File = "data/history.json"
	cfg.Drill.SessionConfig = domain.DefaultSessionConfig()
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOptional is Load, except a missing file yields Default.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// TTLDuration parses a duration string or returns the fallback if empty.
// Unparseable values are logged and also yield the fallback.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid duration %q, using %v: %v", raw, fallback, err)
		return fallback
	}
	return d
}
