package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML overlay for non-secret settings. Tokens are read from the
// environment only.
type File struct {
	Environment string `yaml:"environment"`
	Endpoint    string `yaml:"endpoint"`
	RetryPeriod string `yaml:"retry_period"`
	Timeout     string `yaml:"request_timeout"`
	ChatID      string `yaml:"chat_id"`

	Journal struct {
		Capacity    int    `yaml:"capacity"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"journal"`

	Lease struct {
		RedisURL string `yaml:"redis_url"`
		Key      string `yaml:"key"`
	} `yaml:"lease"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	HTTPAddr string `yaml:"http_addr"`
}

// ParseFile decodes a YAML overlay.
func ParseFile(data []byte) (*File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return &f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &f, nil
}

// LoadFile reads and decodes the YAML overlay at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Apply copies every non-empty field onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Environment != "" {
		cfg.App.Environment = Environment(f.Environment)
	}
	if f.Endpoint != "" {
		cfg.Practicum.Endpoint = f.Endpoint
	}
	if f.RetryPeriod != "" {
		cfg.Poller.RetryPeriod = parseDuration(f.RetryPeriod, cfg.Poller.RetryPeriod)
	}
	if f.Timeout != "" {
		cfg.Practicum.RequestTimeout = parseDuration(f.Timeout, cfg.Practicum.RequestTimeout)
	}
	if f.ChatID != "" {
		cfg.Telegram.ChatID = f.ChatID
	}
	if f.Journal.Capacity > 0 {
		cfg.Poller.JournalCapacity = f.Journal.Capacity
	}
	if f.Journal.DatabaseURL != "" {
		cfg.Database.URL = f.Journal.DatabaseURL
	}
	if f.Lease.RedisURL != "" {
		cfg.Redis.URL = f.Lease.RedisURL
	}
	if f.Lease.Key != "" {
		cfg.Redis.LeaseKey = f.Lease.Key
	}
	if f.Log.Level != "" {
		cfg.Observability.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		cfg.Observability.LogFormat = f.Log.Format
	}
	if f.HTTPAddr != "" {
		cfg.Observability.HTTPAddr = f.HTTPAddr
	}
}
