package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Parameter keys read from the key/value store.
const (
	KeyProcessedDirectory = "ProcessedDirectory"
	KeyFailedDirectory    = "FailedDirectory"
	KeyUsersFilePath      = "UsersFilePath"
	KeyUsersFileMaxAge    = "UsersFileMaxAge"
	KeyPollingInterval    = "PollingInterval"
	KeyClientServiceName  = "ClientServiceName"
	KeyPrintServiceName   = "PrintServiceName"
	KeyLoggingLevel       = "LoggingLevel"
)

// Config represents configuration data for the monitoring service.
type Config struct {
	Addr                string            `yaml:"addr"`
	DataDirectory       string            `yaml:"data_directory"`
	LogFile             string            `yaml:"log_file"`
	ServiceProbe        string            `yaml:"service_probe"`
	ProbeTimeoutSeconds int               `yaml:"probe_timeout_seconds"`
	CoalesceWindowMS    int               `yaml:"coalesce_window_ms"`
	Parameters          map[string]string `yaml:"parameters"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		Addr:                ":8080",
		DataDirectory:       filepath.Join(".dist", "data"),
		ServiceProbe:        "systemd",
		ProbeTimeoutSeconds: 30,
		CoalesceWindowMS:    1000,
		Parameters: map[string]string{
			KeyPollingInterval: "10",
			KeyLoggingLevel:    "2",
		},
	}
}

// Load reads configuration from yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.DataDirectory == "" {
		cfg.DataDirectory = defaults.DataDirectory
	}
	if cfg.ServiceProbe == "" {
		cfg.ServiceProbe = defaults.ServiceProbe
	}
	if cfg.ProbeTimeoutSeconds <= 0 {
		cfg.ProbeTimeoutSeconds = defaults.ProbeTimeoutSeconds
	}
	if cfg.CoalesceWindowMS <= 0 {
		cfg.CoalesceWindowMS = defaults.CoalesceWindowMS
	}
	if cfg.Parameters == nil {
		cfg.Parameters = defaults.Parameters
	}
	return cfg, nil
}

// Source supplies the key/value parameter store.
type Source interface {
	Values() (map[string]string, error)
}

// MapSource is a fixed parameter store.
type MapSource map[string]string

func (s MapSource) Values() (map[string]string, error) {
	return copyValues(s), nil
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
