package runtimeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the runtime's top-level daemon configuration.
type Config struct {
	ControlSocketPath string `yaml:"controlSocketPath"`
	LogSocketPath     string `yaml:"logSocketPath"`
	BuildDir          string `yaml:"buildDir"`
	PluginConfigPath  string `yaml:"pluginConfigPath"`
	DefaultTicktimeNs uint64 `yaml:"defaultTicktimeNs"`
	MetricsAddr       string `yaml:"metricsAddr"`
	LogLevel          string `yaml:"logLevel"`
}

// Defaults returns the configuration used for any field a loaded file
// leaves at its zero value.
func Defaults() Config {
	return Config{
		ControlSocketPath: "/run/plcruntime/control.sock",
		LogSocketPath:     "/run/plcruntime/log.sock",
		BuildDir:          "/etc/plcruntime/build",
		PluginConfigPath:  "/etc/plcruntime/plugins.cfg",
		DefaultTicktimeNs: 50_000_000,
		MetricsAddr:       ":9090",
		LogLevel:          "info",
	}
}

// Load reads path as YAML into a Config, filling any zero-valued field
// from Defaults, and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports whether cfg has all the fields the daemon requires to
// start.
func (c Config) Validate() error {
	if c.ControlSocketPath == "" {
		return fmt.Errorf("controlSocketPath must not be empty")
	}
	if c.BuildDir == "" {
		return fmt.Errorf("buildDir must not be empty")
	}
	if c.PluginConfigPath == "" {
		return fmt.Errorf("pluginConfigPath must not be empty")
	}
	if c.DefaultTicktimeNs == 0 {
		return fmt.Errorf("defaultTicktimeNs must be greater than zero")
	}
	return nil
}
