package linkctl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults match a local deployment of the API and the viewer
const (
	DefaultAPIBase      = "http://localhost:4000"
	DefaultFrontendBase = "http://localhost:3000"
	DefaultExpSec       = 300
)

// Config holds linkctl settings. Precedence: flags, LINKCTL_* env, config file, defaults.
type Config struct {
	APIBase      string `yaml:"api_base" mapstructure:"api_base"`
	FrontendBase string `yaml:"frontend_base" mapstructure:"frontend_base"`
	ExpSec       int    `yaml:"exp_sec" mapstructure:"exp_sec"`
	Output       string `yaml:"output" mapstructure:"output"` // text, json or yaml
}

// DefaultConfigPath returns ~/.sessionlink/linkctl.yaml
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "linkctl.yaml"
	}
	return filepath.Join(home, ".sessionlink", "linkctl.yaml")
}

// NewViper returns a viper instance with defaults and env binding applied.
// A missing config file is not an error.
func NewViper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("frontend_base", DefaultFrontendBase)
	v.SetDefault("exp_sec", DefaultExpSec)
	v.SetDefault("output", "text")

	v.SetEnvPrefix("LINKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		return v, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return v, nil
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}

// Load unmarshals the resolved settings
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	cfg.FrontendBase = strings.TrimRight(cfg.FrontendBase, "/")
	return &cfg, nil
}

// Save writes cfg to path with owner-only permissions
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
