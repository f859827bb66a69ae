package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvDir overrides the data directory when set. Agents on the same machine
// share state by pointing at the same directory.
const EnvDir = "RELAY_DIR"

// DefaultPipeline is the stage order used when a linear project is created
// without an explicit pipeline.
var DefaultPipeline = []string{"code-agent", "test-agent", "docs-agent", "monitor-bot"}

// Config is the root configuration for relay.
type Config struct {
	Version         int      `yaml:"version"`
	Dir             string   `yaml:"dir,omitempty"`              // project records directory
	DefaultPipeline []string `yaml:"default_pipeline,omitempty"` // linear mode default stage order
}

// Default returns the starter config.
func Default() *Config {
	return &Config{
		Version:         1,
		DefaultPipeline: append([]string{}, DefaultPipeline...),
	}
}

// Path returns the config file location, ~/.config/relay/config.yaml.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "relay", "config.yaml")
	}
	return filepath.Join(home, ".config", "relay", "config.yaml")
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to the given path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve loads the config file if present, falling back to defaults.
func Resolve() *Config {
	cfg, err := Load(Path())
	if err != nil {
		return Default()
	}
	if len(cfg.DefaultPipeline) == 0 {
		cfg.DefaultPipeline = append([]string{}, DefaultPipeline...)
	}
	return cfg
}

// DataDir resolves the project records directory: flag value (if non-empty),
// then the RELAY_DIR environment variable, then the config file, then
// ~/.relay/projects.
func (c *Config) DataDir(flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	if env := os.Getenv(EnvDir); env != "" {
		return env
	}
	if c.Dir != "" {
		return c.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".relay", "projects")
	}
	return filepath.Join(home, ".relay", "projects")
}

func (c *Config) validate() error {
	for _, stage := range c.DefaultPipeline {
		if stage == "" {
			return fmt.Errorf("default_pipeline: stage names must be non-empty")
		}
	}
	return nil
}
