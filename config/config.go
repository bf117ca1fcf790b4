// Package config - File-based configuration of the janken command.
package config

import (
	"os"

	"github.com/nvr-ai/janken/inference/providers"
	"github.com/nvr-ai/janken/models/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultAddr is the listen address of the HTTP API.
const DefaultAddr = "127.0.0.1:8080"

// Config groups everything the command needs to load a model and serve rounds.
type Config struct {
	Model    model.Config     `json:"model" yaml:"model"`
	Provider providers.Config `json:"provider" yaml:"provider"`
	Server   ServerConfig     `json:"server" yaml:"server"`
	// Seed seeds the opponent; 0 seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Model:    model.DefaultConfig(),
		Provider: providers.DefaultConfig(),
		Server:   ServerConfig{Addr: DefaultAddr},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := c.Provider.Validate(); err != nil {
		return errors.Wrap(err, "provider")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// Load reads a YAML file on top of Default. Keys missing from the file keep their defaults.
//
// Arguments:
//   - path: The YAML file.
//
// Returns:
//   - Config: The validated configuration.
//   - error: An error if the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
