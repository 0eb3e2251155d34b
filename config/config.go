package config

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Engine  *EngineConfig `yaml:"engine"`
	LogFile string        `yaml:"logFile"`
}

// DefaultConfig returns the settings written to a fresh config directory.
func DefaultConfig() *Config {
	return &Config{
		Engine: &EngineConfig{
			Group:              "classgroup",
			IntSizeBits:        2048,
			ProofStrategy:      "windowed",
			ParameterCacheSize: 128,
			VerifyWorkers:      4,
		},
	}
}

func NewConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "new config")
	}

	defer file.Close()

	d := yaml.NewDecoder(file)
	config := DefaultConfig()

	if err := d.Decode(config); err != nil {
		return nil, errors.Wrap(err, "new config")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "new config")
	}

	return config, nil
}

// LoadConfig reads config.yml from the given directory, creating the
// directory and a default config file when they do not exist yet.
func LoadConfig(configPath string) (*Config, error) {
	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, fs.FileMode(0700)); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	} else {
		if err != nil {
			return nil, errors.Wrap(err, "load config")
		}

		if !info.IsDir() {
			return nil, errors.Errorf("load config: %s is not a directory", configPath)
		}
	}

	configFile := filepath.Join(configPath, "config.yml")
	_, err = os.Stat(configFile)
	if errors.Is(err, os.ErrNotExist) {
		if err = SaveConfig(configPath, DefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	return NewConfig(configFile)
}

func SaveConfig(configPath string, config *Config) error {
	file, err := os.OpenFile(
		filepath.Join(configPath, "config.yml"),
		os.O_CREATE|os.O_RDWR|os.O_TRUNC,
		os.FileMode(0600),
	)
	if err != nil {
		return errors.Wrap(err, "save config")
	}

	defer file.Close()

	d := yaml.NewEncoder(file)

	if err := d.Encode(config); err != nil {
		return errors.Wrap(err, "save config")
	}

	return errors.Wrap(d.Close(), "save config")
}

func (c *Config) Validate() error {
	if c.Engine == nil {
		return errors.New("validate: missing engine section")
	}

	return errors.Wrap(c.Engine.Validate(), "validate")
}
