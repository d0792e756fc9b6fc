package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Parse decodes data on top of Defaults and expands ${VAR} references in
// file paths and command lines.
func Parse(data []byte) (*Config, error) {
	c := Defaults()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Server.Instances == nil {
		c.Server.Instances = map[string]Instance{}
	}
	for name, inst := range c.Server.Instances {
		for i, f := range inst.Files {
			inst.Files[i] = os.ExpandEnv(f)
		}
		inst.Command = os.ExpandEnv(inst.Command)
		c.Server.Instances[name] = inst
	}
	return &c, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads path, returning Defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d := Defaults()
			return &d, nil
		}
		return nil, err
	}
	return c, nil
}

// Save writes c to path, creating parent directories.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultPath returns $LOGPANEL_CONFIG, or logpanel.yaml under the user
// config directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "logpanel", DefaultFileName)
}
