package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// config is the CLI's yaml config file shape.
type config struct {
	Owner   string `yaml:"owner"`
	Gateway string `yaml:"gateway"`
	LocalDB string `yaml:"local_db"`
	Backend string `yaml:"backend"`
}

// loadConfig reads path, or $HOME/.notelink.yaml when path is empty.
// A missing default file is not an error; flags can supply everything.
func loadConfig(path string) (config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return config{}, nil
		}
		path = filepath.Join(home, ".notelink.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return config{}, nil
	}
	if err != nil {
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
