package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is determined by ANNOPREP_CONFIG env (fallback
// "./annoprep.yaml"). If the file does not exist and the path was not set
// explicitly, configuration is loaded from ENV + defaults only.
func Load() (*Settings, error) {
	path := os.Getenv("ANNOPREP_CONFIG")
	explicit := path != ""
	if !explicit {
		path = "./annoprep.yaml"
	}
	return load(path, explicit)
}

// LoadFile reads configuration from the given YAML file, layered with
// environment variables as in Load.
func LoadFile(path string) (*Settings, error) {
	return load(path, true)
}

func load(path string, explicit bool) (*Settings, error) {
	var cfg Settings

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
