// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/fretdrill/internal/adaptive"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig       `toml:"practice"`
	Progress ProgressConfig       `toml:"progress"`
	Engine   adaptive.ConfigPatch `toml:"engine"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode     *string `toml:"mode"`
	Notation *string `toml:"notation"`
	Groups   *[]int  `toml:"groups"`
	Suggest  *bool   `toml:"suggest"`
}

// ProgressConfig maps progress report settings.
type ProgressConfig struct {
	Days  *int  `toml:"days"`
	Color *bool `toml:"color"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
