package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/blnd/internal/logging"
)

// Blink holds the [blink] keys that may change while the daemon runs.
// Keys missing from the file stay nil and leave the engine untouched.
type Blink struct {
	Enabled       *bool   `toml:"enabled"`
	InKernelBlink *bool   `toml:"in_kernel_blink"`
	IntervalMs    *uint32 `toml:"interval_ms"`
	MaxCount      *uint32 `toml:"max_count"`
}

// Reloadable is the part of the config file applied on change.
type Reloadable struct {
	Blink   Blink
	Logging logging.Config
}

// LoadReloadable reads the reloadable sections of the config file.
// It is the loader passed to NewConfigWatcher.
func LoadReloadable(path string) (Reloadable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Reloadable{}, err
	}

	var raw struct {
		Blink   Blink          `toml:"blink"`
		Logging map[string]any `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Reloadable{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return Reloadable{
		Blink:   raw.Blink,
		Logging: loggingFromMap(raw.Logging),
	}, nil
}

// LoadLoggingConfig loads the [logging] section of a config file.
// Returns the default config if the file is missing or can't be parsed.
func LoadLoggingConfig(configPath string) logging.Config {
	r, err := LoadReloadable(configPath)
	if err != nil {
		return loggingFromMap(nil)
	}
	return r.Logging
}

// loggingFromMap splits [logging] into level, format and per-module levels.
// Module levels may be flat keys or a [logging.modules] table.
func loggingFromMap(m map[string]any) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	for key, value := range m {
		switch key {
		case "level":
			if s, ok := value.(string); ok {
				cfg.Level = s
			}
		case "format":
			if s, ok := value.(string); ok {
				cfg.Format = s
			}
		case "modules":
			if sub, ok := value.(map[string]any); ok {
				for module, level := range sub {
					if s, ok := level.(string); ok {
						cfg.Modules[module] = s
					}
				}
			}
		default:
			if s, ok := value.(string); ok {
				cfg.Modules[key] = s
			}
		}
	}
	return cfg
}
