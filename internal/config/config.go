package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "mcadence.db"
	DefaultTimezone       = "America/New_York"
)

// Config is the bootstrap file: where the database lives and which calendar
// conventions the clock is constructed with. Runtime preferences live in
// the document store, not here.
type Config struct {
	DBPath         string `toml:"db_path"`
	Timezone       string `toml:"timezone"`
	WeekStartDay   int    `toml:"week_start_day"`
	DebounceMillis int    `toml:"debounce_millis"`
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:         DefaultDBName,
		Timezone:       DefaultTimezone,
		WeekStartDay:   1,
		DebounceMillis: 300,
	}
}
