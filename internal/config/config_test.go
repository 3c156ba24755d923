package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != DefaultDBName || cfg.Timezone != DefaultTimezone {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.WeekStartDay != 1 || cfg.DebounceMillis != 300 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second load reads the file it just wrote.
	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reload = %+v, want %+v", again, cfg)
	}
}

func TestLoadOrCreateReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "db_path = \"/tmp/elsewhere.db\"\ntimezone = \"UTC\"\nweek_start_day = 0\ndebounce_millis = 50\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/elsewhere.db" || cfg.Timezone != "UTC" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.WeekStartDay != 0 || cfg.DebounceMillis != 50 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadOrCreateFillsBlankFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("week_start_day = 3\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != DefaultDBName || cfg.Timezone != DefaultTimezone {
		t.Fatalf("blank fields not defaulted: %+v", cfg)
	}
	if cfg.WeekStartDay != 3 {
		t.Fatalf("explicit field lost: %+v", cfg)
	}
}
