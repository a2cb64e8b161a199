package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CompactJSON {
		t.Error("CompactJSON should default to false")
	}
	if cfg.DBMaxOpenConns != 0 {
		t.Errorf("DBMaxOpenConns = %d, want 0", cfg.DBMaxOpenConns)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"compact_json": true, "db_max_open_conns": 1, "disabled_tools": ["stf_archive"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.CompactJSON {
		t.Error("CompactJSON = false, want true")
	}
	if cfg.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", cfg.DBMaxOpenConns)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "stf_archive" {
		t.Errorf("DisabledTools = %v, want [stf_archive]", cfg.DisabledTools)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load() = nil error, want JSON error")
	}
}

func TestMerge(t *testing.T) {
	base := &Config{DBMaxOpenConns: 2, DisabledTools: []string{"stf_render"}}
	overlay := &Config{CompactJSON: true, DisabledTools: []string{"stf_render", " stf_archive "}}

	merged := Merge(base, overlay)

	if !merged.CompactJSON {
		t.Error("CompactJSON = false, want true from overlay")
	}
	if merged.DBMaxOpenConns != 2 {
		t.Errorf("DBMaxOpenConns = %d, want 2 from base", merged.DBMaxOpenConns)
	}
	if len(merged.DisabledTools) != 2 {
		t.Errorf("DisabledTools = %v, want deduplicated pair", merged.DisabledTools)
	}
	if merged.DisabledTools[1] != "stf_archive" {
		t.Errorf("DisabledTools[1] = %q, want trimmed %q", merged.DisabledTools[1], "stf_archive")
	}
}
