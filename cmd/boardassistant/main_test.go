package main

import (
	"path/filepath"
	"testing"

	"github.com/matcapl/portco-board-assistant/internal/config"
)

func TestWriteEffectiveConfig(t *testing.T) {
	t.Setenv("PBA_CHECKLIST_PATH", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := config.DefaultConfig()
	cfg.Server.Port = 9090
	cfg.Checklist.Path = "/etc/pba/checklist.json"

	if err := writeEffectiveConfig(cfg, path); err != nil {
		t.Fatalf("writeEffectiveConfig failed: %v", err)
	}

	loaded, info, err := config.LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom failed: %v", err)
	}
	if !info.PortSpecified || loaded.Server.Port != 9090 {
		t.Fatalf("port not persisted: %+v", loaded.Server)
	}
	if loaded.Checklist.Path != "/etc/pba/checklist.json" {
		t.Fatalf("checklist path=%q", loaded.Checklist.Path)
	}
}
