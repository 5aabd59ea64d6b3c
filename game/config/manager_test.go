package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
)

func createValidConfig(name string, o engine.Orientation) *engine.GameConfig {
	return &engine.GameConfig{
		Name:           name,
		Description:    "Test configuration",
		Orientation:    o,
		CountdownTicks: 3,
		Messages: engine.Messages{
			Welcome: "Welcome aboard!",
			Hit:     "%s hit (%d)",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config any) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("empty directory falls back to built-in", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if got := m.GetDefault(); got == nil || got.Name != "classic" {
			t.Errorf("Expected built-in classic default, got %+v", got)
		}
	})

	t.Run("classic file is the default", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "classic", createValidConfig("Classic From Disk", engine.South))
		writeConfigFile(t, dir, "aaa", createValidConfig("First Alphabetically", engine.East))

		m, err := NewManager(dir)
		if err != nil {
			t.Fatal(err)
		}
		if got := m.GetDefault().Name; got != "Classic From Disk" {
			t.Errorf("Expected classic from disk, got %q", got)
		}
	})

	t.Run("first valid file without classic", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "west", createValidConfig("West", engine.West))

		m, err := NewManager(dir)
		if err != nil {
			t.Fatal(err)
		}
		if got := m.GetDefault().Orientation; got != engine.West {
			t.Errorf("Expected west default, got %q", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "east", createValidConfig("East", engine.East))
	writeConfigFile(t, dir, "broken", map[string]any{"name": "Broken", "orientation": "up"})

	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	config, err := m.LoadConfig("east")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Orientation != engine.East || config.CountdownTicks != 3 {
		t.Errorf("Unexpected config %+v", config)
	}

	again, _ := m.LoadConfig("east.json")
	if again != config {
		t.Error("Expected cached config to be returned")
	}

	if _, err := m.LoadConfig("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
	if _, err := m.LoadConfig("broken"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if _, err := m.LoadConfig("../etc/passwd"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for path traversal, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "quick", createValidConfig("Quick", engine.North))
	writeConfigFile(t, dir, "east", createValidConfig("East", engine.East))
	writeConfigFile(t, dir, "broken", map[string]any{"name": "Broken"})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "east" || configs[1].ConfigID != "quick" {
		t.Errorf("Expected sorted [east quick], got [%s %s]", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[0].Orientation != engine.East || configs[0].Filename != "east.json" || configs[0].CountdownTicks != 3 {
		t.Errorf("Unexpected info %+v", configs[0])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	config := createValidConfig("Saved", engine.South)
	if err := m.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected file on disk: %v", err)
	}

	m.RefreshCache()
	loaded, err := m.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig after refresh failed: %v", err)
	}
	if loaded.Name != "Saved" || loaded.Orientation != engine.South {
		t.Errorf("Unexpected loaded config %+v", loaded)
	}

	bad := createValidConfig("Bad", engine.North)
	bad.CountdownTicks = 0
	if err := m.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := m.SaveConfig("a/b", config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nested name, got %v", err)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "east", createValidConfig("East", engine.East))
	m, _ := NewManager(dir)

	if err := m.SetDefault("east"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if m.GetDefault().Name != "East" {
		t.Errorf("Expected East default, got %q", m.GetDefault().Name)
	}
	if err := m.SetDefault("missing"); err == nil {
		t.Error("Expected error for missing config")
	}
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "east", createValidConfig("East", engine.East))
	m, _ := NewManager(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadConfig("east"); err != nil {
				t.Errorf("LoadConfig failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
