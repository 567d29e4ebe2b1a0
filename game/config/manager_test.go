package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/puzhgame/puzh/game/engine"
)

func testLevelConfig(name string) *engine.LevelConfig {
	layout := make([]string, engine.GridSize)
	for i := range layout {
		layout[i] = strings.Repeat(".", engine.GridSize)
	}
	layout[0] = "############"
	return &engine.LevelConfig{
		Name:   name,
		Entry:  engine.Vec{X: 1, Y: 1},
		Layout: layout,
		Legend: map[string]string{".": "empty", "#": "wall"},
	}
}

func writeLevel(t *testing.T, dir, name string, cfg *engine.LevelConfig) {
	t.Helper()
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestManager(t *testing.T, names ...string) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		writeLevel(t, dir, name, testLevelConfig(name))
	}
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, dir
}

func TestNewManager_MissingDirectory(t *testing.T) {
	if _, err := NewManager(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("missing directory must error")
	}
}

func TestLoadLevel(t *testing.T) {
	m, _ := newTestManager(t, "meadow")

	cfg, err := m.LoadLevel("meadow")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if cfg.Name != "meadow" {
		t.Errorf("name = %q", cfg.Name)
	}

	t.Run("not found", func(t *testing.T) {
		if _, err := m.LoadLevel("absent"); !errors.Is(err, ErrLevelNotFound) {
			t.Errorf("err = %v, want ErrLevelNotFound", err)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		_, dir := newTestManager(t, "meadow")
		bad := testLevelConfig("bad")
		bad.Layout[3] = "short"
		writeLevel(t, dir, "bad", bad)
		m2, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		if _, err := m2.LoadLevel("bad"); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("err = %v, want ErrInvalidLevel", err)
		}
	})
}

func TestLoadLevel_Caches(t *testing.T) {
	m, dir := newTestManager(t, "meadow")

	if _, err := m.LoadLevel("meadow"); err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}

	// A later file change is invisible until the cache is refreshed.
	changed := testLevelConfig("meadow")
	changed.Description = "changed on disk"
	writeLevel(t, dir, "meadow", changed)

	cfg, err := m.LoadLevel("meadow")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if cfg.Description != "" {
		t.Error("cached level should be served, not the changed file")
	}

	if err := m.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	cfg, err = m.LoadLevel("meadow")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if cfg.Description != "changed on disk" {
		t.Error("refresh should reload from disk")
	}
}

func TestListLevels(t *testing.T) {
	m, dir := newTestManager(t, "meadow", "warren")
	// Invalid and unrelated files are skipped silently.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644)

	infos, err := m.ListLevels()
	if err != nil {
		t.Fatalf("ListLevels: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("levels listed = %d, want 2", len(infos))
	}
	for _, info := range infos {
		if info.LevelID != "meadow" && info.LevelID != "warren" {
			t.Errorf("unexpected level %q", info.LevelID)
		}
	}
}

func TestLevels_BuildsLinkedSet(t *testing.T) {
	dir := t.TempDir()

	meadow := testLevelConfig("meadow")
	meadow.Exits = []engine.ExitConfig{
		{X: 11, Y: 5, Direction: engine.Right, Level: "warren"},
		{X: 0, Y: 5, Direction: engine.Left, Level: "nowhere"},
	}
	writeLevel(t, dir, "meadow", meadow)
	writeLevel(t, dir, "warren", testLevelConfig("warren"))

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	set, err := m.Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("levels built = %d, want 2", len(set))
	}
	if set["warren"] == nil || set["meadow"] == nil {
		t.Fatal("both levels should be in the set")
	}

	found := false
	for _, d := range set["meadow"].Diagnostics {
		if strings.Contains(d, "nowhere") {
			found = true
		}
	}
	if !found {
		t.Errorf("dangling exit should be diagnosed, got %v", set["meadow"].Diagnostics)
	}
}

func TestDefaultLevel(t *testing.T) {
	t.Run("prefers meadow", func(t *testing.T) {
		m, _ := newTestManager(t, "alpha", "meadow")
		if m.DefaultLevel() != "meadow" {
			t.Errorf("default = %q, want meadow", m.DefaultLevel())
		}
	})

	t.Run("falls back to first listed", func(t *testing.T) {
		m, _ := newTestManager(t, "warren", "alpha")
		if m.DefaultLevel() != "alpha" {
			t.Errorf("default = %q, want alpha", m.DefaultLevel())
		}
	})

	t.Run("set default", func(t *testing.T) {
		m, _ := newTestManager(t, "meadow", "warren")
		if err := m.SetDefault("warren"); err != nil {
			t.Fatalf("SetDefault: %v", err)
		}
		if m.DefaultLevel() != "warren" {
			t.Errorf("default = %q, want warren", m.DefaultLevel())
		}
		if err := m.SetDefault("absent"); err == nil {
			t.Error("unknown default must error")
		}
	})
}

func TestSaveLevel(t *testing.T) {
	m, dir := newTestManager(t, "meadow")

	cfg := testLevelConfig("glade")
	if err := m.SaveLevel("glade", cfg); err != nil {
		t.Fatalf("SaveLevel: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "glade.json")); err != nil {
		t.Errorf("saved file missing: %v", err)
	}

	loaded, err := m.LoadLevel("glade")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if loaded.Name != "glade" {
		t.Errorf("name = %q", loaded.Name)
	}

	bad := testLevelConfig("bad")
	bad.Name = ""
	if err := m.SaveLevel("bad", bad); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("invalid level save err = %v, want ErrInvalidLevel", err)
	}
}
