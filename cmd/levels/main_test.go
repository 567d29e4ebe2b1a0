package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/puzhgame/puzh/game/engine"
)

func testConfig() *engine.LevelConfig {
	layout := []string{
		"############",
		"#..........#",
		"#.R........#",
		"#..........#",
		"#..........#",
		"#...........",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"#..........#",
		"############",
	}
	return &engine.LevelConfig{
		Name:   "Test Level",
		Entry:  engine.Vec{X: 1, Y: 1},
		Layout: layout,
		Legend: map[string]string{
			"#": "wall",
			".": "empty",
			"R": "rock",
		},
		Exits: []engine.ExitConfig{
			{X: 11, Y: 5, Direction: engine.Right, Level: "next"},
		},
	}
}

func writeConfig(t *testing.T, dir, name string, cfg *engine.LevelConfig) {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	writeConfig(t, dir, "alpha", testConfig())

	next := testConfig()
	next.Name = "Next"
	next.Exits = nil
	writeConfig(t, dir, "next", next)

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{nope"), 0644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a level"), 0644); err != nil {
		t.Fatalf("write notes file: %v", err)
	}

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	byFile := make(map[string]ValidationResult)
	for _, r := range results {
		byFile[r.File] = r
	}

	if !byFile["alpha.json"].Valid {
		t.Errorf("alpha.json should be valid: %v", byFile["alpha.json"].Errors)
	}
	if len(byFile["alpha.json"].Warnings) != 0 {
		t.Errorf("alpha.json links to next, expected no warnings, got %v", byFile["alpha.json"].Warnings)
	}
	if byFile["broken.json"].Valid {
		t.Error("broken.json should be invalid")
	}
}

func TestValidateDir_DanglingExit(t *testing.T) {
	dir := t.TempDir()

	cfg := testConfig()
	cfg.Exits[0].Level = "nowhere"
	writeConfig(t, dir, "alpha", cfg)

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Valid {
		t.Errorf("dangling exit is a warning, not an error: %v", results[0].Errors)
	}
	if len(results[0].Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", results[0].Warnings)
	}
}

func TestValidateDir_MissingDirectory(t *testing.T) {
	if _, err := validateDir("/non/existent/path"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestAnalyzeLevel(t *testing.T) {
	cfg := testConfig()
	report, err := analyzeLevel("alpha", cfg)
	if err != nil {
		t.Fatalf("analyzeLevel failed: %v", err)
	}

	if report.Objects[engine.Rock] != 1 {
		t.Errorf("expected 1 rock, got %d", report.Objects[engine.Rock])
	}
	if report.Objects[engine.Wall] == 0 {
		t.Error("expected walls to be counted")
	}
	if len(report.UnreachableExits) != 0 {
		t.Errorf("open floor, expected every exit reachable, got %v", report.UnreachableExits)
	}
}

func TestAnalyzeLevel_UnreachableExit(t *testing.T) {
	cfg := testConfig()
	// Seal the exit tile behind a wall column.
	cfg.Layout[4] = "#.........##"
	cfg.Layout[5] = "#.........#."
	cfg.Layout[6] = "#.........##"

	report, err := analyzeLevel("alpha", cfg)
	if err != nil {
		t.Fatalf("analyzeLevel failed: %v", err)
	}
	if len(report.UnreachableExits) != 1 {
		t.Fatalf("expected 1 unreachable exit, got %v", report.UnreachableExits)
	}
	if report.UnreachableExits[0] != (engine.Vec{X: 11, Y: 5}) {
		t.Errorf("wrong unreachable exit: %v", report.UnreachableExits[0])
	}
}

func TestFloodFill_MovableObjectsArePassable(t *testing.T) {
	grid := engine.NewGrid()
	// A rock wall across the middle, with fixed walls everywhere below it.
	for x := 0; x < engine.GridSize; x++ {
		grid.At(engine.Vec{X: x, Y: 5}).Object = engine.NewObject(engine.Rock)
		grid.At(engine.Vec{X: x, Y: 7}).Object = engine.NewObject(engine.Wall)
	}

	reachable := floodFill(grid, engine.Vec{X: 2, Y: 2})

	if !reachable[engine.Vec{X: 2, Y: 6}] {
		t.Error("movable rocks should count as passable")
	}
	if reachable[engine.Vec{X: 2, Y: 8}] {
		t.Error("fixed walls should block the fill")
	}
}
