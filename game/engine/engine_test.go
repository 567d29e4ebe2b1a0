package engine

import (
	"errors"
	"testing"
)

func twoLevelCatalog() map[string]*Level {
	meadow := &Level{ID: "meadow", Name: "Meadow", Grid: NewGrid(), Entry: Vec{1, 1}}
	warren := &Level{ID: "warren", Name: "Warren", Grid: NewGrid(), Entry: Vec{2, 3}}
	return map[string]*Level{"meadow": meadow, "warren": warren}
}

func TestNewEngine_Errors(t *testing.T) {
	if _, err := NewEngine(nil, "meadow"); !errors.Is(err, ErrNoLevels) {
		t.Errorf("empty catalog: err = %v, want ErrNoLevels", err)
	}
	if _, err := NewEngine(twoLevelCatalog(), "nowhere"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("unknown start: err = %v, want ErrLevelNotFound", err)
	}
}

func TestNewEngine_PlacesPlayerAtEntry(t *testing.T) {
	e, err := NewEngine(twoLevelCatalog(), "meadow")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if kindAt(t, e, Vec{1, 1}) != Player {
		t.Error("player should start on the entry tile")
	}
	if e.CurrentLevel() != "meadow" {
		t.Errorf("current level = %q, want meadow", e.CurrentLevel())
	}
}

func TestMovePlayer_CountsSteps(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	e.MovePlayer(Right)
	e.MovePlayer(Right)
	// A blocked move still costs a step.
	e.grid.At(Vec{4, 1}).Object = NewObject(Wall)
	e.MovePlayer(Right)
	if e.steps != 3 {
		t.Errorf("steps = %d, want 3", e.steps)
	}
}

func TestMovePlayer_InvalidDirection(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	if e.MovePlayer(Direction("diagonal")) {
		t.Error("invalid direction must be rejected")
	}
	if e.steps != 0 {
		t.Error("rejected command must not cost a step")
	}
}

func TestSwitchLevel_UnknownDestination(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	if err := e.SwitchLevel("nowhere"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("err = %v, want ErrLevelNotFound", err)
	}
	if e.CurrentLevel() != "meadow" {
		t.Error("failed switch must leave the current level in place")
	}
}

func TestSwitchLevel_DiscardsRays(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	e.rays = []Ray{{Pos: Vec{5, 5}, Dir: Right.Vec(), Effect: DuplicateShootee}}
	if err := e.SwitchLevel("warren"); err != nil {
		t.Fatalf("SwitchLevel: %v", err)
	}
	if e.RaysInFlight() {
		t.Error("switching levels must discard in-flight rays")
	}
}

func TestResetLevel(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	e.grid.At(Vec{5, 5}).Object = NewObject(Cheese)

	e.MovePlayer(Right)
	e.MovePlayer(Right)
	e.cheeseLevel = 1
	e.rays = []Ray{{Pos: Vec{5, 5}, Dir: Right.Vec(), Effect: DuplicateShootee}}

	e.ResetLevel()

	if e.cheeseLevel != 0 {
		t.Error("pending cheese must be forfeited on reset")
	}
	if e.steps != 0 {
		t.Errorf("steps = %d, want the entry checkpoint 0", e.steps)
	}
	if e.resets != 1 {
		t.Errorf("resets = %d, want 1", e.resets)
	}
	if e.RaysInFlight() {
		t.Error("reset must discard in-flight rays")
	}
	if kindAt(t, e, Vec{1, 1}) != Player {
		t.Error("player should be back on the entry tile")
	}
	if e.grid.At(Vec{5, 5}).Object != nil {
		t.Error("mid-level mutations must be rolled back to the template")
	}
}

func TestResetLevel_KeepsBankedCheese(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	e.cheeseLevel = 3
	if err := e.SwitchLevel("warren"); err != nil {
		t.Fatalf("SwitchLevel: %v", err)
	}
	e.cheeseLevel = 2
	e.ResetLevel()
	if e.cheeseBanked != 3 {
		t.Errorf("banked cheese = %d, want 3", e.cheeseBanked)
	}
	if e.CheeseTotal() != 3 {
		t.Errorf("total cheese = %d, want 3", e.CheeseTotal())
	}
}

func TestSwitchLevel_StepCheckpointSurvivesReset(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	e.MovePlayer(Right)
	e.MovePlayer(Right)
	if err := e.SwitchLevel("warren"); err != nil {
		t.Fatalf("SwitchLevel: %v", err)
	}
	e.MovePlayer(Right)
	e.MovePlayer(Right)
	e.ResetLevel()
	if e.steps != 2 {
		t.Errorf("steps = %d, want the checkpoint 2", e.steps)
	}
}

func TestState_IsDeepSnapshot(t *testing.T) {
	e, _ := NewEngine(twoLevelCatalog(), "meadow")
	state := e.State()

	if state.Level != "meadow" || state.LevelName != "Meadow" {
		t.Errorf("state level = %q/%q", state.Level, state.LevelName)
	}
	if state.RaysInFlight {
		t.Error("no rays should be in flight")
	}

	// Mutating the snapshot must not leak into the live grid.
	state.Grid.At(Vec{1, 1}).Object = nil
	if kindAt(t, e, Vec{1, 1}) != Player {
		t.Error("snapshot mutation leaked into the engine grid")
	}
}

func TestTemplateGridIsNeverMutated(t *testing.T) {
	levels := twoLevelCatalog()
	levels["meadow"].Grid.At(Vec{5, 1}).Object = NewObject(Rock)
	e, _ := NewEngine(levels, "meadow")

	e.MovePlayer(Right) // pushes nothing yet
	e.grid.At(Vec{5, 1}).Object = nil

	if levels["meadow"].Grid.At(Vec{5, 1}).Object == nil {
		t.Error("live-grid mutation reached the level template")
	}
}
