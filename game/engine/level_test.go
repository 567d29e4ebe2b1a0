package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// legendFor derives the legend a layout needs, one entry per character used.
func legendFor(layout []string) map[string]string {
	legend := make(map[string]string)
	for _, row := range layout {
		for _, ch := range row {
			legend[string(ch)] = layoutMeanings[ch]
		}
	}
	return legend
}

func emptyLayout() []string {
	rows := make([]string, GridSize)
	for i := range rows {
		rows[i] = strings.Repeat(".", GridSize)
	}
	return rows
}

func validConfig() *LevelConfig {
	layout := emptyLayout()
	layout[0] = "############"
	layout[5] = "...R...C...."
	layout[6] = "..G.~~s....."
	cfg := &LevelConfig{
		Name:   "Test Level",
		Entry:  Vec{1, 1},
		Layout: layout,
		Legend: legendFor(layout),
		Exits: []ExitConfig{
			{X: 11, Y: 5, Direction: Right, Level: "next"},
		},
		Rayguns: []RaygunConfig{
			{X: 2, Y: 6, Effect: TurnInto, Target: &ObjectSpec{Kind: Tree}},
		},
	}
	return cfg
}

func TestValidateLevelConfig_Valid(t *testing.T) {
	if err := ValidateLevelConfig(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateLevelConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *LevelConfig)
		wantErr string
	}{
		{
			"missing name",
			func(cfg *LevelConfig) { cfg.Name = "" },
			"name is required",
		},
		{
			"wrong row count",
			func(cfg *LevelConfig) { cfg.Layout = cfg.Layout[:10] },
			"layout must have 12 rows",
		},
		{
			"short row",
			func(cfg *LevelConfig) { cfg.Layout[3] = "....." },
			"row 4 must have 12 characters",
		},
		{
			"unknown character",
			func(cfg *LevelConfig) { cfg.Layout[3] = "....X......." },
			"invalid character",
		},
		{
			"legend mismatch",
			func(cfg *LevelConfig) { cfg.Legend["#"] = "water" },
			`legend["#"]`,
		},
		{
			"entry out of range",
			func(cfg *LevelConfig) { cfg.Entry = Vec{12, 1} },
			"out of range",
		},
		{
			"entry occupied",
			func(cfg *LevelConfig) { cfg.Entry = Vec{3, 5} },
			"must be an empty tile",
		},
		{
			"exit out of range",
			func(cfg *LevelConfig) { cfg.Exits[0].X = -1 },
			"out of range",
		},
		{
			"exit bad direction",
			func(cfg *LevelConfig) { cfg.Exits[0].Direction = "out" },
			"invalid direction",
		},
		{
			"exit without destination",
			func(cfg *LevelConfig) { cfg.Exits[0].Level = "" },
			"no destination level",
		},
		{
			"raygun without layout tile",
			func(cfg *LevelConfig) { cfg.Rayguns[0].X = 9 },
			"no 'G' in the layout",
		},
		{
			"layout gun without raygun entry",
			func(cfg *LevelConfig) { cfg.Rayguns = nil },
			"no raygun entry",
		},
		{
			"duplicate raygun entry",
			func(cfg *LevelConfig) { cfg.Rayguns = append(cfg.Rayguns, cfg.Rayguns[0]) },
			"duplicate raygun",
		},
		{
			"invalid effect",
			func(cfg *LevelConfig) { cfg.Rayguns[0].Effect = "vaporize" },
			"invalid effect",
		},
		{
			"turn_into without target",
			func(cfg *LevelConfig) { cfg.Rayguns[0].Target = nil },
			"needs a target",
		},
		{
			"nested target with unknown kind",
			func(cfg *LevelConfig) {
				cfg.Rayguns[0].Target = &ObjectSpec{
					Kind: Raygun,
					Gun:  &GunSpec{Effect: TurnInto, Target: &ObjectSpec{Kind: "dragon"}},
				}
			},
			"unknown object kind",
		},
		{
			"gun payload on non-raygun target",
			func(cfg *LevelConfig) {
				cfg.Rayguns[0].Target = &ObjectSpec{
					Kind: Rock,
					Gun:  &GunSpec{Effect: DuplicateShootee},
				}
			},
			"non-raygun kind",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.mutate(cfg)
			err := ValidateLevelConfig(cfg)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not mention %q", err, test.wantErr)
			}
		})
	}
}

func TestValidateLevelConfig_DeepRaygunNesting(t *testing.T) {
	cfg := validConfig()
	spec := &ObjectSpec{Kind: Rock}
	for i := 0; i < 10; i++ {
		spec = &ObjectSpec{Kind: Raygun, Gun: &GunSpec{Effect: TurnInto, Target: spec}}
	}
	cfg.Rayguns[0].Target = spec
	if err := ValidateLevelConfig(cfg); err != nil {
		t.Errorf("deeply nested gun payloads are legal: %v", err)
	}
}

func TestBuildLevel(t *testing.T) {
	lvl, err := BuildLevel("test", validConfig())
	if err != nil {
		t.Fatalf("BuildLevel: %v", err)
	}

	if lvl.ID != "test" || lvl.Name != "Test Level" {
		t.Errorf("level identity = %q/%q", lvl.ID, lvl.Name)
	}
	if got := lvl.Grid.At(Vec{0, 0}).Object; got == nil || got.Kind != Wall {
		t.Error("wall row not built")
	}
	if got := lvl.Grid.At(Vec{3, 5}).Object; got == nil || got.Kind != Rock {
		t.Error("rock not built")
	}
	if lvl.Grid.At(Vec{4, 6}).Ground.Type != Ice {
		t.Error("ice ground not built")
	}
	if lvl.Grid.At(Vec{6, 6}).Ground.Type != Sapling {
		t.Error("sapling ground not built")
	}

	gun := lvl.Grid.At(Vec{2, 6}).Object
	if gun == nil || gun.Kind != Raygun || gun.Gun == nil {
		t.Fatal("raygun payload not attached")
	}
	if gun.Gun.Effect != TurnInto || gun.Gun.Target == nil || gun.Gun.Target.Kind != Tree {
		t.Errorf("gun payload = %+v", gun.Gun)
	}

	exit := lvl.Grid.At(Vec{11, 5}).Exit
	if exit == nil || exit.Direction != Right || exit.Level != "next" {
		t.Errorf("exit = %+v", exit)
	}

	if lvl.Grid.At(lvl.Entry).Object != nil {
		t.Error("template must not contain a player; entry stays empty")
	}
	if lvl.Grid.CountObjects(Player) != 0 {
		t.Error("no player may appear in a template grid")
	}
}

func TestBuildLevel_OverriddenExitDiagnostic(t *testing.T) {
	cfg := validConfig()
	cfg.Exits = append(cfg.Exits, ExitConfig{X: 11, Y: 5, Direction: Left, Level: "other"})
	lvl, err := BuildLevel("test", cfg)
	if err != nil {
		t.Fatalf("BuildLevel: %v", err)
	}
	if len(lvl.Diagnostics) == 0 {
		t.Fatal("overriding exit should produce a diagnostic")
	}
	if exit := lvl.Grid.At(Vec{11, 5}).Exit; exit.Level != "other" {
		t.Error("the later exit wins")
	}
}

func TestLoadLevelConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.json")

	data, err := json.Marshal(validConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadLevelConfig(path)
	if err != nil {
		t.Fatalf("LoadLevelConfig: %v", err)
	}
	if cfg.Name != "Test Level" {
		t.Errorf("name = %q", cfg.Name)
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadLevelConfig(filepath.Join(dir, "absent.json")); err == nil {
			t.Error("missing file must error")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadLevelConfig(bad); err == nil {
			t.Error("malformed file must error")
		}
	})
}
