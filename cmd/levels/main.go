// Command levels is a maintenance CLI for level files. It validates every
// level in a directory (including cross-level exit links), prints analysis
// heuristics such as object counts and exit reachability, and rewrites files
// into the canonical JSON layout.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/puzhgame/puzh/game/config"
	"github.com/puzhgame/puzh/game/engine"
)

func main() {
	cmd := &cli.Command{
		Name:  "levels",
		Usage: "validate, analyze, and format Puzh level files",
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "validate every level file in a directory",
				Flags: []cli.Flag{dirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runValidate(cmd.String("dir"))
				},
			},
			{
				Name:  "analyze",
				Usage: "print per-level heuristics: object counts, exits, reachability",
				Flags: []cli.Flag{dirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runAnalyze(cmd.String("dir"))
				},
			},
			{
				Name:  "fmt",
				Usage: "rewrite level files into the canonical JSON layout",
				Flags: []cli.Flag{dirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runFmt(cmd.String("dir"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "dir",
		Value: "configs",
		Usage: "directory containing level files",
	}
}

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateDir validates every .json file in dir and cross-checks exit links
// between them. Dangling exits are warnings: the engine treats them as inert
// tiles, not load failures.
func validateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var results []ValidationResult
	configs := make(map[string]*engine.LevelConfig)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		result := ValidationResult{File: entry.Name(), Valid: true}
		cfg, err := engine.LoadLevelConfig(filepath.Join(dir, entry.Name()))
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		} else {
			name := strings.TrimSuffix(entry.Name(), ".json")
			configs[name] = cfg
		}
		results = append(results, result)
	}

	// Cross-level link check over the files that parsed.
	for i := range results {
		name := strings.TrimSuffix(results[i].File, ".json")
		cfg, ok := configs[name]
		if !ok {
			continue
		}
		for _, ex := range cfg.Exits {
			if _, ok := configs[ex.Level]; !ok {
				results[i].Warnings = append(results[i].Warnings,
					fmt.Sprintf("exit at (%d,%d) targets unknown level %q", ex.X, ex.Y, ex.Level))
			}
		}
	}

	return results, nil
}

func runValidate(dir string) error {
	results, err := validateDir(dir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no level files found in %s", dir)
	}

	invalid := 0
	for _, r := range results {
		if r.Valid {
			fmt.Printf("✓ %s\n", r.File)
		} else {
			invalid++
			fmt.Printf("✗ %s\n", r.File)
			for _, e := range r.Errors {
				fmt.Printf("    error: %s\n", e)
			}
		}
		for _, w := range r.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}

	fmt.Printf("\n%d file(s) checked, %d invalid\n", len(results), invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid level file(s)", invalid)
	}
	return nil
}

// LevelReport is the analysis summary for one level.
type LevelReport struct {
	ID               string
	Name             string
	Objects          map[engine.Kind]int
	Saplings         int
	IcePatches       int
	Exits            []engine.ExitConfig
	GunEffects       []string
	UnreachableExits []engine.Vec
	Diagnostics      []string
}

// analyzeLevel builds a level and summarizes its contents. Exit reachability
// is approximate: a tile counts as passable when it is empty or holds a
// movable object, which ignores whether the push actually works out.
func analyzeLevel(id string, cfg *engine.LevelConfig) (*LevelReport, error) {
	lvl, err := engine.BuildLevel(id, cfg)
	if err != nil {
		return nil, err
	}

	report := &LevelReport{
		ID:          id,
		Name:        cfg.Name,
		Objects:     make(map[engine.Kind]int),
		Exits:       cfg.Exits,
		Diagnostics: lvl.Diagnostics,
	}

	for y := 0; y < engine.GridSize; y++ {
		for x := 0; x < engine.GridSize; x++ {
			tile := lvl.Grid.At(engine.Vec{X: x, Y: y})
			if tile.Object != nil {
				report.Objects[tile.Object.Kind]++
			}
			switch tile.Ground.Type {
			case engine.Sapling:
				report.Saplings++
			case engine.Ice:
				report.IcePatches++
			}
		}
	}

	for _, g := range cfg.Rayguns {
		report.GunEffects = append(report.GunEffects, string(g.Effect))
	}

	reachable := floodFill(lvl.Grid, lvl.Entry)
	for _, ex := range cfg.Exits {
		if !reachable[engine.Vec{X: ex.X, Y: ex.Y}] {
			report.UnreachableExits = append(report.UnreachableExits, engine.Vec{X: ex.X, Y: ex.Y})
		}
	}

	return report, nil
}

// floodFill walks the grid from start through tiles that are empty or hold a
// movable object.
func floodFill(grid *engine.Grid, start engine.Vec) map[engine.Vec]bool {
	seen := map[engine.Vec]bool{start: true}
	queue := []engine.Vec{start}
	dirs := []engine.Vec{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range dirs {
			n := p.Add(d)
			if seen[n] {
				continue
			}
			tile := grid.At(n)
			if tile == nil {
				continue
			}
			if tile.Object != nil && !tile.Object.Kind.CanMove() {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return seen
}

func runAnalyze(dir string) error {
	mgr, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := mgr.ListLevels()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no valid level files found in %s", dir)
	}

	for _, info := range infos {
		cfg, err := mgr.LoadLevel(info.LevelID)
		if err != nil {
			fmt.Printf("\n=== %s: %v\n", info.Filename, err)
			continue
		}

		report, err := analyzeLevel(info.LevelID, cfg)
		if err != nil {
			fmt.Printf("\n=== %s: %v\n", info.Filename, err)
			continue
		}

		fmt.Printf("\n=== %s (%s) ===\n", report.Name, report.ID)

		kinds := make([]engine.Kind, 0, len(report.Objects))
		for k := range report.Objects {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Printf("  %-18s %d\n", k, report.Objects[k])
		}

		fmt.Printf("  saplings: %d, ice tiles: %d\n", report.Saplings, report.IcePatches)
		if len(report.GunEffects) > 0 {
			fmt.Printf("  raygun effects: %s\n", strings.Join(report.GunEffects, ", "))
		}
		for _, ex := range report.Exits {
			fmt.Printf("  exit (%d,%d) %s -> %s\n", ex.X, ex.Y, ex.Direction, ex.Level)
		}
		for _, p := range report.UnreachableExits {
			fmt.Printf("  WARNING: exit at (%d,%d) looks unreachable from the entry\n", p.X, p.Y)
		}
		for _, d := range report.Diagnostics {
			fmt.Printf("  note: %s\n", d)
		}
	}
	return nil
}

func runFmt(dir string) error {
	mgr, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := mgr.ListLevels()
	if err != nil {
		return err
	}

	for _, info := range infos {
		cfg, err := mgr.LoadLevel(info.LevelID)
		if err != nil {
			return err
		}
		if err := mgr.SaveLevel(info.LevelID, cfg); err != nil {
			return err
		}
		fmt.Printf("formatted %s\n", info.Filename)
	}
	return nil
}
