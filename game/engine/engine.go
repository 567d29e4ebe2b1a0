package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrLevelNotFound is returned when a level identifier is not in the
	// engine's catalog.
	ErrLevelNotFound = errors.New("level not found")
	// ErrNoLevels is returned when an engine is created without any levels.
	ErrNoLevels = errors.New("no levels provided")
)

// Engine is the public contract of the simulation core. Collaborators
// (transports, clients, tools) depend on this interface, not on GameEngine.
type Engine interface {
	// Turn-level operations. MovePlayer and PlayerShoot are rejected while
	// rays are in flight.
	MovePlayer(direction Direction) bool
	PlayerShoot() bool

	// AdvanceRayTick advances every in-flight ray by exactly one tile and
	// returns the number of rays still in flight. It is driven by the
	// external clock, never by player commands.
	AdvanceRayTick() int

	// Level lifecycle.
	SwitchLevel(id string) error
	ResetLevel()

	// Introspection.
	RaysInFlight() bool
	CurrentLevel() string
	State() *GameState
}

// GameEngine implements Engine. It owns the active grid exclusively; a
// level's template grid is immutable and only ever cloned into it.
type GameEngine struct {
	levels  map[string]*Level
	current string

	grid *Grid
	rays []Ray

	cheeseBanked int
	cheeseLevel  int

	steps          int
	stepCheckpoint int
	resets         int

	// switched flags a level substitution that happened mid-resolution, so
	// the surrounding cascade and turn loop stop touching the fresh grid.
	switched bool

	message string
}

// NewEngine creates an engine over a level catalog and enters the start
// level.
func NewEngine(levels map[string]*Level, start string) (*GameEngine, error) {
	if len(levels) == 0 {
		return nil, ErrNoLevels
	}
	if _, ok := levels[start]; !ok {
		return nil, fmt.Errorf("start level %q: %w", start, ErrLevelNotFound)
	}
	e := &GameEngine{levels: levels}
	e.enterLevel(start)
	e.message = levels[start].Name
	return e, nil
}

// enterLevel clones the level's template grid, places the player at the
// entry point, and discards any in-flight rays.
func (e *GameEngine) enterLevel(id string) {
	lvl := e.levels[id]
	e.current = id
	e.grid = lvl.Grid.Clone()
	e.rays = nil
	if t := e.grid.At(lvl.Entry); t != nil {
		t.Object = NewObject(Player)
	}
}

// MovePlayer resolves one player turn in the given direction: every
// unprocessed, unmoved player on the board gets one move attempt in
// row-major order, then saplings grow and bunnies flee. Returns false if the
// command was rejected (rays in flight or a bad direction).
func (e *GameEngine) MovePlayer(direction Direction) bool {
	if len(e.rays) > 0 {
		e.message = "rays in flight"
		return false
	}
	if !direction.Valid() {
		return false
	}
	dir := direction.Vec()

	e.clearTurnFlags()
	e.switched = false
	e.steps++

	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			p := Vec{x, y}
			tile := e.grid.At(p)
			obj := tile.Object
			if obj == nil || obj.Kind != Player || obj.processed || obj.moved {
				continue
			}
			obj.processed = true
			e.resolveMove(p, dir, false)
			if e.switched {
				// The whole board changed under us; the new level starts
				// with a clean turn.
				return true
			}
		}
	}

	e.handleSaplings(true)
	e.handleBunnies()
	e.message = fmt.Sprintf("moved %s", direction)
	return true
}

// PlayerShoot spawns a ray for every raygun adjacent to an unprocessed
// player. Returns false if the command was rejected or no gun was in reach.
func (e *GameEngine) PlayerShoot() bool {
	if len(e.rays) > 0 {
		e.message = "rays in flight"
		return false
	}
	e.clearTurnFlags()

	spawned := 0
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			p := Vec{x, y}
			obj := e.grid.At(p).Object
			if obj == nil || obj.Kind != Player || obj.processed {
				continue
			}
			obj.processed = true
			for _, d := range Directions {
				gp := p.Add(d.Vec())
				gt := e.grid.At(gp)
				if gt == nil || gt.Object == nil || gt.Object.Kind != Raygun || gt.Object.Gun == nil {
					continue
				}
				gun := gt.Object.Gun
				ray := Ray{
					Pos:     gp,
					Dir:     d.Vec(),
					Origin:  gp,
					Shooter: p,
					Effect:  gun.Effect,
				}
				if gun.Target != nil {
					t := gun.Target.Clone()
					ray.Target = &t
				}
				e.rays = append(e.rays, ray)
				spawned++
			}
		}
	}

	if spawned == 0 {
		e.message = "nothing to shoot with"
		return false
	}
	e.message = fmt.Sprintf("%d rays fired", spawned)
	return true
}

// SwitchLevel banks the pending cheese, checkpoints the step counter, and
// enters a fresh clone of the destination level. In-flight rays are
// discarded.
func (e *GameEngine) SwitchLevel(id string) error {
	if _, ok := e.levels[id]; !ok {
		return fmt.Errorf("switch to %q: %w", id, ErrLevelNotFound)
	}
	e.cheeseBanked += e.cheeseLevel
	e.cheeseLevel = 0
	e.stepCheckpoint = e.steps
	e.enterLevel(id)
	e.switched = true
	e.message = fmt.Sprintf("entered %s", e.levels[id].Name)
	return nil
}

// ResetLevel restores the current level's template grid, discards rays, and
// rolls the step counter back to the last checkpoint.
func (e *GameEngine) ResetLevel() {
	e.cheeseLevel = 0
	e.steps = e.stepCheckpoint
	e.resets++
	e.enterLevel(e.current)
	e.message = "level reset"
}

// RaysInFlight reports whether a shoot is still resolving; player commands
// are rejected while it returns true.
func (e *GameEngine) RaysInFlight() bool { return len(e.rays) > 0 }

// CurrentLevel returns the identifier of the active level.
func (e *GameEngine) CurrentLevel() string { return e.current }

// Levels returns the engine's level catalog.
func (e *GameEngine) Levels() map[string]*Level { return e.levels }

// State builds a snapshot of the session. The grid is deep-copied so the
// snapshot stays consistent if the engine keeps running.
func (e *GameEngine) State() *GameState {
	lvl := e.levels[e.current]
	rays := make([]Ray, len(e.rays))
	copy(rays, e.rays)
	return &GameState{
		Level:        e.current,
		LevelName:    lvl.Name,
		Grid:         e.grid.Clone(),
		Rays:         rays,
		RaysInFlight: len(e.rays) > 0,
		CheeseBanked: e.cheeseBanked,
		CheeseLevel:  e.cheeseLevel,
		Steps:        e.steps,
		Resets:       e.resets,
		Message:      e.message,
		Diagnostics:  lvl.Diagnostics,
	}
}

// CheeseTotal returns banked plus pending cheese.
func (e *GameEngine) CheeseTotal() int { return e.cheeseBanked + e.cheeseLevel }

// clearTurnFlags resets the per-turn processed/moved flags on every object.
func (e *GameEngine) clearTurnFlags() {
	for y := range e.grid.Tiles {
		for x := range e.grid.Tiles[y] {
			if obj := e.grid.Tiles[y][x].Object; obj != nil {
				obj.processed = false
				obj.moved = false
			}
		}
	}
}
