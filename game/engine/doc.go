// Package engine implements the core simulation for the Puzh puzzle game.
//
// The engine covers:
//   - A fixed 12x12 grid of tiles with bounds-checked addressing
//   - The movement resolver: recursive push/pull/slide cascades with the
//     special cases for soap, axe vs. tree, cheese, and key vs. door
//   - Behavior rules: sapling growth and bunny flee AI, run once per turn
//   - The ray propagator: tick-stepped rays with mirror reflection and
//     terminal swap/duplicate/turn-into effects
//   - The session facade: level catalog, counters, and the public
//     move/shoot/tick/switch/reset operations
//
// Core Types:
//
// The Engine interface defines the contract for turn operations,
// implemented by GameEngine. Level holds an immutable template grid that is
// cloned into the active session; LevelConfig is its JSON file shape.
//
// Usage:
//
//	cfg, err := engine.LoadLevelConfig("configs/meadow.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	lvl, err := engine.BuildLevel("meadow", cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewEngine(map[string]*engine.Level{"meadow": lvl}, "meadow")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game.MovePlayer(engine.Right)
//	state := game.State()
//
// Two cadences drive the simulation. Player commands (move, shoot) resolve
// synchronously and atomically. Ray travel is tick-stepped: AdvanceRayTick
// moves every in-flight ray one tile and is called by an external clock,
// and player commands are rejected until no rays remain. The engine is not
// safe for concurrent use; callers serialize access.
package engine
