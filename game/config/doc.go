// Package config provides level catalog management for the puzzle engine.
//
// The config package handles:
//   - Loading level definitions from JSON files
//   - Level validation and caching
//   - Building the full level set the engine runs on
//   - Default starting level selection
//
// Level Format:
//
// Levels are stored as JSON files in the configs directory. Each file
// defines a 12x12 character layout, a legend mapping every character used
// to its meaning, the player entry point, exits linking to other levels,
// and raygun payloads for every 'G' tile.
//
// Linking:
//
// Exits reference other levels by file name (without the .json extension).
// An exit pointing at a level that is not in the directory is legal; the
// manager records a diagnostic on the source level and the engine treats
// the exit as an ordinary tile.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load one level definition
//	cfg, err := manager.LoadLevel("meadow")
//
//	// Build the whole linked set for the engine
//	levels, err := manager.Levels()
package config
