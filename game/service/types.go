package service

import (
	"time"

	"github.com/puzhgame/puzh/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	StartLevel     string            `json:"start_level"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// ShootResult contains the result of a shoot operation. When rays were
// fired, the session accepts no further commands until they resolve.
type ShootResult struct {
	Success   bool              `json:"success"`
	RaysFired int               `json:"rays_fired"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
}

// TickResult reports one advancement of the ray clock.
type TickResult struct {
	RaysInFlight int               `json:"rays_in_flight"`
	Resolved     bool              `json:"resolved"`
	GameState    *engine.GameState `json:"game_state"`
	Events       []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "cheese_eaten", "level_switch", "tree_grown", "rays_resolved", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LevelInfo provides catalog information about one level file
type LevelInfo struct {
	Filename    string   `json:"filename"`
	LevelID     string   `json:"level_id"` // The identifier to use for session creation
	Name        string   `json:"name"`     // Display name
	Description string   `json:"description"`
	Exits       []string `json:"exits,omitempty"` // Destination level identifiers
	Rayguns     int      `json:"rayguns"`
}
