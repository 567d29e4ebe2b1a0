package service

import (
	"context"
	"time"

	"github.com/puzhgame/puzh/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	Shoot(ctx context.Context, sessionID string) (*ShootResult, error)
	Tick(ctx context.Context, sessionID string) (*TickResult, error)
	SwitchLevel(ctx context.Context, sessionID, levelID string) (*engine.GameState, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, eng *engine.GameEngine) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, build func() (*engine.GameEngine, error)) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// LevelCatalog handles level loading and the built level set
type LevelCatalog interface {
	LoadLevel(name string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	Levels() (map[string]*engine.Level, error)
	DefaultLevel() string
	SaveLevel(name string, cfg *engine.LevelConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	StartLevel     string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
