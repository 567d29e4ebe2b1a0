package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puzhgame/puzh/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelCatalog
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, levels LevelCatalog) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

// CreateSession creates a new game session starting on the given level, or
// on the catalog's default level when levelID is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.levels.Levels()
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}

	if levelID == "" {
		levelID = s.levels.DefaultLevel()
	}
	if _, ok := set[levelID]; !ok {
		infos, listErr := s.levels.ListLevels()
		if listErr == nil && len(infos) > 0 {
			var ids []string
			for _, info := range infos {
				ids = append(ids, info.LevelID)
			}
			return nil, fmt.Errorf("level '%s' not found. Available levels: %v", levelID, ids)
		}
		return nil, fmt.Errorf("level '%s' not found", levelID)
	}

	eng, err := engine.NewEngine(set, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	// Let the session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", eng)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes one player turn for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	dir := engine.Direction(direction)
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction '%s', must be one of up, down, left, right", direction)
	}

	before := sess.Engine.State()
	ok := sess.Engine.MovePlayer(dir)
	after := sess.Engine.State()

	return &MoveResult{
		Success:   ok,
		GameState: after,
		Message:   after.Message,
		Events:    extractEvents(before, after),
	}, nil
}

// Shoot fires every raygun adjacent to a player. The spawned rays advance on
// the ray clock, not here.
func (s *gameServiceImpl) Shoot(ctx context.Context, sessionID string) (*ShootResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	ok := sess.Engine.PlayerShoot()
	state := sess.Engine.State()

	return &ShootResult{
		Success:   ok,
		RaysFired: len(state.Rays),
		GameState: state,
		Message:   state.Message,
	}, nil
}

// Tick advances the session's ray clock by one tile
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	before := sess.Engine.State()
	inFlight := sess.Engine.AdvanceRayTick()
	after := sess.Engine.State()

	events := extractEvents(before, after)
	resolved := before.RaysInFlight && inFlight == 0
	if resolved {
		events = append(events, GameEvent{
			Type:      "rays_resolved",
			Message:   "all rays resolved",
			Timestamp: time.Now(),
		})
	}

	return &TickResult{
		RaysInFlight: inFlight,
		Resolved:     resolved,
		GameState:    after,
		Events:       events,
	}, nil
}

// SwitchLevel moves the session to another level, banking pending cheese
func (s *gameServiceImpl) SwitchLevel(ctx context.Context, sessionID, levelID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.SwitchLevel(levelID); err != nil {
		return nil, fmt.Errorf("failed to switch level: %w", err)
	}
	return sess.Engine.State(), nil
}

// Reset restores the session's current level to its template
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Engine.ResetLevel()
	return sess.Engine.State(), nil
}

// GetGameState returns the current state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return sess.Engine.State(), nil
}

// ListLevels returns catalog information about all available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		StartLevel:     sess.StartLevel,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.State(),
	}
}

// extractEvents derives gameplay events from a before/after state pair.
func extractEvents(before, after *engine.GameState) []GameEvent {
	var events []GameEvent
	now := time.Now()

	if after.Level != before.Level {
		events = append(events, GameEvent{
			Type:      "level_switch",
			Message:   fmt.Sprintf("entered level %s", after.LevelName),
			Timestamp: now,
		})
		// The rest compares two different boards; skip it.
		return events
	}
	if after.CheeseLevel > before.CheeseLevel {
		events = append(events, GameEvent{
			Type:      "cheese_eaten",
			Message:   fmt.Sprintf("cheese collected (%d pending)", after.CheeseLevel),
			Timestamp: now,
		})
	}
	if after.Grid.CountObjects(engine.Tree) > before.Grid.CountObjects(engine.Tree) {
		events = append(events, GameEvent{
			Type:      "tree_grown",
			Message:   "a sapling grew into a tree",
			Timestamp: now,
		})
	}
	if after.Resets > before.Resets {
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "level reset",
			Timestamp: now,
		})
	}
	return events
}
