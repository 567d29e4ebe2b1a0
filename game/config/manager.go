package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/puzhgame/puzh/game/engine"
	"github.com/puzhgame/puzh/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// Manager handles level loading and caching
type Manager struct {
	configDir    string
	defaultLevel string
	levels       map[string]*engine.LevelConfig
	built        map[string]*engine.Level
	mu           sync.RWMutex
}

// NewManager creates a new level manager over a directory of level files
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		levels:    make(map[string]*engine.LevelConfig),
	}

	if err := m.pickDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to pick default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level configuration by name
func (m *Manager) LoadLevel(name string) (*engine.LevelConfig, error) {
	m.mu.RLock()
	// Check cache first
	if cfg, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cfg, exists := m.levels[name]; exists {
		return cfg, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	var cfg engine.LevelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	if err := engine.ValidateLevelConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	m.levels[name] = &cfg
	m.built = nil
	return &cfg, nil
}

// ListLevels returns catalog information about all available level files
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var infos []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		cfg, err := m.LoadLevel(name)
		if err != nil {
			// Skip invalid files; cmd tooling reports on them.
			continue
		}

		var exits []string
		for _, ex := range cfg.Exits {
			exits = append(exits, ex.Level)
		}
		infos = append(infos, &service.LevelInfo{
			Filename:    entry.Name(),
			LevelID:     name,
			Name:        cfg.Name,
			Description: cfg.Description,
			Exits:       exits,
			Rayguns:     len(cfg.Rayguns),
		})
	}

	return infos, nil
}

// Levels builds the full level set for the engine. Exits that point at a
// level missing from the set are recorded as diagnostics on the source
// level; the engine treats such exits as inert.
func (m *Manager) Levels() (map[string]*engine.Level, error) {
	m.mu.RLock()
	if m.built != nil {
		defer m.mu.RUnlock()
		return m.built, nil
	}
	m.mu.RUnlock()

	infos, err := m.ListLevels()
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: no valid level files in %s", ErrLevelNotFound, m.configDir)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set := make(map[string]*engine.Level, len(m.levels))
	for name, cfg := range m.levels {
		lvl, err := engine.BuildLevel(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build level %q: %w", name, err)
		}
		set[name] = lvl
	}

	for name, cfg := range m.levels {
		for _, ex := range cfg.Exits {
			if _, ok := set[ex.Level]; !ok {
				set[name].Diagnostics = append(set[name].Diagnostics,
					fmt.Sprintf("exit at (%d,%d) targets unknown level %q", ex.X, ex.Y, ex.Level))
			}
		}
	}

	m.built = set
	return set, nil
}

// DefaultLevel returns the identifier of the default starting level
func (m *Manager) DefaultLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default starting level by name
func (m *Manager) SetDefault(name string) error {
	if _, err := m.LoadLevel(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = name
	return nil
}

// RefreshCache drops all cached levels so they reload from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*engine.LevelConfig)
	m.built = nil
	m.mu.Unlock()

	return m.pickDefaultLevel()
}

// SaveLevel validates and writes a level configuration to disk
func (m *Manager) SaveLevel(name string, cfg *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[name] = cfg
	m.built = nil
	m.mu.Unlock()

	return nil
}

// pickDefaultLevel chooses the starting level: "meadow" when present,
// otherwise the first listed level file.
func (m *Manager) pickDefaultLevel() error {
	if _, err := m.LoadLevel("meadow"); err == nil {
		m.mu.Lock()
		m.defaultLevel = "meadow"
		m.mu.Unlock()
		return nil
	}

	infos, err := m.ListLevels()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no valid level files in %s", m.configDir)
	}
	m.mu.Lock()
	m.defaultLevel = infos[0].LevelID
	m.mu.Unlock()
	return nil
}
