package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/puzhgame/puzh/game/engine"
)

func testEngine(t *testing.T) *engine.GameEngine {
	t.Helper()
	lvl := &engine.Level{ID: "test", Name: "Test", Grid: engine.NewGrid(), Entry: engine.Vec{X: 1, Y: 1}}
	eng, err := engine.NewEngine(map[string]*engine.Level{"test": lvl}, "test")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestCreate_GeneratesID(t *testing.T) {
	m := NewManager()

	sess, err := m.Create("", testEngine(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(sess.ID) != 4 {
		t.Errorf("generated ID %q should be 4 characters", sess.ID)
	}
	if sess.StartLevel != "test" {
		t.Errorf("start level = %q, want test", sess.StartLevel)
	}
	if sess.CreatedAt.IsZero() || sess.LastAccessedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	m := NewManager()

	if _, err := m.Create("abcd", testEngine(t)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create("ABCD", testEngine(t)); !errors.Is(err, ErrSessionAlreadyExists) {
		t.Errorf("case-insensitive duplicate: err = %v, want ErrSessionAlreadyExists", err)
	}
}

func TestGet_CaseInsensitive(t *testing.T) {
	m := NewManager()
	if _, err := m.Create("AbCd", testEngine(t)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, id := range []string{"abcd", "ABCD", "AbCd"} {
		if _, err := m.Get(id); err != nil {
			t.Errorf("Get(%q): %v", id, err)
		}
	}
	if _, err := m.Get("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetOrCreate(t *testing.T) {
	m := NewManager()
	built := 0
	build := func() (*engine.GameEngine, error) {
		built++
		return testEngine(t), nil
	}

	first, err := m.GetOrCreate("ab12", build)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := m.GetOrCreate("ab12", build)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first != second {
		t.Error("second call should return the existing session")
	}
	if built != 1 {
		t.Errorf("engine built %d times, want 1", built)
	}

	t.Run("build failure", func(t *testing.T) {
		_, err := m.GetOrCreate("cd34", func() (*engine.GameEngine, error) {
			return nil, fmt.Errorf("boom")
		})
		if err == nil {
			t.Error("build failure must propagate")
		}
	})
}

func TestListDeleteCount(t *testing.T) {
	m := NewManager()
	m.Create("a111", testEngine(t))
	m.Create("b222", testEngine(t))

	if m.Count() != 2 {
		t.Errorf("count = %d, want 2", m.Count())
	}
	if len(m.List()) != 2 {
		t.Errorf("listed = %d, want 2", len(m.List()))
	}

	if err := m.Delete("A111"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("count after delete = %d, want 1", m.Count())
	}
	if err := m.Delete("a111"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double delete err = %v, want ErrSessionNotFound", err)
	}
}

func TestUpdateLastAccessed(t *testing.T) {
	m := NewManager()
	sess, _ := m.Create("ab12", testEngine(t))
	before := sess.LastAccessedAt

	time.Sleep(time.Millisecond)
	if err := m.UpdateLastAccessed("AB12"); err != nil {
		t.Fatalf("UpdateLastAccessed: %v", err)
	}
	if !sess.LastAccessedAt.After(before) {
		t.Error("last accessed time should advance")
	}
	if err := m.UpdateLastAccessed("none"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	m := NewManager()
	stale, _ := m.Create("old1", testEngine(t))
	m.Create("new1", testEngine(t))

	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := m.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := m.Get("old1"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session should be gone")
	}
	if _, err := m.Get("new1"); err != nil {
		t.Error("fresh session should survive")
	}
}
