package session

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

// stubConfigs serves a fixed set of configs by ID
type stubConfigs map[string]*engine.GameConfig

func (s stubConfigs) LoadConfig(name string) (*engine.GameConfig, error) {
	if c, ok := s[name]; ok {
		return c, nil
	}
	return nil, service.ErrConfigNotFound
}

func (s stubConfigs) ListConfigs() ([]*service.ConfigInfo, error) { return nil, nil }
func (s stubConfigs) GetDefault() *engine.GameConfig            { return s["test"] }
func (s stubConfigs) SaveConfig(string, *engine.GameConfig) error { return nil }

type backend struct {
	name string
	open func(t *testing.T, configs service.ConfigManager) SessionPersistence
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T, configs service.ConfigManager) SessionPersistence {
			p, err := NewFilePersistence(filepath.Join(t.TempDir(), "sessions"), configs)
			if err != nil {
				t.Fatalf("NewFilePersistence failed: %v", err)
			}
			return p
		}},
		{"sqlite", func(t *testing.T, configs service.ConfigManager) SessionPersistence {
			p, err := NewSQLitePersistence(filepath.Join(t.TempDir(), "sessions.db"), configs)
			if err != nil {
				t.Fatalf("NewSQLitePersistence failed: %v", err)
			}
			t.Cleanup(func() { p.Close() })
			return p
		}},
	}
}

// playedSession returns a session in combat with one hit recorded
func playedSession(t *testing.T, id string) *service.Session {
	t.Helper()
	manager := NewManager(nil)
	sess, err := manager.Create(id, "test", createTestConfig())
	if err != nil {
		t.Fatal(err)
	}

	fleet, err := engine.ParseGrid([]string{
		"#####..",
		".......",
		"####...",
		".......",
		"###.##.",
		".......",
		"##.....",
	})
	if err != nil {
		t.Fatal(err)
	}
	apply := func(ev engine.Event) {
		t.Helper()
		if _, err := sess.Engine.Apply(ev); err != nil {
			t.Fatalf("Apply(%s) failed: %v", ev.Type, err)
		}
	}
	apply(engine.JoinEvent("p1", "Alice"))
	apply(engine.JoinEvent("p2", "Bob"))
	for _, player := range []string{"p1", "p2"} {
		for _, c := range fleet.Cells() {
			apply(engine.PlaceEvent(player, c, true))
		}
	}
	for sess.Engine.Phase() == engine.PhaseCountdown {
		apply(engine.TickEvent())
	}
	target, _ := engine.ToPublic(engine.Coord{Row: 0, Col: 0}, engine.Second, engine.East)
	apply(engine.AttackEvent("p1", target))
	return sess
}

func TestPersistence_RoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			configs := stubConfigs{"test": createTestConfig()}
			p := b.open(t, configs)
			sess := playedSession(t, "ab12")

			if err := p.Save(sess); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if !p.Exists("ab12") || !p.Exists("AB12") {
				t.Fatal("Expected session to exist")
			}

			loaded, err := p.Load("ab12")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Engine.State() != sess.Engine.State() {
				t.Error("Expected restored match to equal the saved one")
			}
			if loaded.ConfigID != "test" || loaded.Config.Orientation != engine.East {
				t.Errorf("Unexpected config %q %+v", loaded.ConfigID, loaded.Config)
			}
			if !loaded.CreatedAt.Equal(sess.CreatedAt) {
				t.Errorf("Expected created at %v, got %v", sess.CreatedAt, loaded.CreatedAt)
			}

			// saving again replaces the stored copy
			if _, err := sess.Engine.Apply(engine.LeaveEvent("p2")); err != nil {
				t.Fatal(err)
			}
			if err := p.Save(sess); err != nil {
				t.Fatal(err)
			}
			loaded, _ = p.Load("ab12")
			if loaded.Engine.Phase() != engine.PhaseSetup {
				t.Errorf("Expected updated phase setup, got %s", loaded.Engine.Phase())
			}
		})
	}
}

func TestPersistence_StoredConfigFallback(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p := b.open(t, stubConfigs{"test": createTestConfig()})
			if err := p.Save(playedSession(t, "cf01")); err != nil {
				t.Fatal(err)
			}

			// reopen the same store with a manager that no longer knows "test"
			var reopened SessionPersistence
			switch store := p.(type) {
			case *FilePersistence:
				reopened = &FilePersistence{sessionsDir: store.sessionsDir, configManager: stubConfigs{}}
			case *SQLitePersistence:
				reopened = &SQLitePersistence{db: store.db, configManager: stubConfigs{}}
			}
			loaded, err := reopened.Load("cf01")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Config.Name != "Test Config" {
				t.Errorf("Expected stored config, got %+v", loaded.Config)
			}
		})
	}
}

func TestPersistence_DeleteAndList(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			p := b.open(t, stubConfigs{"test": createTestConfig()})
			manager := NewManager(nil)
			for _, id := range []string{"aaaa", "bbbb"} {
				sess, _ := manager.Create(id, "test", createTestConfig())
				if err := p.Save(sess); err != nil {
					t.Fatal(err)
				}
			}

			ids, err := p.ListAll()
			if err != nil {
				t.Fatalf("ListAll failed: %v", err)
			}
			sort.Strings(ids)
			if strings.Join(ids, ",") != "aaaa,bbbb" {
				t.Errorf("Expected [aaaa bbbb], got %v", ids)
			}

			if err := p.Delete("aaaa"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if p.Exists("aaaa") {
				t.Error("Expected session to be deleted")
			}
			if err := p.Delete("aaaa"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
			if _, err := p.Load("aaaa"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestManagerWithPersistence(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			configs := stubConfigs{"test": createTestConfig()}
			p := b.open(t, configs)

			first := NewManagerWithPersistence(p, nil)
			sess, err := first.Create("", "test", createTestConfig())
			if err != nil {
				t.Fatal(err)
			}
			sess.Engine.Apply(engine.JoinEvent("p1", "Alice"))
			if err := first.Save(sess.ID); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			// a second manager over the same store sees the session lazily
			second := NewManagerWithPersistence(p, nil)
			got, err := second.Get(sess.ID)
			if err != nil {
				t.Fatalf("Get from persistence failed: %v", err)
			}
			if !got.Engine.State().Players[engine.First].Present() {
				t.Error("Expected joined player to be restored")
			}

			third := NewManagerWithPersistence(p, nil)
			if err := third.LoadPersistedSessions(); err != nil {
				t.Fatal(err)
			}
			if third.Count() != 1 {
				t.Errorf("Expected 1 loaded session, got %d", third.Count())
			}

			// expiry only drops the in-memory copy
			third.CleanupExpiredSessions(0)
			if _, err := third.Get(sess.ID); err != nil {
				t.Errorf("Expected expired session to reload: %v", err)
			}

			if err := third.Delete(sess.ID); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if p.Exists(sess.ID) {
				t.Error("Expected Delete to remove the persisted copy")
			}
			if err := first.SaveAllSessions(); err != nil {
				t.Errorf("SaveAllSessions failed: %v", err)
			}
		})
	}
}

func TestFilePersistence_FileLayout(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, stubConfigs{"test": createTestConfig()})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Save(playedSession(t, "F00D")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "f00d.json"))
	if err != nil {
		t.Fatalf("Expected lowercase session file: %v", err)
	}
	for _, key := range []string{`"config_name": "test"`, `"phase": "combat"`, `"orientation": "east"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in session file", key)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "f00d.json.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be renamed away")
	}
}
