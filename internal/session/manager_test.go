package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(newTestStore(t))
	t.Cleanup(m.Close)
	return m
}

func TestInitializeEmptyStoreCreatesDefault(t *testing.T) {
	m := newTestManager(t)
	m.Initialize()

	sessions := m.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("want 1 default session, got %d", len(sessions))
	}
	if sessions[0].Title != DefaultTitle {
		t.Errorf("title = %q", sessions[0].Title)
	}
	if m.SelectedID() != sessions[0].ID {
		t.Error("default session should be selected")
	}
}

func TestInitializeSortsNewestFirstAndSelectsNewest(t *testing.T) {
	store := newTestStore(t)

	old := New()
	old.ID = "old"
	old.LastModified = time.Now().Add(-time.Hour)
	recent := New()
	recent.ID = "recent"
	recent.LastModified = time.Now()
	for _, s := range []*Session{old, recent} {
		if err := store.Put(s); err != nil {
			t.Fatal(err)
		}
	}

	m := NewManager(store)
	defer m.Close()
	m.Initialize()

	sessions := m.Sessions()
	if sessions[0].ID != "recent" || sessions[1].ID != "old" {
		t.Fatalf("not sorted newest-first: %s, %s", sessions[0].ID, sessions[1].ID)
	}
	if m.SelectedID() != "recent" {
		t.Errorf("selected = %q, want recent", m.SelectedID())
	}
}

func TestInitializeRunsMigrationWhenPrimaryEmpty(t *testing.T) {
	store := newTestStore(t)
	legacy := []*Session{{ID: "migrated", Title: "old", LastModified: time.Now()}}
	data, _ := json.Marshal(legacy)
	os.WriteFile(store.legacyPath, data, 0644)

	m := NewManager(store)
	defer m.Close()
	m.Initialize()

	sessions := m.Sessions()
	if len(sessions) != 1 || sessions[0].ID != "migrated" {
		t.Fatalf("migration not used: %+v", sessions)
	}
	// Hydration applied to migrated records too.
	if sessions[0].Settings.Temperature != 1.0 {
		t.Errorf("settings not hydrated: %+v", sessions[0].Settings)
	}
}

func TestAtLeastOneSessionInvariant(t *testing.T) {
	m := newTestManager(t)
	m.Initialize()

	// Arbitrary create/delete sequence: after each operation len >= 1.
	check := func(op string) {
		if n := len(m.Sessions()); n < 1 {
			t.Fatalf("after %s: %d sessions", op, n)
		}
	}

	a := m.Create()
	check("create a")
	b := m.Create()
	check("create b")

	m.Delete(b.ID)
	check("delete b")
	m.Delete(a.ID)
	check("delete a")

	// Delete everything that's left; a replacement must appear.
	for _, s := range m.Sessions() {
		m.Delete(s.ID)
	}
	check("delete all")

	last := m.Sessions()[0]
	if m.SelectedID() != last.ID {
		t.Error("synthesized replacement should be selected")
	}
}

func TestDeleteSelectedPicksFirstInListOrder(t *testing.T) {
	m := newTestManager(t)
	m.Initialize()

	// Create returns newest-first list order: c, b, a, default.
	m.Create()
	b := m.Create()
	c := m.Create()

	if m.SelectedID() != c.ID {
		t.Fatal("newest create should be selected")
	}

	m.Delete(c.ID)
	// First remaining element in list order, regardless of recency.
	if m.SelectedID() != b.ID {
		t.Errorf("selected = %q, want first remaining %q", m.SelectedID(), b.ID)
	}

	// Deleting an unselected session leaves selection alone.
	sessions := m.Sessions()
	m.Delete(sessions[len(sessions)-1].ID)
	if m.SelectedID() != b.ID {
		t.Error("selection should be unchanged")
	}
}

func TestCreatePersistsAndDeleteRemovesDurably(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store)
	m.Initialize()

	s := m.Create()
	m.Delete(s.ID)
	m.Close() // drain the persist queue

	all, err := store.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, got := range all {
		if got.ID == s.ID {
			t.Error("deleted session still stored")
		}
	}
	if len(all) == 0 {
		t.Error("default session should be durably stored")
	}
}

func TestSaveMirrorsToStore(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store)
	m.Initialize()

	s := m.Selected()
	s.Title = "updated"
	s.Touch()
	m.Save(s)
	m.Close()

	all, _ := store.GetAll()
	if len(all) != 1 || all[0].Title != "updated" {
		t.Fatalf("save not mirrored: %+v", all)
	}
}

func TestSelect(t *testing.T) {
	m := newTestManager(t)
	m.Initialize()
	first := m.Selected()
	second := m.Create()

	if !m.Select(first.ID) {
		t.Fatal("select existing id")
	}
	if m.SelectedID() != first.ID {
		t.Error("pointer not moved")
	}
	if m.Select("nope") {
		t.Error("selecting unknown id should fail")
	}
	if m.SelectedID() != first.ID {
		t.Error("failed select must not move the pointer")
	}
	_ = second
}

func TestStoreLegacyFileLocation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "sessions"))
	if err != nil {
		t.Fatal(err)
	}
	if store.legacyPath != filepath.Join(dir, "sessions.json") {
		t.Errorf("legacy path = %q", store.legacyPath)
	}
}
