package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixenhq/pixen/internal/message"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestStorePutGetDelete(t *testing.T) {
	store := newTestStore(t)

	s := New()
	s.Title = "first"
	s.Messages = append(s.Messages, message.UserMessage("hello", nil))

	if err := store.Put(s); err != nil {
		t.Fatal(err)
	}

	all, err := store.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != s.ID || all[0].Title != "first" {
		t.Fatalf("unexpected load: %+v", all)
	}
	if len(all[0].Messages) != 1 || all[0].Messages[0].Text != "hello" {
		t.Fatalf("messages not round-tripped: %+v", all[0].Messages)
	}

	// Put is a wholesale upsert.
	s.Title = "renamed"
	if err := store.Put(s); err != nil {
		t.Fatal(err)
	}
	all, _ = store.GetAll()
	if len(all) != 1 || all[0].Title != "renamed" {
		t.Fatalf("upsert did not overwrite: %+v", all)
	}

	if err := store.Delete(s.ID); err != nil {
		t.Fatal(err)
	}
	// Deleting a nonexistent id is a no-op.
	if err := store.Delete(s.ID); err != nil {
		t.Fatal(err)
	}
	all, _ = store.GetAll()
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d", len(all))
	}
}

func TestStoreSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)

	good := New()
	if err := store.Put(good); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(store.baseDir, "corrupt.json"), []byte("{not json"), 0644)

	all, err := store.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != good.ID {
		t.Fatalf("corrupt file should be skipped: %+v", all)
	}
}

func TestMigrateLegacy(t *testing.T) {
	store := newTestStore(t)

	legacy := []*Session{
		{ID: "legacy-1", Title: "old one", LastModified: time.Now()},
		{ID: "legacy-2", Title: "old two", LastModified: time.Now()},
	}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(store.legacyPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	migrated := store.MigrateLegacy()
	if len(migrated) != 2 {
		t.Fatalf("want 2 migrated, got %d", len(migrated))
	}

	// Entries landed in the primary store.
	all, _ := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("want 2 stored, got %d", len(all))
	}

	// The legacy blob is consumed exactly once.
	if _, err := os.Stat(store.legacyPath); !os.IsNotExist(err) {
		t.Error("legacy file should be cleared")
	}
	if store.MigrateLegacy() != nil {
		t.Error("second migration should find nothing")
	}
}

func TestMigrateLegacyBadData(t *testing.T) {
	store := newTestStore(t)

	os.WriteFile(store.legacyPath, []byte("not json at all"), 0644)
	if got := store.MigrateLegacy(); got != nil {
		t.Fatalf("parse failure should migrate nothing, got %+v", got)
	}

	os.WriteFile(store.legacyPath, []byte("[]"), 0644)
	if got := store.MigrateLegacy(); got != nil {
		t.Fatalf("empty list should migrate nothing, got %+v", got)
	}
}

func TestLegacySingleImageFieldReadable(t *testing.T) {
	store := newTestStore(t)

	// Simulate a record written by an old version: message carries the
	// single "image" field and there is no settings object.
	raw := `{
		"id": "old-sess",
		"title": "from the before times",
		"messages": [
			{"id": "m1", "role": "user", "text": "make it blue",
			 "image": {"dataUrl": "data:image/png;base64,QUJD", "mimeType": "image/png", "base64Data": "QUJD"},
			 "timestamp": "2024-01-01T00:00:00Z"}
		],
		"activeImage": null,
		"lastModified": "2024-01-01T00:00:00Z"
	}`
	os.WriteFile(filepath.Join(store.baseDir, "old-sess.json"), []byte(raw), 0644)

	all, err := store.GetAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("want 1 session, got %d", len(all))
	}

	imgs := all[0].Messages[0].AllImages()
	if len(imgs) != 1 || imgs[0].Base64Data != "QUJD" {
		t.Fatalf("legacy image field not normalized: %+v", imgs)
	}

	// Missing settings hydrate to defaults, not rejection.
	if got := all[0].Settings.Hydrated(); got.Temperature != 1.0 || got.Style != "None" {
		t.Fatalf("settings not hydrated: %+v", got)
	}
}
