package session

import (
	"os"
	"testing"
	"time"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "session-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return NewStoreWithDir(dir)
}

func TestStoreGetLatestByCwd(t *testing.T) {
	store := newTempStore(t)

	sessA := &Session{
		Metadata: SessionMetadata{ID: "sess-a", Cwd: "/projects/alpha"},
		Messages: []StoredMessage{{Role: "user", Content: "hello from alpha"}},
	}
	sessB := &Session{
		Metadata: SessionMetadata{ID: "sess-b", Cwd: "/projects/beta"},
		Messages: []StoredMessage{{Role: "user", Content: "hello from beta"}},
	}
	if err := store.Save(sessA); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := store.Save(sessB); err != nil {
		t.Fatal(err)
	}

	result, err := store.GetLatestByCwd("/projects/beta")
	if err != nil {
		t.Fatalf("GetLatestByCwd failed: %v", err)
	}
	if result.Metadata.ID != "sess-b" {
		t.Errorf("expected sess-b, got %s", result.Metadata.ID)
	}

	if _, err := store.GetLatestByCwd("/projects/gamma"); err == nil {
		t.Error("expected error for a cwd with no sessions")
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTempStore(t)
	sess := &Session{
		Metadata: SessionMetadata{ID: "s1"},
		Messages: []StoredMessage{{Role: "user", Content: "hello there"}},
	}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load("s1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Messages[0].Content != "hello there" {
		t.Errorf("unexpected content: %q", loaded.Messages[0].Content)
	}
}
