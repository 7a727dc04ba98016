package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenPath() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "user-1", "Scrape product pages")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if session.ID == "" {
		t.Fatal("CreateSession() returned empty id")
	}

	loaded, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if loaded == nil || loaded.Title != "Scrape product pages" {
		t.Fatalf("GetSession() = %+v, want title %q", loaded, "Scrape product pages")
	}

	if err := store.RenameSession(ctx, session.ID, "Renamed"); err != nil {
		t.Fatalf("RenameSession() error: %v", err)
	}
	loaded, err = store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if loaded.Title != "Renamed" {
		t.Errorf("title after rename = %q, want %q", loaded.Title, "Renamed")
	}

	if err := store.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}
	loaded, err = store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() after delete error: %v", err)
	}
	if loaded != nil {
		t.Error("session still present after delete")
	}
}

func TestListSessionsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateSession(ctx, "user-1", "first")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	second, err := store.CreateSession(ctx, "user-1", "second")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if _, err := store.CreateSession(ctx, "someone-else", "other user"); err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	// Appending to the first session must move it to the top.
	if _, err := store.AppendMessage(ctx, first.ID, "user", "hello"); err != nil {
		t.Fatalf("AppendMessage() error: %v", err)
	}

	sessions, err := store.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSessions() error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() returned %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != first.ID || sessions[1].ID != second.ID {
		t.Errorf("ListSessions() order = [%s %s], want [%s %s]",
			sessions[0].ID, sessions[1].ID, first.ID, second.ID)
	}
}

func TestMessagesOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "user-1", "chat")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	for _, content := range []string{"one", "two", "three"} {
		if _, err := store.AppendMessage(ctx, session.ID, "user", content); err != nil {
			t.Fatalf("AppendMessage() error: %v", err)
		}
	}

	messages, err := store.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages() error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("ListMessages() returned %d messages, want 3", len(messages))
	}
	for i, want := range []string{"one", "two", "three"} {
		if messages[i].Content != want {
			t.Errorf("message %d = %q, want %q", i, messages[i].Content, want)
		}
	}
}

func TestFileUpsertByPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "user-1", "files")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}

	missing, err := store.FindFileByPath(ctx, session.ID, "app/main.py")
	if err != nil {
		t.Fatalf("FindFileByPath() error: %v", err)
	}
	if missing != nil {
		t.Fatal("FindFileByPath() found nonexistent file")
	}

	inserted, err := store.InsertFile(ctx, session.ID, "app/main.py", "v1")
	if err != nil {
		t.Fatalf("InsertFile() error: %v", err)
	}

	updated, err := store.UpdateFile(ctx, inserted.ID, "v2")
	if err != nil {
		t.Fatalf("UpdateFile() error: %v", err)
	}
	if updated.Content != "v2" {
		t.Errorf("content after update = %q, want %q", updated.Content, "v2")
	}
	if updated.ID != inserted.ID {
		t.Error("update changed file identity")
	}

	files, err := store.ListFiles(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("ListFiles() returned %d files, want 1", len(files))
	}
}

func TestAPIKeyRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.GetAPIKey(ctx, "user-1", "OpenAI")
	if err != nil {
		t.Fatalf("GetAPIKey() error: %v", err)
	}
	if key != "" {
		t.Errorf("GetAPIKey() for unstored key = %q, want empty", key)
	}

	if err := store.SetAPIKey(ctx, "user-1", "OpenAI", "sk-first"); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}
	if err := store.SetAPIKey(ctx, "user-1", "OpenAI", "sk-second"); err != nil {
		t.Fatalf("SetAPIKey() replace error: %v", err)
	}

	key, err = store.GetAPIKey(ctx, "user-1", "OpenAI")
	if err != nil {
		t.Fatalf("GetAPIKey() error: %v", err)
	}
	if key != "sk-second" {
		t.Errorf("GetAPIKey() = %q, want %q", key, "sk-second")
	}
}

func TestSearchSessions(t *testing.T) {
	sessions := []Session{
		{ID: "1", Title: "Scrape Amazon listings"},
		{ID: "2", Title: "Rate limit handling"},
		{ID: "3", Title: "Scrape news site"},
	}

	results := SearchSessions(sessions, "scrape")
	if len(results) != 2 {
		t.Fatalf("SearchSessions() returned %d results, want 2", len(results))
	}

	if got := SearchSessions(sessions, ""); got != nil {
		t.Errorf("SearchSessions() with empty query = %v, want nil", got)
	}
}
