// Package chat ties the provider router, the extractor and the store
// together: it owns the conversation transcript, drives streaming, and
// persists extracted code blocks as project files.
package chat

import (
	"context"
	"log/slog"

	"scrapingai/extract"
	"scrapingai/storage"
)

// FileStore is the storage surface the materializer consumes. *storage.Store
// satisfies it; tests substitute a fake.
type FileStore interface {
	FindFileByPath(ctx context.Context, sessionID, path string) (*storage.ProjectFile, error)
	InsertFile(ctx context.Context, sessionID, path, content string) (*storage.ProjectFile, error)
	UpdateFile(ctx context.Context, id, content string) (*storage.ProjectFile, error)
}

// FailedFile reports one file write that did not complete.
type FailedFile struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// MaterializeResult reports the outcome of one materialization batch.
// A batch is not atomic: earlier successes stand even when later writes
// fail, and each failure is reported per path.
type MaterializeResult struct {
	Saved  []storage.ProjectFile `json:"saved"`
	Failed []FailedFile          `json:"failed,omitempty"`
}

// Materializer persists extracted files as project files with
// create-or-update-by-path semantics.
type Materializer struct {
	store  FileStore
	logger *slog.Logger
}

// NewMaterializer creates a materializer. The store is injected rather than
// reached through a shared client so tests can swap in a fake.
func NewMaterializer(store FileStore, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{store: store, logger: logger}
}

// Materialize upserts each extracted file into the session, in input order.
// When the same path appears twice in one batch the later write wins: the
// first occurrence inserts the row, the second finds and updates it.
func (m *Materializer) Materialize(ctx context.Context, sessionID string, files []extract.File) MaterializeResult {
	var result MaterializeResult

	for _, f := range files {
		saved, err := m.upsert(ctx, sessionID, f)
		if err != nil {
			m.logger.Warn("file write failed",
				"session", sessionID, "path", f.Path, "error", err)
			result.Failed = append(result.Failed, FailedFile{Path: f.Path, Err: err})
			continue
		}
		result.Saved = append(result.Saved, *saved)
	}

	return result
}

func (m *Materializer) upsert(ctx context.Context, sessionID string, f extract.File) (*storage.ProjectFile, error) {
	existing, err := m.store.FindFileByPath(ctx, sessionID, f.Path)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return m.store.UpdateFile(ctx, existing.ID, f.Content)
	}
	return m.store.InsertFile(ctx, sessionID, f.Path, f.Content)
}
