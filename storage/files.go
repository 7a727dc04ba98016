package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FindFileByPath looks up a project file by (sessionID, path). Returns
// (nil, nil) when no file exists at that path.
func (s *Store) FindFileByPath(ctx context.Context, sessionID, path string) (*ProjectFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, path, content, created_at, updated_at FROM project_files
		 WHERE session_id = ? AND path = ?`, sessionID, path)

	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}

	return file, nil
}

// InsertFile creates a new project file with a fresh identity.
func (s *Store) InsertFile(ctx context.Context, sessionID, path, content string) (*ProjectFile, error) {
	now := time.Now().UTC()
	file := &ProjectFile{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Path:      path,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_files (id, session_id, path, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		file.ID, file.SessionID, file.Path, file.Content, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}

	return file, nil
}

// UpdateFile replaces a file's content wholesale and refreshes updated_at.
func (s *Store) UpdateFile(ctx context.Context, id, content string) (*ProjectFile, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`UPDATE project_files SET content = ?, updated_at = ? WHERE id = ?`,
		content, now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update file: %w", err)
	}

	return s.GetFile(ctx, id)
}

// GetFile loads one project file by id. Returns (nil, nil) when absent.
func (s *Store) GetFile(ctx context.Context, id string) (*ProjectFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, path, content, created_at, updated_at FROM project_files WHERE id = ?`, id)

	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}

	return file, nil
}

// ListFiles returns a session's project files ordered by path.
func (s *Store) ListFiles(ctx context.Context, sessionID string) ([]ProjectFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, path, content, created_at, updated_at FROM project_files
		 WHERE session_id = ? ORDER BY path ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []ProjectFile
	for rows.Next() {
		var file ProjectFile
		if err := rows.Scan(&file.ID, &file.SessionID, &file.Path, &file.Content, &file.CreatedAt, &file.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

func scanFile(row *sql.Row) (*ProjectFile, error) {
	var file ProjectFile
	err := row.Scan(&file.ID, &file.SessionID, &file.Path, &file.Content, &file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
