package store

import (
	"context"
	"fmt"

	"rolo/internal/book"
	"rolo/internal/logging"
)

// SaveNote writes a note through to the database, replacing any previous
// row for the same ID. Tags are rewritten inside the same transaction.
func (s *Store) SaveNote(ctx context.Context, n *book.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Saving note: title=%s tags=%d", n.Title, len(n.Tags))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notes (id, title, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   body = excluded.body,
		   updated_at = excluded.updated_at`,
		n.ID, n.Title, n.Body, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert note %s: %w", n.Title, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id = ?", n.ID); err != nil {
		return fmt.Errorf("failed to clear tags for %s: %w", n.Title, err)
	}
	for _, tag := range n.Tags {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO note_tags (note_id, tag) VALUES (?, ?)",
			n.ID, tag,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tag for %s: %w", n.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit note %s: %w", n.Title, err)
	}

	logging.Audit(logging.AuditNoteUpdate, n.Title, map[string]string{"id": n.ID})
	return nil
}

// DeleteNote removes a note and its tags by title.
func (s *Store) DeleteNote(ctx context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Deleting note: title=%s", title)

	_, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE title = ? COLLATE NOCASE", title)
	if err != nil {
		return fmt.Errorf("failed to delete note %s: %w", title, err)
	}

	logging.Audit(logging.AuditNoteDelete, title, nil)
	return nil
}

// LoadNotes reads every note from the database.
func (s *Store) LoadNotes(ctx context.Context) ([]*book.Note, error) {
	timer := logging.StartTimer(logging.CategoryStore, "LoadNotes")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, body, created_at, updated_at FROM notes ORDER BY title",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*book.Note
	byID := make(map[string]*book.Note)
	for rows.Next() {
		var n book.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &n)
		byID[n.ID] = &n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	tagRows, err := s.db.QueryContext(ctx, "SELECT note_id, tag FROM note_tags ORDER BY note_id, tag")
	if err != nil {
		return nil, fmt.Errorf("failed to query note tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var noteID, tag string
		if err := tagRows.Scan(&noteID, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan note tag: %w", err)
		}
		if n, ok := byID[noteID]; ok {
			n.Tags = append(n.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate note tags: %w", err)
	}

	logging.StoreDebug("Loaded %d notes", len(notes))
	return notes, nil
}
