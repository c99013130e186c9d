package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rolo/internal/book"
	"rolo/internal/logging"
)

// SaveContact writes a record through to the database, replacing any
// previous row for the same ID. The phone list is rewritten wholesale
// inside one transaction so a partially updated record is never visible.
func (s *Store) SaveContact(ctx context.Context, rec *book.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Saving contact: name=%s phones=%d", rec.Name, len(rec.Phones))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	birthday := ""
	if rec.HasBirthday() {
		birthday = rec.Birthday.Format(book.BirthdayLayout)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, birthday, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   email = excluded.email,
		   birthday = excluded.birthday,
		   updated_at = excluded.updated_at`,
		rec.ID, rec.Name, rec.Email, birthday, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contact %s: %w", rec.Name, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM phones WHERE contact_id = ?", rec.ID); err != nil {
		return fmt.Errorf("failed to clear phones for %s: %w", rec.Name, err)
	}
	for i, phone := range rec.Phones {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO phones (contact_id, phone, position) VALUES (?, ?, ?)",
			rec.ID, phone, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert phone for %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit contact %s: %w", rec.Name, err)
	}

	logging.Audit(logging.AuditContactUpdate, rec.Name, map[string]string{"id": rec.ID})
	return nil
}

// DeleteContact removes a record and its phones by name.
func (s *Store) DeleteContact(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Deleting contact: name=%s", name)

	res, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logging.StoreDebug("Delete matched no contact: name=%s", name)
	}

	logging.Audit(logging.AuditContactDelete, name, nil)
	return nil
}

// LoadContacts reads every record from the database, phones in their
// stored order.
func (s *Store) LoadContacts(ctx context.Context) ([]*book.Record, error) {
	timer := logging.StartTimer(logging.CategoryStore, "LoadContacts")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, birthday, created_at, updated_at FROM contacts ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var records []*book.Record
	byID := make(map[string]*book.Record)
	for rows.Next() {
		var rec book.Record
		var birthday string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &birthday, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		if birthday != "" {
			if t, err := time.Parse(book.BirthdayLayout, birthday); err == nil {
				rec.Birthday = t
			} else {
				logging.Get(logging.CategoryStore).Warn("Unparsable birthday %q for %s, dropping", birthday, rec.Name)
			}
		}
		records = append(records, &rec)
		byID[rec.ID] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	if err := s.loadPhones(ctx, byID); err != nil {
		return nil, err
	}

	logging.StoreDebug("Loaded %d contacts", len(records))
	return records, nil
}

func (s *Store) loadPhones(ctx context.Context, byID map[string]*book.Record) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT contact_id, phone FROM phones ORDER BY contact_id, position",
	)
	if err != nil {
		return fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contactID, phone string
		if err := rows.Scan(&contactID, &phone); err != nil {
			return fmt.Errorf("failed to scan phone: %w", err)
		}
		if rec, ok := byID[contactID]; ok {
			rec.Phones = append(rec.Phones, phone)
		}
	}
	return rows.Err()
}

// ContactCount returns the number of stored contacts.
func (s *Store) ContactCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return count, nil
}
