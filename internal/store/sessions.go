package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rolo/internal/logging"
)

// SessionInfo summarizes one stored session.
type SessionInfo struct {
	ID        string
	StartedAt time.Time
	Turns     int
}

// Turn is one user input and the response it produced.
type Turn struct {
	Number    int
	UserInput string
	Response  string
	CreatedAt time.Time
}

// StartSession records a new session and returns its ID.
func (s *Store) StartSession(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, started_at) VALUES (?, ?)",
		id, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}

	logging.Session("Session started: %s", id)
	logging.Audit(logging.AuditSessionStart, id, nil)
	return id, nil
}

// RecordTurn appends one input/response pair to a session.
func (s *Store) RecordTurn(ctx context.Context, sessionID string, turnNumber int, userInput, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_turns (session_id, turn_number, user_input, response, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, turnNumber, userInput, response, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record turn %d: %w", turnNumber, err)
	}

	logging.SessionDebug("Recorded turn %d for session %s", turnNumber, sessionID)
	return nil
}

// ListSessions returns stored sessions, most recent first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.started_at, COUNT(t.id)
		 FROM sessions s
		 LEFT JOIN session_turns t ON t.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.started_at DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.StartedAt, &info.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// SessionTurns returns every turn of one session in order.
func (s *Store) SessionTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_number, user_input, response, created_at
		 FROM session_turns
		 WHERE session_id = ?
		 ORDER BY turn_number`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Number, &t.UserInput, &t.Response, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// EndSession logs session end. Sessions have no terminal state in the
// schema; the audit trail carries the event.
func (s *Store) EndSession(sessionID string, turns int) {
	logging.Session("Session ended: %s after %d turns", sessionID, turns)
	logging.Audit(logging.AuditSessionEnd, sessionID, map[string]string{
		"turns": fmt.Sprintf("%d", turns),
	})
}
