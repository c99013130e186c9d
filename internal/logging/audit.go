// Audit trail of mutating operations (contact and note changes, imports,
// sessions). Audit events are JSON lines, one per event, so they stay
// greppable and diffable.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Contact mutations
	AuditContactAdd    AuditEventType = "contact_add"
	AuditContactUpdate AuditEventType = "contact_update"
	AuditContactDelete AuditEventType = "contact_delete"

	// Note mutations
	AuditNoteAdd    AuditEventType = "note_add"
	AuditNoteUpdate AuditEventType = "note_update"
	AuditNoteDelete AuditEventType = "note_delete"

	// Snapshot operations
	AuditSnapshotExport AuditEventType = "snapshot_export"
	AuditSnapshotImport AuditEventType = "snapshot_import"

	// Session lifecycle
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"
)

// AuditEvent is one line in the audit trail.
type AuditEvent struct {
	Timestamp time.Time         `json:"ts"`
	Type      AuditEventType    `json:"type"`
	Subject   string            `json:"subject,omitempty"` // contact name, note title, path, session id
	Fields    map[string]string `json:"fields,omitempty"`
}

// AuditLogger appends events to a JSONL file.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
	path string
}

var (
	auditLogger *AuditLogger
	auditMu     sync.Mutex
)

// InitAudit opens the audit trail at <dir>/audit.jsonl. Like Initialize,
// it is a no-op when debug mode is disabled. Safe to call more than once.
func InitAudit(dir string) error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger != nil {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	path := filepath.Join(dir, "audit.jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	auditLogger = &AuditLogger{file: file, path: path}
	return nil
}

// Audit records an event. A no-op when the audit trail is not open.
func Audit(eventType AuditEventType, subject string, fields map[string]string) {
	auditMu.Lock()
	l := auditLogger
	auditMu.Unlock()
	if l == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Subject:   subject,
		Fields:    fields,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	_, _ = l.file.Write(append(data, '\n'))
}

// CloseAudit closes the audit trail.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditLogger == nil {
		return
	}
	auditLogger.mu.Lock()
	if auditLogger.file != nil {
		_ = auditLogger.file.Close()
		auditLogger.file = nil
	}
	auditLogger.mu.Unlock()
	auditLogger = nil
}
