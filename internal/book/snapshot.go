package book

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is the current snapshot document version. Older
// versions are still readable; newer ones are rejected.
const SnapshotVersion = 1

// Snapshot is the portable JSON form of a book, used by the export and
// import commands and by the import watcher. It replaces the opaque
// binary dump the bot used to keep: snapshots are diffable and survive
// tool upgrades.
type Snapshot struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Contacts   []ContactSnapshot `json:"contacts"`
	Notes      []NoteSnapshot    `json:"notes,omitempty"`
}

// ContactSnapshot is one record in a snapshot.
type ContactSnapshot struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Phones   []string `json:"phones,omitempty"`
	Email    string   `json:"email,omitempty"`
	Birthday string   `json:"birthday,omitempty"` // DD.MM.YYYY
}

// NoteSnapshot is one note in a snapshot.
type NoteSnapshot struct {
	ID    string   `json:"id,omitempty"`
	Title string   `json:"title"`
	Body  string   `json:"body,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// TakeSnapshot captures the book's current contents.
func TakeSnapshot(b *Book) *Snapshot {
	snap := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
	}
	for _, rec := range b.Records() {
		cs := ContactSnapshot{
			ID:     rec.ID,
			Name:   rec.Name,
			Phones: append([]string(nil), rec.Phones...),
			Email:  rec.Email,
		}
		if rec.HasBirthday() {
			cs.Birthday = rec.Birthday.Format(BirthdayLayout)
		}
		snap.Contacts = append(snap.Contacts, cs)
	}
	for _, n := range b.Notes("") {
		snap.Notes = append(snap.Notes, NoteSnapshot{
			ID:    n.ID,
			Title: n.Title,
			Body:  n.Body,
			Tags:  append([]string(nil), n.Tags...),
		})
	}
	return snap
}

// Encode renders the snapshot as indented JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSnapshot parses a snapshot document and checks its version.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	return &snap, nil
}

// MergeResult reports what a snapshot merge changed. Changed holds every
// record and note the merge touched so the caller can write them through.
type MergeResult struct {
	ContactsAdded  int
	ContactsMerged int
	NotesAdded     int
	Changed        []*Record
	ChangedNotes   []*Note
}

// Merge folds a snapshot into the book. Matching is by name for contacts
// and by title for notes; existing entries gain missing phones, email,
// birthday and tags rather than being replaced, so importing the same
// snapshot twice is a no-op. Invalid phones and dates in the snapshot
// are skipped, never fatal.
func (b *Book) Merge(snap *Snapshot, now time.Time) MergeResult {
	var res MergeResult

	for _, cs := range snap.Contacts {
		rec := b.Find(cs.Name)
		fresh := false
		if rec == nil {
			var err error
			rec, err = NewRecord(cs.Name)
			if err != nil {
				continue
			}
			if cs.ID != "" {
				rec.ID = cs.ID
			}
			b.Add(rec)
			fresh = true
		}

		changed := fresh
		for _, phone := range cs.Phones {
			if rec.HasPhone(phone) {
				continue
			}
			if err := rec.AddPhone(phone); err == nil {
				changed = true
			}
		}
		if cs.Email != "" && rec.Email == "" {
			if err := rec.SetEmail(cs.Email); err == nil {
				changed = true
			}
		}
		if cs.Birthday != "" && !rec.HasBirthday() {
			if err := rec.SetBirthday(cs.Birthday, now); err == nil {
				changed = true
			}
		}

		if changed {
			res.Changed = append(res.Changed, rec)
			if fresh {
				res.ContactsAdded++
			} else {
				res.ContactsMerged++
			}
		}
	}

	for _, ns := range snap.Notes {
		if existing := b.FindNote(ns.Title); existing != nil {
			changed := false
			for _, tag := range ns.Tags {
				if !existing.HasTag(tag) {
					existing.AddTag(tag)
					changed = true
				}
			}
			if changed {
				res.ChangedNotes = append(res.ChangedNotes, existing)
			}
			continue
		}
		n, err := NewNote(ns.Title, ns.Body)
		if err != nil {
			continue
		}
		if ns.ID != "" {
			n.ID = ns.ID
		}
		for _, tag := range ns.Tags {
			n.AddTag(tag)
		}
		if err := b.AddNote(n); err == nil {
			res.NotesAdded++
			res.ChangedNotes = append(res.ChangedNotes, n)
		}
	}

	return res
}
