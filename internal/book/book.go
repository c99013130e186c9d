// Package book implements the address book domain model: contact records
// with validated phones, emails and birthdays, plus free-form tagged notes.
// The book itself is a plain in-memory structure; persistence and command
// dispatch live in internal/store and internal/command.
package book

import (
	"sort"
	"strings"
)

// Book holds all contact records and notes. Records are keyed by exact
// name (the user-facing key, original semantics); notes by lowercased
// title. A Book is not safe for concurrent use; callers serialize access.
type Book struct {
	records map[string]*Record
	notes   map[string]*Note
}

// New returns an empty book.
func New() *Book {
	return &Book{
		records: make(map[string]*Record),
		notes:   make(map[string]*Note),
	}
}

// Add inserts or replaces a record under its name.
func (b *Book) Add(rec *Record) {
	b.records[rec.Name] = rec
}

// Find returns the record for an exact name, or nil.
func (b *Book) Find(name string) *Record {
	return b.records[name]
}

// Delete removes a record by exact name.
func (b *Book) Delete(name string) error {
	if _, ok := b.records[name]; !ok {
		return ErrNotFound
	}
	delete(b.records, name)
	return nil
}

// Len reports the number of contact records.
func (b *Book) Len() int { return len(b.records) }

// Records returns every record sorted by name.
func (b *Book) Records() []*Record {
	out := make([]*Record, 0, len(b.records))
	for _, rec := range b.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search returns records whose name, phone or email contains the needle,
// case-insensitively, sorted by name.
func (b *Book) Search(needle string) []*Record {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}

	var out []*Record
	for _, rec := range b.records {
		if rec.matches(needle) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Record) matches(needle string) bool {
	if strings.Contains(strings.ToLower(r.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Email), needle) {
		return true
	}
	for _, p := range r.Phones {
		if strings.Contains(p, needle) {
			return true
		}
	}
	return false
}

// AddNote inserts a note. Titles are unique case-insensitively.
func (b *Book) AddNote(n *Note) error {
	key := strings.ToLower(n.Title)
	if _, ok := b.notes[key]; ok {
		return ErrDuplicateNote
	}
	b.notes[key] = n
	return nil
}

// FindNote returns the note for a title (case-insensitive), or nil.
func (b *Book) FindNote(title string) *Note {
	return b.notes[strings.ToLower(title)]
}

// DeleteNote removes a note by title.
func (b *Book) DeleteNote(title string) error {
	key := strings.ToLower(title)
	if _, ok := b.notes[key]; !ok {
		return ErrNoteNotFound
	}
	delete(b.notes, key)
	return nil
}

// NoteCount reports the number of notes.
func (b *Book) NoteCount() int { return len(b.notes) }

// Notes returns notes sorted by title. When tag is non-empty only notes
// carrying that tag are returned.
func (b *Book) Notes(tag string) []*Note {
	var out []*Note
	for _, n := range b.notes {
		if tag != "" && !n.HasTag(tag) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}
