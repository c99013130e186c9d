package book

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a free-form text entry addressed by title, with optional
// lowercase tags for filtering.
type Note struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote creates a note. The title is required; the body may be empty.
func NewNote(title, body string) (*Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	now := time.Now().UTC()
	return &Note{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddTag attaches a tag, lowercased. Re-adding an existing tag is a no-op.
func (n *Note) AddTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || n.HasTag(tag) {
		return
	}
	n.Tags = append(n.Tags, tag)
	n.UpdatedAt = time.Now().UTC()
}

// HasTag reports whether the note carries the tag (case-insensitive).
func (n *Note) HasTag(tag string) bool {
	tag = strings.ToLower(tag)
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// String renders the note the way the `notes` listing shows it.
func (n *Note) String() string {
	var b strings.Builder
	b.WriteString(n.Title)
	if len(n.Tags) > 0 {
		b.WriteString(" [" + strings.Join(n.Tags, ", ") + "]")
	}
	if n.Body != "" {
		b.WriteString(": " + n.Body)
	}
	return b.String()
}
