package ui

import (
	"strings"
	"testing"

	"rolo/internal/book"

	tea "github.com/charmbracelet/bubbletea"
)

func newBrowseRecord(t *testing.T, name string) *book.Record {
	t.Helper()
	rec, err := book.NewRecord(name)
	if err != nil {
		t.Fatalf("NewRecord(%q): %v", name, err)
	}
	return rec
}

func TestBrowsePage_Empty(t *testing.T) {
	t.Parallel()

	m := NewBrowsePageModel(NewStyles(LightTheme()))
	m.SetSize(80, 24)

	if !strings.Contains(m.View(), "No contacts yet.") {
		t.Errorf("empty browse view = %q", m.View())
	}
}

func TestBrowsePage_ShowsSelectedDetail(t *testing.T) {
	t.Parallel()

	rec := newBrowseRecord(t, "Alice")
	if err := rec.AddPhone("1112223334"); err != nil {
		t.Fatalf("AddPhone: %v", err)
	}
	if err := rec.SetEmail("alice@example.com"); err != nil {
		t.Fatalf("SetEmail: %v", err)
	}

	m := NewBrowsePageModel(NewStyles(LightTheme()))
	m.SetSize(80, 24)
	m.SetRecords([]*book.Record{rec, newBrowseRecord(t, "Bob")})

	view := m.View()
	if !strings.Contains(view, "Alice") || !strings.Contains(view, "Bob") {
		t.Errorf("list missing contacts:\n%s", view)
	}
	if !strings.Contains(view, "1112223334") {
		t.Errorf("detail pane missing selected phone:\n%s", view)
	}
	if !strings.Contains(view, "alice@example.com") {
		t.Errorf("detail pane missing email:\n%s", view)
	}
}

func TestBrowsePage_SelectionFollowsKeys(t *testing.T) {
	t.Parallel()

	m := NewBrowsePageModel(NewStyles(LightTheme()))
	m.SetSize(80, 24)
	m.SetRecords([]*book.Record{newBrowseRecord(t, "Alice"), newBrowseRecord(t, "Bob")})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected == nil || m.selected.Name != "Bob" {
		t.Errorf("selected = %+v after down, want Bob", m.selected)
	}
}
