package ui

import (
	"fmt"
	"strings"

	"rolo/internal/book"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// BrowsePageModel is the full-screen contact browser: a filterable list
// on the left, the selected record's details on the right.
type BrowsePageModel struct {
	width    int
	height   int
	list     list.Model
	viewport viewport.Model

	selected *book.Record
	styles   Styles
}

// contactItem adapts book.Record to list.Item.
type contactItem struct {
	rec *book.Record
}

func (i contactItem) Title() string { return i.rec.Name }
func (i contactItem) Description() string {
	parts := []string{}
	if len(i.rec.Phones) > 0 {
		parts = append(parts, strings.Join(i.rec.Phones, "; "))
	}
	if i.rec.HasBirthday() {
		parts = append(parts, book.FormatBirthday(i.rec.Birthday))
	}
	if len(parts) == 0 {
		return "no phones"
	}
	return strings.Join(parts, "  ")
}
func (i contactItem) FilterValue() string {
	return i.rec.Name + " " + strings.Join(i.rec.Phones, " ") + " " + i.rec.Email
}

// NewBrowsePageModel creates an empty contact browser.
func NewBrowsePageModel(s Styles) BrowsePageModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Contacts"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title

	vp := viewport.New(0, 0)
	vp.SetContent("Select a contact.")

	return BrowsePageModel{
		list:     l,
		viewport: vp,
		styles:   s,
	}
}

// SetRecords replaces the list contents. The current selection is kept
// when the record still exists.
func (m *BrowsePageModel) SetRecords(records []*book.Record) {
	items := make([]list.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, contactItem{rec: rec})
	}
	m.list.SetItems(items)
	m.syncDetail()
}

// Update handles messages while the browser is the active view.
func (m BrowsePageModel) Update(msg tea.Msg) (BrowsePageModel, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.syncDetail()

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Filtering reports whether the list filter input is capturing keys, so
// the host model knows not to steal q or esc.
func (m BrowsePageModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// View renders the split list/detail layout.
func (m BrowsePageModel) View() string {
	if len(m.list.Items()) == 0 {
		return m.styles.Content.Render("No contacts yet. Press esc to go back and use `add`.")
	}

	listW := m.width / 2
	if listW < 24 {
		return m.list.View()
	}
	left := m.list.View()
	right := m.viewport.View()

	var b strings.Builder
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")
	rows := len(leftLines)
	if len(rightLines) > rows {
		rows = len(rightLines)
	}
	for i := 0; i < rows; i++ {
		var l, r string
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		b.WriteString(fmt.Sprintf("%-*s %s\n", listW, l, r))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// SetSize splits the available space between list and detail pane.
func (m *BrowsePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	listW := w / 2
	m.list.SetSize(listW, h)
	m.viewport.Width = w - listW - 1
	m.viewport.Height = h
	m.syncDetail()
}

// syncDetail mirrors the list selection into the detail pane.
func (m *BrowsePageModel) syncDetail() {
	item, ok := m.list.SelectedItem().(contactItem)
	if !ok {
		m.selected = nil
		m.viewport.SetContent("Select a contact.")
		return
	}
	m.selected = item.rec
	m.viewport.SetContent(m.renderDetail(item.rec))
}

func (m *BrowsePageModel) renderDetail(rec *book.Record) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(rec.Name))
	b.WriteString("\n\n")

	if len(rec.Phones) > 0 {
		b.WriteString(m.styles.Bold.Render("Phones"))
		b.WriteString("\n")
		for _, p := range rec.Phones {
			b.WriteString("  " + p + "\n")
		}
	} else {
		b.WriteString(m.styles.Muted.Render("No phones") + "\n")
	}

	if rec.Email != "" {
		b.WriteString("\n" + m.styles.Bold.Render("Email") + "\n  " + rec.Email + "\n")
	}
	if rec.HasBirthday() {
		b.WriteString("\n" + m.styles.Bold.Render("Birthday") + "\n  " + book.FormatBirthday(rec.Birthday) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
