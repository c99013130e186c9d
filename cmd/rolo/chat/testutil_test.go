package chat

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	prefscfg "rolo/cmd/rolo/config"
	"rolo/cmd/rolo/ui"
	"rolo/internal/command"
	appcfg "rolo/internal/config"
	"rolo/internal/store"
)

// newTestModel builds a booted model over a throwaway store, skipping
// the async boot sequence so tests drive Update directly.
func newTestModel(t *testing.T) Model {
	t.Helper()

	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "rolo.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := appcfg.DefaultConfig()
	cfg.Storage.ExportDir = filepath.Join(dir, "exports")

	b, err := store.LoadBook(context.Background(), s)
	if err != nil {
		t.Fatalf("LoadBook: %v", err)
	}
	it := command.New(b,
		command.WithStore(s),
		command.WithExportDir(cfg.Storage.ExportDir),
	)

	sessionID, err := s.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	m := New(Deps{
		Store:  s,
		Config: cfg,
		Prefs:  prefscfg.Prefs{Version: 1, Theme: "light", ShowTips: false},
	})
	m.styles = ui.NewStyles(ui.LightTheme())
	m.interpreter = it
	m.sessionID = sessionID
	m.isBooting = false
	m.ready = true
	m.width = 80
	m.height = 24
	m.shutdownOnce = &sync.Once{}
	return m
}

// drain executes a command tree and returns every message it produces,
// unwrapping batches.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, drain(t, sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// submitLine types a line and presses enter, then feeds the resulting
// response message back through Update. Returns the updated model.
func submitLine(t *testing.T, m Model, line string) (Model, []tea.Cmd) {
	t.Helper()

	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	var followups []tea.Cmd
	for _, msg := range drain(t, cmd) {
		if resp, ok := msg.(responseMsg); ok {
			var fcmd tea.Cmd
			next, fcmd = m.Update(resp)
			m = next.(Model)
			if fcmd != nil {
				followups = append(followups, fcmd)
			}
		}
	}
	return m, followups
}

func lastMessage(t *testing.T, m Model, role string) string {
	t.Helper()
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Role == role {
			return m.history[i].Content
		}
	}
	t.Fatalf("no %s message in history", role)
	return ""
}
