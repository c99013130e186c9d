package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestUpdate_SubmitAppendsToTranscript(t *testing.T) {
	m := newTestModel(t)

	m, _ = submitLine(t, m, "hello")

	if got := lastMessage(t, m, RoleUser); got != "hello" {
		t.Errorf("user message = %q", got)
	}
	if got := lastMessage(t, m, RoleBot); got != "How can I help you?" {
		t.Errorf("bot message = %q", got)
	}
	if m.isLoading {
		t.Error("isLoading still true after response")
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
}

func TestUpdate_EmptySubmitIsIgnored(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if cmd != nil {
		t.Error("empty submit dispatched a command")
	}
	if len(m.history) != 0 {
		t.Errorf("history = %v, want empty", m.history)
	}
}

func TestUpdate_ExitQuits(t *testing.T) {
	m := newTestModel(t)

	m, followups := submitLine(t, m, "exit")

	if got := lastMessage(t, m, RoleBot); got != "Good bye!" {
		t.Errorf("farewell = %q", got)
	}
	if !m.quitting {
		t.Error("model not quitting after exit")
	}
	quit := false
	for _, cmd := range followups {
		for _, msg := range drain(t, cmd) {
			if _, ok := msg.(tea.QuitMsg); ok {
				quit = true
			}
		}
	}
	if !quit {
		t.Error("exit did not produce tea.Quit")
	}
}

func TestUpdate_MutationsPersist(t *testing.T) {
	m := newTestModel(t)

	m, _ = submitLine(t, m, "add Ada 1234567890")
	if got := lastMessage(t, m, RoleBot); got != "Contact added." {
		t.Fatalf("add = %q", got)
	}

	records, err := m.deps.Store.LoadContacts(context.Background())
	if err != nil {
		t.Fatalf("LoadContacts: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Ada" {
		t.Errorf("store contents = %v", records)
	}
}

func TestUpdate_TurnsAreRecorded(t *testing.T) {
	m := newTestModel(t)

	m, _ = submitLine(t, m, "hello")
	m, _ = submitLine(t, m, "all")

	turns, err := m.deps.Store.SessionTurns(context.Background(), m.sessionID)
	if err != nil {
		t.Fatalf("SessionTurns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("recorded %d turns, want 2", len(turns))
	}
	if turns[0].UserInput != "hello" || turns[1].UserInput != "all" {
		t.Errorf("turns = %+v", turns)
	}
}

func TestUpdate_InputHistoryRecall(t *testing.T) {
	m := newTestModel(t)

	m, _ = submitLine(t, m, "hello")
	m, _ = submitLine(t, m, "all")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if got := m.input.Value(); got != "all" {
		t.Errorf("first recall = %q, want all", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if got := m.input.Value(); got != "hello" {
		t.Errorf("second recall = %q, want hello", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if got := m.input.Value(); got != "" {
		t.Errorf("after stepping past the end = %q, want empty", got)
	}
}

func TestUpdate_BootDone(t *testing.T) {
	m := newTestModel(t)
	m.isBooting = true
	m.history = nil

	next, _ := m.Update(bootDoneMsg{interpreter: m.interpreter, sessionID: m.sessionID})
	m = next.(Model)

	if m.isBooting {
		t.Error("still booting after bootDoneMsg")
	}
	if got := lastMessage(t, m, RoleBot); !strings.Contains(got, "Welcome to the assistant bot!") {
		t.Errorf("welcome = %q", got)
	}
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)

	if !m.quitting {
		t.Error("model not quitting after ctrl+c")
	}
	msgs := drain(t, cmd)
	if len(msgs) != 1 {
		t.Fatalf("msgs = %v", msgs)
	}
	if _, ok := msgs[0].(tea.QuitMsg); !ok {
		t.Errorf("msg = %T, want tea.QuitMsg", msgs[0])
	}
}

func TestView_ContainsTranscript(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	m, _ = submitLine(t, m, "hello")

	view := m.View()
	if !strings.Contains(view, "rolo") {
		t.Error("view missing header")
	}
	if !strings.Contains(m.renderHistory(), "How can I help you?") {
		t.Error("transcript missing response")
	}
}

func TestSafeRenderMarkdown_NilRendererFallsBack(t *testing.T) {
	m := newTestModel(t)
	m.renderer = nil

	if got := m.safeRenderMarkdown("plain text"); got != "plain text" {
		t.Errorf("fallback = %q", got)
	}
}

func TestWelcomeBanner(t *testing.T) {
	for contacts, want := range map[int]string{
		0: "The book is empty",
		1: "1 contact loaded.",
		5: "5 contacts loaded.",
	} {
		if got := welcomeBanner(contacts); !strings.Contains(got, want) {
			t.Errorf("welcomeBanner(%d) = %q, want substring %q", contacts, got, want)
		}
	}
}

func TestTipGenerator_DisabledReturnsNothing(t *testing.T) {
	g := NewTipGenerator(false)
	for i := 0; i < 100; i++ {
		if tip := g.Next(); tip != "" {
			t.Fatalf("disabled generator produced %q", tip)
		}
	}
}

func TestUpdate_BrowseViewToggle(t *testing.T) {
	m := newTestModel(t)
	m, _ = submitLine(t, m, "add Alice 1112223334")

	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = sized.(Model)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = next.(Model)
	if m.viewMode != BrowseView {
		t.Fatalf("viewMode = %v after ctrl+b, want BrowseView", m.viewMode)
	}
	if !strings.Contains(m.View(), "Alice") {
		t.Error("browse view does not show the contact")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.viewMode != ChatView {
		t.Errorf("viewMode = %v after esc, want ChatView", m.viewMode)
	}
}

func TestUpdate_BrowseViewQuits(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	if !m.quitting {
		t.Fatal("q in browse view did not quit")
	}
	quit := false
	for _, msg := range drain(t, cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Error("no tea.QuitMsg after q in browse view")
	}
}

func TestView_BootScreenShowsLogo(t *testing.T) {
	m := newTestModel(t)
	m.isBooting = true

	if got := m.View(); !strings.Contains(got, `\___/`) {
		t.Errorf("boot screen missing the logo:\n%s", got)
	}
}
