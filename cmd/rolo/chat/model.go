package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rolo/cmd/rolo/ui"
	"rolo/internal/command"
	"rolo/internal/logging"
	"rolo/internal/store"
	"rolo/internal/watch"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// New builds the session model. The heavy lifting (loading the book,
// starting the watcher, opening the session) happens in Init's boot
// command so the UI appears immediately.
func New(deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "Enter a command (help for the list)"
	input.Prompt = "> "
	input.CharLimit = 512
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	theme := themeFromPrefs(deps.Prefs.Theme)
	styles := ui.NewStyles(theme)
	sp.Style = styles.Spinner
	input.PromptStyle = styles.Prompt

	return Model{
		input:        input,
		viewport:     viewport.New(80, 20),
		spinner:      sp,
		styles:       styles,
		browse:       ui.NewBrowsePageModel(styles),
		isBooting:    true,
		historyIdx:   0,
		deps:         deps,
		ctx:          context.Background(),
		tips:         NewTipGenerator(deps.Prefs.ShowTips),
		shutdownOnce: &sync.Once{},
	}
}

// Init starts the spinner and kicks off the boot sequence.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, bootCmd(m.deps))
}

// bootCmd loads the book from the store, wires the interpreter and the
// import watcher, and opens a session row.
func bootCmd(deps Deps) tea.Cmd {
	return func() tea.Msg {
		timer := logging.StartTimer(logging.CategoryBoot, "session boot")
		defer timer.Stop()

		ctx := context.Background()
		b, err := store.LoadBook(ctx, deps.Store)
		if err != nil {
			return bootDoneMsg{err: fmt.Errorf("failed to load book: %w", err)}
		}

		horizon := deps.Config.Book.BirthdayHorizonDays
		if deps.Prefs.BirthdayHorizon > 0 {
			horizon = deps.Prefs.BirthdayHorizon
		}
		it := command.New(b,
			command.WithStore(deps.Store),
			command.WithHorizon(horizon),
			command.WithExportDir(deps.Config.Storage.ExportDir),
		)

		var importer *watch.Importer
		if deps.Config.Watch.Enabled {
			importer, err = watch.New(deps.Config.Storage.ImportDir, it, deps.Config.GetWatchDebounce())
			if err != nil {
				logging.Get(logging.CategoryWatch).Warn("Import watcher unavailable: %v", err)
			} else {
				if err := importer.TriggerImport(ctx); err != nil {
					logging.Get(logging.CategoryWatch).Warn("Startup import sweep failed: %v", err)
				}
				if err := importer.Start(ctx); err != nil {
					logging.Get(logging.CategoryWatch).Warn("Import watcher failed to start: %v", err)
				}
			}
		}

		sessionID, err := deps.Store.StartSession(ctx)
		if err != nil {
			logging.Get(logging.CategorySession).Warn("Session row not created: %v", err)
		}

		return bootDoneMsg{interpreter: it, importer: importer, sessionID: sessionID}
	}
}

// Update is the bubbletea message loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.browse.SetSize(msg.Width, msg.Height-2)
		m.rebuildRenderer()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if m.viewMode == BrowseView {
			return m.handleBrowseKey(msg)
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.isBooting && !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootDoneMsg:
		m.isBooting = false
		if msg.err != nil {
			m.err = msg.err
			m.appendMessage(RoleError, msg.err.Error())
			m.refreshViewport()
			return m, nil
		}
		m.interpreter = msg.interpreter
		m.importer = msg.importer
		m.sessionID = msg.sessionID
		m.appendMessage(RoleBot, welcomeBanner(m.interpreter.Book().Len()))
		m.refreshViewport()
		return m, nil

	case responseMsg:
		return m.handleResponse(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.shutdown()
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlB:
		if m.interpreter == nil {
			return m, nil
		}
		m.browse.SetRecords(m.interpreter.Book().Records())
		m.viewMode = BrowseView
		return m, nil

	case tea.KeyEnter:
		if m.isBooting || m.isLoading || m.interpreter == nil {
			return m, nil
		}
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return m, nil
		}
		return m.submit(line)

	case tea.KeyUp:
		if len(m.inputHistory) > 0 && m.historyIdx > 0 {
			m.historyIdx--
			m.input.SetValue(m.inputHistory[m.historyIdx])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIdx < len(m.inputHistory) {
			m.historyIdx++
			if m.historyIdx == len(m.inputHistory) {
				m.input.SetValue("")
			} else {
				m.input.SetValue(m.inputHistory[m.historyIdx])
				m.input.CursorEnd()
			}
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleBrowseKey routes keys while the contact browser is active.
// Esc returns to the chat; q quits the whole session. Both stay with the
// list while its filter input is capturing.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.browse.Filtering() {
		switch msg.String() {
		case "esc":
			m.viewMode = ChatView
			return m, nil
		case "q":
			m.shutdown()
			m.quitting = true
			return m, tea.Quit
		}
	}
	if msg.Type == tea.KeyCtrlC {
		m.shutdown()
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.browse, cmd = m.browse.Update(msg)
	return m, cmd
}

// submit dispatches one input line to the interpreter in a tea.Cmd so
// the UI stays responsive.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	m.appendMessage(RoleUser, line)
	m.inputHistory = append(m.inputHistory, line)
	m.historyIdx = len(m.inputHistory)
	m.input.SetValue("")
	m.isLoading = true
	m.refreshViewport()

	it := m.interpreter
	ctx := m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := it.Execute(ctx, line)
		return responseMsg{input: line, res: res, err: err}
	})
}

func (m Model) handleResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	m.isLoading = false

	if msg.err != nil {
		logging.Get(logging.CategorySession).Error("Command failed: %v", msg.err)
		m.appendMessage(RoleError, "Something went wrong: "+msg.err.Error())
		m.refreshViewport()
		return m, nil
	}

	m.appendMessage(RoleBot, msg.res.Text)
	m.turnCount++
	m.recordTurn(msg.input, msg.res.Text)

	if tip := m.tips.Next(); tip != "" {
		m.appendMessage(RoleTip, tip)
	}
	m.refreshViewport()

	if msg.res.Quit {
		m.shutdown()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) recordTurn(input, response string) {
	if m.sessionID == "" {
		return
	}
	if err := m.deps.Store.RecordTurn(m.ctx, m.sessionID, m.turnCount, input, response); err != nil {
		logging.Get(logging.CategorySession).Warn("Turn not recorded: %v", err)
	}
}

// shutdown stops the watcher and closes the session exactly once. The
// store itself is closed by the caller after the program exits.
func (m *Model) shutdown() {
	m.shutdownOnce.Do(func() {
		if m.importer != nil {
			m.importer.Stop()
		}
		if m.sessionID != "" {
			m.deps.Store.EndSession(m.sessionID, m.turnCount)
		}
	})
}

func (m *Model) appendMessage(role, content string) {
	m.history = append(m.history, Message{Role: role, Content: content})
}

func (m *Model) layout() {
	headerHeight := 4
	inputHeight := 3
	footerHeight := 2
	vpHeight := m.height - headerHeight - inputHeight - footerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport = viewport.New(m.width-4, vpHeight)
	m.input.Width = m.width - 8
}

// rebuildRenderer sizes the markdown renderer to the terminal. A nil
// renderer degrades to plain text in safeRenderMarkdown.
func (m *Model) rebuildRenderer() {
	wrap := m.width - 6
	if wrap < 20 {
		wrap = 20
	}
	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		logging.Get(logging.CategorySession).Warn("Markdown renderer unavailable: %v", err)
		return
	}
	m.renderer = renderer
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func themeFromPrefs(name string) ui.Theme {
	switch name {
	case "light":
		return ui.LightTheme()
	case "dark":
		return ui.DarkTheme()
	default:
		return ui.DetectTheme()
	}
}
