package chat

import (
	"fmt"
	"strings"
	"time"

	"rolo/cmd/rolo/ui"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.history {
		switch msg.Role {
		case RoleUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n")

		case RoleError:
			sb.WriteString(m.styles.ErrorMessage.Render(msg.Content))
			sb.WriteString("\n")

		case RoleTip:
			sb.WriteString(m.styles.Muted.Render("tip: " + msg.Content))
			sb.WriteString("\n")

		default: // RoleBot
			botStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(botStyle.Render("rolo") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery. A rendering
// bug must never kill the session.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(rendered, "\n") + "\n"
		}
	}
	return content
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.isBooting {
		return m.renderBootScreen()
	}
	if m.viewMode == BrowseView {
		hint := m.styles.Muted.Render("enter/arrows: select | /: filter | esc: back | q: quit")
		return lipgloss.JoinVertical(lipgloss.Left, m.browse.View(), hint)
	}

	header := m.renderHeader()
	transcript := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.input.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		transcript,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" rolo ")
	version := m.styles.Badge.Render("assistant bot")

	var status string
	if m.isLoading {
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Muted.Render("Working..."))
	} else {
		status = m.styles.Success.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	contacts := 0
	notes := 0
	if m.interpreter != nil {
		contacts = m.interpreter.Book().Len()
		notes = m.interpreter.Book().NoteCount()
	}

	session := ""
	if len(m.sessionID) >= 8 {
		session = " | session " + m.sessionID[:8]
	}

	watcher := ""
	if m.importer != nil && m.importer.IsWatching() {
		stats := m.importer.GetStats()
		watcher = fmt.Sprintf(" | watch: %d imported", stats.Imports)
	}

	help := m.styles.Muted.Render(fmt.Sprintf(
		"%d contacts, %d notes%s%s | %s | up/down: history | ctrl+b: browse | help | exit",
		contacts, notes, session, watcher, time.Now().Format("15:04")))
	return lipgloss.NewStyle().MarginTop(1).Render(help)
}

func (m Model) renderBootScreen() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		ui.Logo(m.styles),
		"\n",
		m.spinner.View(),
		"\n",
		m.styles.Badge.Render("Opening the book"),
		m.styles.Muted.Render("Loading contacts and notes..."),
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}
