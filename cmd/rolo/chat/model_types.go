// Package chat provides the interactive terminal session for rolo: a
// bubbletea program hosting the read-eval-respond loop over the command
// interpreter.
package chat

import (
	"context"
	"sync"

	prefscfg "rolo/cmd/rolo/config"
	"rolo/cmd/rolo/ui"
	"rolo/internal/command"
	appcfg "rolo/internal/config"
	"rolo/internal/store"
	"rolo/internal/watch"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// Message roles in the transcript.
const (
	RoleUser  = "user"
	RoleBot   = "bot"
	RoleError = "error"
	RoleTip   = "tip"
)

// Message is one transcript entry.
type Message struct {
	Role    string
	Content string
}

// ViewMode selects which component owns the screen and the keyboard.
type ViewMode int

const (
	ChatView ViewMode = iota
	BrowseView
)

// Deps carries everything the session needs from the command layer.
type Deps struct {
	Store   *store.Store
	Config  *appcfg.Config
	Prefs   prefscfg.Prefs
	DataDir string
}

// bootDoneMsg carries the result of the boot sequence: the loaded book
// wrapped in an interpreter, the import watcher, and the session ID.
type bootDoneMsg struct {
	interpreter *command.Interpreter
	importer    *watch.Importer
	sessionID   string
	err         error
}

// responseMsg is the outcome of one executed input line.
type responseMsg struct {
	input string
	res   command.Result
	err   error
}

// Model is the bubbletea model for the interactive session.
type Model struct {
	// UI components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// State
	viewMode  ViewMode
	browse    ui.BrowsePageModel
	history   []Message
	isBooting bool
	isLoading bool
	quitting  bool
	ready     bool
	width     int
	height    int
	err       error

	// Input recall
	inputHistory []string
	historyIdx   int // len(inputHistory) means "past the end", editing fresh input

	// Backend
	deps        Deps
	ctx         context.Context
	interpreter *command.Interpreter
	importer    *watch.Importer
	sessionID   string
	turnCount   int
	tips        *TipGenerator

	shutdownOnce *sync.Once
}
