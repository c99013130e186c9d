package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"rolo/internal/book"
	"rolo/internal/logging"
	"rolo/internal/store"
)

// Response strings the interpreter answers with. These are user-facing
// contract text; tests assert on them verbatim.
const (
	respGreeting       = "How can I help you?"
	respInvalid        = "Invalid command."
	respMissingArgs    = "Enter the argument for the command."
	respContactAdded   = "Contact added."
	respContactUpdate  = "Contact update."
	respContactChanged = "Contact changed."
	respPhoneRemoved   = "Phone remove."
	respContactDeleted = "Contact delete."
	respBirthdayAdded  = "Birthday added."
	respBirthdayUpdate = "Birthday update."
	respNotFound       = "Contact not found."
	respPhoneNotFound  = "Phone not on the list."
	respInvalidPhone   = "The phone must have 10 numbers."
	respInvalidDate    = "Invalid date format. Use DD.MM.YYYY."
	respFutureDate     = "Incorrect date."
	respInvalidEmail   = "Invalid email address."
	respBirthdayUnset  = "Birthday not set."
	respNoteAdded      = "Note added."
	respNoteUpdate     = "Note update."
	respNoteRemoved    = "Note removed."
	respNoteDuplicate  = "Note title already taken."
	respGoodbye        = "Good bye!"
)

// errBadArguments marks handler-level argument failures, such as a
// non-numeric day count. The registry's MinArgs check catches the rest.
var errBadArguments = errors.New("bad arguments")

// Persister is the store surface the interpreter writes through to.
// A nil Persister runs the interpreter purely in memory.
type Persister interface {
	SaveContact(ctx context.Context, rec *book.Record) error
	DeleteContact(ctx context.Context, name string) error
	SaveNote(ctx context.Context, n *book.Note) error
	DeleteNote(ctx context.Context, title string) error
	ListSessions(ctx context.Context, limit int) ([]store.SessionInfo, error)
}

// Interpreter owns the book and executes vocabulary commands against it.
// All access is serialized through its mutex, so the import watcher and
// the session loop can share one instance.
type Interpreter struct {
	mu        sync.Mutex
	book      *book.Book
	store     Persister
	now       func() time.Time
	horizon   int
	exportDir string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStore attaches the write-through store.
func WithStore(p Persister) Option {
	return func(it *Interpreter) { it.store = p }
}

// WithClock overrides the time source, for tests and deterministic output.
func WithClock(now func() time.Time) Option {
	return func(it *Interpreter) { it.now = now }
}

// WithHorizon sets the default birthdays lookahead in days.
func WithHorizon(days int) Option {
	return func(it *Interpreter) {
		if days > 0 {
			it.horizon = days
		}
	}
}

// WithExportDir sets where the export command writes snapshots when the
// user gives no path.
func WithExportDir(dir string) Option {
	return func(it *Interpreter) { it.exportDir = dir }
}

// New builds an interpreter over the given book.
func New(b *book.Book, opts ...Option) *Interpreter {
	it := &Interpreter{
		book:    b,
		now:     time.Now,
		horizon: book.DefaultBirthdayHorizon,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Result is the outcome of one executed line.
type Result struct {
	Text string
	Quit bool
}

// Execute runs one input line through the vocabulary. Domain failures
// become response text; only infrastructure errors (store writes, file
// IO) are returned as errors.
func (it *Interpreter) Execute(ctx context.Context, line string) (Result, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{Text: respInvalid}, nil
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	desc, ok := Lookup(verb)
	if !ok {
		logging.CommandDebug("Unknown verb: %q", verb)
		return Result{Text: respInvalid}, nil
	}
	if len(args) < desc.MinArgs {
		return Result{Text: respMissingArgs}, nil
	}

	timer := logging.StartTimer(logging.CategoryCommand, desc.Name)
	text, err := desc.Handler(ctx, it, args)
	timer.StopWithThreshold(100 * time.Millisecond)

	if err != nil {
		if msg, ok := userMessage(err); ok {
			logging.CommandDebug("Command %s rejected: %v", desc.Name, err)
			return Result{Text: msg}, nil
		}
		return Result{}, fmt.Errorf("command %s: %w", desc.Name, err)
	}

	logging.CommandDebug("Command %s ok", desc.Name)
	return Result{Text: text, Quit: desc.Terminal}, nil
}

// ImportSnapshot merges an encoded snapshot into the book and persists
// every touched record and note. The import watcher calls this directly;
// the import command goes through the same path.
func (it *Interpreter) ImportSnapshot(ctx context.Context, data []byte) (book.MergeResult, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.importLocked(ctx, data)
}

func (it *Interpreter) importLocked(ctx context.Context, data []byte) (book.MergeResult, error) {
	snap, err := book.DecodeSnapshot(data)
	if err != nil {
		return book.MergeResult{}, err
	}

	res := it.book.Merge(snap, it.now())
	for _, rec := range res.Changed {
		if err := it.saveContact(ctx, rec); err != nil {
			return res, err
		}
	}
	for _, n := range res.ChangedNotes {
		if err := it.saveNote(ctx, n); err != nil {
			return res, err
		}
	}

	logging.Audit(logging.AuditSnapshotImport, "", map[string]string{
		"contacts_added":  fmt.Sprintf("%d", res.ContactsAdded),
		"contacts_merged": fmt.Sprintf("%d", res.ContactsMerged),
		"notes_added":     fmt.Sprintf("%d", res.NotesAdded),
	})
	return res, nil
}

// Book exposes the underlying book for read-only rendering. Callers must
// not mutate through it.
func (it *Interpreter) Book() *book.Book { return it.book }

func (it *Interpreter) saveContact(ctx context.Context, rec *book.Record) error {
	if it.store == nil {
		return nil
	}
	return it.store.SaveContact(ctx, rec)
}

func (it *Interpreter) saveNote(ctx context.Context, n *book.Note) error {
	if it.store == nil {
		return nil
	}
	return it.store.SaveNote(ctx, n)
}

// userMessage maps domain errors to the loop's response strings.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, book.ErrNotFound), errors.Is(err, book.ErrNoteNotFound):
		return respNotFound, true
	case errors.Is(err, book.ErrPhoneNotFound):
		return respPhoneNotFound, true
	case errors.Is(err, book.ErrInvalidPhone):
		return respInvalidPhone, true
	case errors.Is(err, book.ErrInvalidDate):
		return respInvalidDate, true
	case errors.Is(err, book.ErrFutureDate):
		return respFutureDate, true
	case errors.Is(err, book.ErrInvalidEmail):
		return respInvalidEmail, true
	case errors.Is(err, book.ErrDuplicateNote):
		return respNoteDuplicate, true
	case errors.Is(err, book.ErrEmptyName), errors.Is(err, book.ErrEmptyTitle), errors.Is(err, errBadArguments):
		return respMissingArgs, true
	}
	return "", false
}
