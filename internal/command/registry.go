// Package command implements the read-eval-respond vocabulary: a registry
// of command descriptors and an interpreter that resolves one input line
// to a handler and returns the response text. The interactive session and
// the one-shot subcommands both drive this package.
package command

import (
	"context"
	"strings"
)

// Category groups commands in the help listing.
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryContacts Category = "contacts"
	CategoryNotes    Category = "notes"
	CategoryData     Category = "data"
)

// Handler executes one command. Domain failures come back as errors the
// interpreter maps to response strings; only infrastructure failures
// escape Execute.
type Handler func(ctx context.Context, it *Interpreter, args []string) (string, error)

// Descriptor describes one vocabulary entry.
type Descriptor struct {
	Name     string
	Aliases  []string
	Args     string // usage fragment, e.g. "<name> <phone>"
	MinArgs  int
	Category Category
	Help     string
	Terminal bool // command ends the session
	Mutating bool
	Handler  Handler
}

// Usage renders the invocation line for help output.
func (d Descriptor) Usage() string {
	if d.Args == "" {
		return d.Name
	}
	return d.Name + " " + d.Args
}

// commands is the fixed vocabulary, in help-listing order.
var commands = []Descriptor{
	{
		Name:     "hello",
		Category: CategoryGeneral,
		Help:     "Greet the assistant.",
		Handler:  cmdHello,
	},
	{
		Name:     "add",
		Args:     "<name> [phone]",
		MinArgs:  1,
		Category: CategoryContacts,
		Help:     "Add a contact, or append a phone to an existing one.",
		Mutating: true,
		Handler:  cmdAdd,
	},
	{
		Name:     "change",
		Args:     "<name> <old-phone> <new-phone>",
		MinArgs:  3,
		Category: CategoryContacts,
		Help:     "Replace one of a contact's phone numbers.",
		Mutating: true,
		Handler:  cmdChange,
	},
	{
		Name:     "phone",
		Args:     "<name>",
		MinArgs:  1,
		Category: CategoryContacts,
		Help:     "Show a contact's phone numbers.",
		Handler:  cmdPhone,
	},
	{
		Name:     "remove-phone",
		Args:     "<name> <phone>",
		MinArgs:  2,
		Category: CategoryContacts,
		Help:     "Delete one phone number from a contact.",
		Mutating: true,
		Handler:  cmdRemovePhone,
	},
	{
		Name:     "all",
		Category: CategoryContacts,
		Help:     "List every contact.",
		Handler:  cmdAll,
	},
	{
		Name:     "add-birthday",
		Args:     "<name> <DD.MM.YYYY>",
		MinArgs:  2,
		Category: CategoryContacts,
		Help:     "Set a contact's birthday.",
		Mutating: true,
		Handler:  cmdAddBirthday,
	},
	{
		Name:     "show-birthday",
		Args:     "<name>",
		MinArgs:  1,
		Category: CategoryContacts,
		Help:     "Show a contact's stored birthday.",
		Handler:  cmdShowBirthday,
	},
	{
		Name:     "birthdays",
		Args:     "[days]",
		Category: CategoryContacts,
		Help:     "List upcoming congratulation dates.",
		Handler:  cmdBirthdays,
	},
	{
		Name:     "delete",
		Args:     "<name>",
		MinArgs:  1,
		Category: CategoryContacts,
		Help:     "Remove a contact entirely.",
		Mutating: true,
		Handler:  cmdDelete,
	},
	{
		Name:     "email",
		Args:     "<name> <address>",
		MinArgs:  2,
		Category: CategoryContacts,
		Help:     "Set a contact's email address.",
		Mutating: true,
		Handler:  cmdEmail,
	},
	{
		Name:     "find",
		Args:     "<text>",
		MinArgs:  1,
		Category: CategoryContacts,
		Help:     "Search contacts by name, phone or email.",
		Handler:  cmdFind,
	},
	{
		Name:     "note",
		Args:     "<title> [body...]",
		MinArgs:  1,
		Category: CategoryNotes,
		Help:     "Add a note.",
		Mutating: true,
		Handler:  cmdNote,
	},
	{
		Name:     "notes",
		Args:     "[tag]",
		Category: CategoryNotes,
		Help:     "List notes, optionally filtered by tag.",
		Handler:  cmdNotes,
	},
	{
		Name:     "tag",
		Args:     "<title> <tag>",
		MinArgs:  2,
		Category: CategoryNotes,
		Help:     "Attach a tag to a note.",
		Mutating: true,
		Handler:  cmdTag,
	},
	{
		Name:     "remove-note",
		Args:     "<title>",
		MinArgs:  1,
		Category: CategoryNotes,
		Help:     "Delete a note.",
		Mutating: true,
		Handler:  cmdRemoveNote,
	},
	{
		Name:     "export",
		Args:     "[path]",
		Category: CategoryData,
		Help:     "Write the book to a JSON snapshot file.",
		Handler:  cmdExport,
	},
	{
		Name:     "import",
		Args:     "<path>",
		MinArgs:  1,
		Category: CategoryData,
		Help:     "Merge a JSON snapshot into the book.",
		Mutating: true,
		Handler:  cmdImport,
	},
	{
		Name:     "sessions",
		Category: CategoryData,
		Help:     "Show recent session history.",
		Handler:  cmdSessions,
	},
	{
		Name:     "help",
		Args:     "[command]",
		Category: CategoryGeneral,
		Help:     "Show this command summary.",
		// Handler wired in init: cmdHelp renders the registry, so naming
		// it here would be an initialization cycle.
	},
	{
		Name:     "close",
		Aliases:  []string{"exit"},
		Category: CategoryGeneral,
		Help:     "End the session.",
		Terminal: true,
		Handler:  cmdClose,
	},
}

var byVerb = func() map[string]*Descriptor {
	m := make(map[string]*Descriptor, len(commands))
	for i := range commands {
		d := &commands[i]
		m[d.Name] = d
		for _, alias := range d.Aliases {
			m[alias] = d
		}
	}
	return m
}()

func init() {
	byVerb["help"].Handler = cmdHelp
}

// Commands returns the vocabulary in listing order.
func Commands() []Descriptor {
	out := make([]Descriptor, len(commands))
	copy(out, commands)
	return out
}

// Lookup resolves a verb (or alias) to its descriptor.
func Lookup(verb string) (*Descriptor, bool) {
	d, ok := byVerb[strings.ToLower(verb)]
	return d, ok
}
