package command

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rolo/internal/book"
)

// fixedNow keeps birthday validation and horizon math deterministic.
// Monday, 10 June 2024.
var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestInterpreter(t *testing.T, opts ...Option) *Interpreter {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(book.New(), opts...)
}

// run executes a line and fails the test on infrastructure errors.
func run(t *testing.T, it *Interpreter, line string) Result {
	t.Helper()
	res, err := it.Execute(context.Background(), line)
	if err != nil {
		t.Fatalf("Execute(%q): %v", line, err)
	}
	return res
}

func TestExecute_Dialogue(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	// One scripted session, in order. Each step is an input line and
	// the exact response the loop must print.
	steps := []struct {
		line string
		want string
	}{
		{"hello", "How can I help you?"},
		{"add Ada 1234567890", "Contact added."},
		{"add Ada 0987654321", "Contact update."},
		{"phone Ada", "Phones: 1234567890; 0987654321"},
		{"change Ada 1234567890 1112223334", "Contact changed."},
		{"phone Ada", "Phones: 1112223334; 0987654321"},
		{"remove-phone Ada 0987654321", "Phone remove."},
		{"phone Ada", "Phones: 1112223334"},
		{"add-birthday Ada 15.03.1990", "Birthday added."},
		{"add-birthday Ada 16.03.1990", "Birthday update."},
		{"show-birthday Ada", "Birthday: 16.03.1990"},
		{"email Ada ada@example.com", "Contact update."},
		{"delete Ada", "Contact delete."},
		{"phone Ada", "Contact not found."},
	}
	for _, step := range steps {
		if got := run(t, it, step.line).Text; got != step.want {
			t.Fatalf("%q = %q, want %q", step.line, got, step.want)
		}
	}
}

func TestExecute_ErrorMapping(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)
	run(t, it, "add Ada 1234567890")

	tests := []struct {
		name string
		line string
		want string
	}{
		{"EmptyLine", "", "Invalid command."},
		{"UnknownVerb", "frobnicate", "Invalid command."},
		{"MissingArgs", "add", "Enter the argument for the command."},
		{"MissingArgsChange", "change Ada 1234567890", "Enter the argument for the command."},
		{"UnknownContact", "phone Nobody", "Contact not found."},
		{"BadPhone", "add Ada 123", "The phone must have 10 numbers."},
		{"PhoneNotOnRecord", "change Ada 9999999999 1234567891", "Phone not on the list."},
		{"RemoveMissingPhone", "remove-phone Ada 9999999999", "Phone not on the list."},
		{"BadDateFormat", "add-birthday Ada 1990-03-15", "Invalid date format. Use DD.MM.YYYY."},
		{"FutureDate", "add-birthday Ada 15.03.2090", "Incorrect date."},
		{"BadEmail", "email Ada not-an-email", "Invalid email address."},
		{"BadHorizon", "birthdays soon", "Enter the argument for the command."},
		{"DeleteUnknown", "delete Nobody", "Contact not found."},
		{"VerbIsCaseInsensitive", "HELLO", "How can I help you?"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, it, tt.line).Text; got != tt.want {
				t.Errorf("%q = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExecute_AddBadPhoneStillCreatesContact(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	if got := run(t, it, "add Ada 123").Text; got != "The phone must have 10 numbers." {
		t.Fatalf("add with bad phone = %q", got)
	}
	// The name survives the failed phone validation.
	if got := run(t, it, "phone Ada").Text; got != "Phones: " {
		t.Errorf("phone Ada = %q, want phoneless contact", got)
	}
}

func TestExecute_All(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	if got := run(t, it, "all").Text; got != "No contacts yet." {
		t.Fatalf("all on empty book = %q", got)
	}

	run(t, it, "add Bob 1234567890")
	run(t, it, "add Ada 0987654321")
	run(t, it, "add-birthday Ada 15.03.1990")

	want := "1. Contact name: Ada, phones: 0987654321, birthday: 15.03.1990;\n" +
		"2. Contact name: Bob, phones: 1234567890, birthday: not set;"
	if got := run(t, it, "all").Text; got != want {
		t.Errorf("all = %q, want %q", got, want)
	}
}

func TestExecute_ShowBirthdayUnset(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)
	run(t, it, "add Ada 1234567890")

	if got := run(t, it, "show-birthday Ada").Text; got != "Birthday not set." {
		t.Errorf("show-birthday = %q", got)
	}
}

func TestExecute_Birthdays(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	// fixedNow is Monday 10.06.2024. Saturday 15.06 shifts to Monday
	// 17.06; 25.06 is outside the 7-day horizon but inside 30 days.
	run(t, it, "add Ada 1234567890")
	run(t, it, "add-birthday Ada 15.06.1990")
	run(t, it, "add Bob 0987654321")
	run(t, it, "add-birthday Bob 25.06.1985")

	if got := run(t, it, "birthdays").Text; got != "1. Contact name: Ada, birthday: 17.06.2024;" {
		t.Errorf("birthdays = %q", got)
	}

	want := "1. Contact name: Ada, birthday: 17.06.2024;\n" +
		"2. Contact name: Bob, birthday: 25.06.2024;"
	if got := run(t, it, "birthdays 30").Text; got != want {
		t.Errorf("birthdays 30 = %q, want %q", got, want)
	}

	it2 := newTestInterpreter(t)
	if got := run(t, it2, "birthdays").Text; got != "No upcoming birthdays." {
		t.Errorf("birthdays on empty book = %q", got)
	}
}

func TestExecute_Find(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)
	run(t, it, "add Ada 1234567890")
	run(t, it, "add Bob 0987654321")
	run(t, it, "email Ada ada@example.com")

	if got := run(t, it, "find ada").Text; !strings.Contains(got, "Contact name: Ada") {
		t.Errorf("find ada = %q", got)
	}
	if got := run(t, it, "find 0987").Text; !strings.Contains(got, "Contact name: Bob") {
		t.Errorf("find by phone = %q", got)
	}
	if got := run(t, it, "find zzz").Text; got != "Contact not found." {
		t.Errorf("find with no match = %q", got)
	}
}

func TestExecute_Notes(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	if got := run(t, it, "notes").Text; got != "No notes." {
		t.Fatalf("notes on empty book = %q", got)
	}

	if got := run(t, it, "note groceries milk and eggs").Text; got != "Note added." {
		t.Fatalf("note = %q", got)
	}
	if got := run(t, it, "note groceries other").Text; got != "Note title already taken." {
		t.Errorf("duplicate note = %q", got)
	}
	if got := run(t, it, "tag groceries shopping").Text; got != "Note update." {
		t.Errorf("tag = %q", got)
	}
	if got := run(t, it, "tag missing shopping").Text; got != "Contact not found." {
		t.Errorf("tag on missing note = %q", got)
	}

	want := "1. groceries [shopping]: milk and eggs;"
	if got := run(t, it, "notes").Text; got != want {
		t.Errorf("notes = %q, want %q", got, want)
	}
	if got := run(t, it, "notes shopping").Text; got != want {
		t.Errorf("notes shopping = %q, want %q", got, want)
	}
	if got := run(t, it, "notes other").Text; got != "No notes." {
		t.Errorf("notes with unused tag = %q", got)
	}

	if got := run(t, it, "remove-note groceries").Text; got != "Note removed." {
		t.Errorf("remove-note = %q", got)
	}
	if got := run(t, it, "remove-note groceries").Text; got != "Contact not found." {
		t.Errorf("remove-note twice = %q", got)
	}
}

func TestExecute_ExportImport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	it := newTestInterpreter(t, WithExportDir(dir))
	run(t, it, "add Ada 1234567890")
	run(t, it, "add-birthday Ada 15.03.1990")
	run(t, it, "note groceries milk")

	res := run(t, it, "export")
	if !strings.HasPrefix(res.Text, "Exported 1 contacts and 1 notes to ") {
		t.Fatalf("export = %q", res.Text)
	}
	path := strings.TrimPrefix(res.Text, "Exported 1 contacts and 1 notes to ")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file: %v", err)
	}

	// Import into a fresh book reconstructs the contents.
	it2 := newTestInterpreter(t)
	want := "Imported 1 new and 0 updated contacts, 1 new notes."
	if got := run(t, it2, "import "+path).Text; got != want {
		t.Fatalf("import = %q, want %q", got, want)
	}
	if got := run(t, it2, "show-birthday Ada").Text; got != "Birthday: 15.03.1990" {
		t.Errorf("show-birthday after import = %q", got)
	}

	// Importing the same snapshot again changes nothing.
	want = "Imported 0 new and 0 updated contacts, 0 new notes."
	if got := run(t, it2, "import "+path).Text; got != want {
		t.Errorf("second import = %q, want %q", got, want)
	}
}

func TestExecute_ExportToExplicitPath(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)
	run(t, it, "add Ada 1234567890")

	path := filepath.Join(t.TempDir(), "nested", "snap.json")
	res := run(t, it, "export "+path)
	if !strings.HasSuffix(res.Text, path) {
		t.Fatalf("export = %q", res.Text)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file: %v", err)
	}
}

func TestExecute_ImportMissingFile(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	_, err := it.Execute(context.Background(), "import /no/such/file.json")
	if err == nil {
		t.Fatal("import of missing file did not error")
	}
}

func TestExecute_Quit(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	for _, verb := range []string{"close", "exit"} {
		res := run(t, it, verb)
		if res.Text != "Good bye!" || !res.Quit {
			t.Errorf("%s = %+v, want Good bye! with Quit", verb, res)
		}
	}
	if res := run(t, it, "hello"); res.Quit {
		t.Error("hello set Quit")
	}
}

func TestExecute_Help(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	got := run(t, it, "help").Text
	for _, verb := range []string{"add", "change", "birthdays", "export", "close"} {
		if !strings.Contains(got, "`"+verb) {
			t.Errorf("help missing %s", verb)
		}
	}

	got = run(t, it, "help change").Text
	if !strings.Contains(got, "change <name> <old-phone> <new-phone>") {
		t.Errorf("help change = %q", got)
	}
	if !strings.Contains(got, "Modifies the book") {
		t.Errorf("help change does not flag the mutation: %q", got)
	}
	if got := run(t, it, "help phone").Text; strings.Contains(got, "Modifies the book") {
		t.Errorf("help phone flags a read-only command: %q", got)
	}
	if got := run(t, it, "help frobnicate").Text; got != "Invalid command." {
		t.Errorf("help frobnicate = %q", got)
	}
}

func TestExecute_Sessions_NoStore(t *testing.T) {
	t.Parallel()
	it := newTestInterpreter(t)

	if got := run(t, it, "sessions").Text; got != "No session history." {
		t.Errorf("sessions = %q", got)
	}
}
