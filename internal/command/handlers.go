package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rolo/internal/book"
	"rolo/internal/logging"
)

func cmdHello(ctx context.Context, it *Interpreter, args []string) (string, error) {
	return respGreeting, nil
}

// cmdAdd creates a contact or appends a phone to an existing one. A new
// name is kept even when the given phone fails validation, so the error
// response still leaves a phoneless contact behind.
func cmdAdd(ctx context.Context, it *Interpreter, args []string) (string, error) {
	name := args[0]
	rec := it.book.Find(name)
	msg := respContactUpdate
	if rec == nil {
		var err error
		rec, err = book.NewRecord(name)
		if err != nil {
			return "", err
		}
		it.book.Add(rec)
		msg = respContactAdded
	}
	if len(args) > 1 {
		if err := rec.AddPhone(args[1]); err != nil {
			if perr := it.saveContact(ctx, rec); perr != nil {
				return "", perr
			}
			return "", err
		}
	}
	if err := it.saveContact(ctx, rec); err != nil {
		return "", err
	}
	return msg, nil
}

func cmdChange(ctx context.Context, it *Interpreter, args []string) (string, error) {
	rec := it.book.Find(args[0])
	if rec == nil {
		return "", book.ErrNotFound
	}
	if err := rec.EditPhone(args[1], args[2]); err != nil {
		return "", err
	}
	if err := it.saveContact(ctx, rec); err != nil {
		return "", err
	}
	return respContactChanged, nil
}

func cmdPhone(ctx context.Context, it *Interpreter, args []string) (string, error) {
	rec := it.book.Find(args[0])
	if rec == nil {
		return "", book.ErrNotFound
	}
	return "Phones: " + strings.Join(rec.Phones, "; "), nil
}

func cmdRemovePhone(ctx context.Context, it *Interpreter, args []string) (string, error) {
	rec := it.book.Find(args[0])
	if rec == nil {
		return "", book.ErrNotFound
	}
	if err := rec.RemovePhone(args[1]); err != nil {
		return "", err
	}
	if err := it.saveContact(ctx, rec); err != nil {
		return "", err
	}
	return respPhoneRemoved, nil
}

func cmdAll(ctx context.Context, it *Interpreter, args []string) (string, error) {
	records := it.book.Records()
	if len(records) == 0 {
		return "No contacts yet.", nil
	}
	return renderRecords(records), nil
}

func cmdAddBirthday(ctx context.Context, it *Interpreter, args []string) (string, error) {
	rec := it.book.Find(args[0])
	if rec == nil {
		return "", book.ErrNotFound
	}
	msg := respBirthdayAdded
	if rec.HasBirthday() {
		msg = respBirthdayUpdate
	}
	if err := rec.SetBirthday(args[1], it.now()); err != nil {
		return "", err
	}
	if err := it.saveContact(ctx, rec); err != nil {
		return "", err
	}
	return msg, nil
}

func cmdShowBirthday(ctx context.Context, it *Interpreter, args []string) (string, error) {
	rec := it.book.Find(args[0])
	if rec == nil {
		return "", book.ErrNotFound
	}
	if !rec.HasBirthday() {
		return respBirthdayUnset, nil
	}
	return "Birthday: " + book.FormatBirthday(rec.Birthday), nil
}

func cmdBirthdays(ctx context.Context, it *Interpreter, args []string) (string, error) {
	horizon := it.horizon
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return "", errBadArguments
		}
		horizon = n
	}
	reminders := it.book.UpcomingBirthdays(it.now(), horizon)
	if len(reminders) == 0 {
		return "No upcoming birthdays.", nil
	}
	var b strings.Builder
	for i, rem := range reminders {
		fmt.Fprintf(&b, "%d. Contact name: %s, birthday: %s;\n",
			i+1, rem.Name, rem.Date.Format(book.BirthdayLayout))
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func cmdDelete(ctx context.Context, it *Interpreter, args []string) (string, error) {
	if err := it.book.Delete(args[0]); err != nil {
		return "", err
	}
	if it.store != nil {
		if err := it.store.DeleteContact(ctx, args[0]); err != nil {
			return "", err
		}
	}
	return respContactDeleted, nil
}

func cmdEmail(ctx context.Context, it *Interpreter, args []string) (string, error) {
	rec := it.book.Find(args[0])
	if rec == nil {
		return "", book.ErrNotFound
	}
	if err := rec.SetEmail(args[1]); err != nil {
		return "", err
	}
	if err := it.saveContact(ctx, rec); err != nil {
		return "", err
	}
	return respContactUpdate, nil
}

func cmdFind(ctx context.Context, it *Interpreter, args []string) (string, error) {
	matches := it.book.Search(args[0])
	if len(matches) == 0 {
		return respNotFound, nil
	}
	return renderRecords(matches), nil
}

func cmdNote(ctx context.Context, it *Interpreter, args []string) (string, error) {
	n, err := book.NewNote(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return "", err
	}
	if err := it.book.AddNote(n); err != nil {
		return "", err
	}
	if err := it.saveNote(ctx, n); err != nil {
		return "", err
	}
	return respNoteAdded, nil
}

func cmdNotes(ctx context.Context, it *Interpreter, args []string) (string, error) {
	tag := ""
	if len(args) > 0 {
		tag = args[0]
	}
	notes := it.book.Notes(tag)
	if len(notes) == 0 {
		return "No notes.", nil
	}
	var b strings.Builder
	for i, n := range notes {
		fmt.Fprintf(&b, "%d. %s;\n", i+1, n)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func cmdTag(ctx context.Context, it *Interpreter, args []string) (string, error) {
	n := it.book.FindNote(args[0])
	if n == nil {
		return "", book.ErrNoteNotFound
	}
	n.AddTag(args[1])
	if err := it.saveNote(ctx, n); err != nil {
		return "", err
	}
	return respNoteUpdate, nil
}

func cmdRemoveNote(ctx context.Context, it *Interpreter, args []string) (string, error) {
	title := args[0]
	n := it.book.FindNote(title)
	if n == nil {
		return "", book.ErrNoteNotFound
	}
	if err := it.book.DeleteNote(title); err != nil {
		return "", err
	}
	if it.store != nil {
		if err := it.store.DeleteNote(ctx, n.Title); err != nil {
			return "", err
		}
	}
	return respNoteRemoved, nil
}

func cmdExport(ctx context.Context, it *Interpreter, args []string) (string, error) {
	snap := book.TakeSnapshot(it.book)
	data, err := snap.Encode()
	if err != nil {
		return "", err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		dir := it.exportDir
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, "rolo-"+it.now().Format("20060102-150405")+".json")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	logging.Audit(logging.AuditSnapshotExport, path, map[string]string{
		"contacts": fmt.Sprintf("%d", len(snap.Contacts)),
		"notes":    fmt.Sprintf("%d", len(snap.Notes)),
	})
	return fmt.Sprintf("Exported %d contacts and %d notes to %s", len(snap.Contacts), len(snap.Notes), path), nil
}

func cmdImport(ctx context.Context, it *Interpreter, args []string) (string, error) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	res, err := it.importLocked(ctx, data)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Imported %d new and %d updated contacts, %d new notes.",
		res.ContactsAdded, res.ContactsMerged, res.NotesAdded), nil
}

func cmdSessions(ctx context.Context, it *Interpreter, args []string) (string, error) {
	if it.store == nil {
		return "No session history.", nil
	}
	sessions, err := it.store.ListSessions(ctx, 10)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "No session history.", nil
	}
	var b strings.Builder
	for i, s := range sessions {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, "%d. %s started %s, %d turns\n",
			i+1, id, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Turns)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func cmdHelp(ctx context.Context, it *Interpreter, args []string) (string, error) {
	if len(args) > 0 {
		d, ok := Lookup(args[0])
		if !ok {
			return respInvalid, nil
		}
		text := fmt.Sprintf("**%s**\n\n%s", d.Usage(), d.Help)
		if d.Mutating {
			text += "\n\nModifies the book; changes are saved immediately."
		}
		if len(d.Aliases) > 0 {
			text += "\n\nAliases: " + strings.Join(d.Aliases, ", ")
		}
		return text, nil
	}

	var b strings.Builder
	b.WriteString("# Commands\n\n")
	b.WriteString("| Command | Description |\n|---|---|\n")
	for _, d := range Commands() {
		fmt.Fprintf(&b, "| `%s` | %s |\n", d.Usage(), d.Help)
	}
	return b.String(), nil
}

func cmdClose(ctx context.Context, it *Interpreter, args []string) (string, error) {
	return respGoodbye, nil
}

// renderRecords builds the numbered contact listing shared by all and find.
func renderRecords(records []*book.Record) string {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s;\n", i+1, rec)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
