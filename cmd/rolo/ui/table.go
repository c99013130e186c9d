package ui

import (
	"fmt"
	"strings"

	"rolo/internal/book"
)

// ContactTable renders records as a fixed-width text table for the
// `rolo contacts` subcommand and the transcript.
func ContactTable(s Styles, records []*book.Record) string {
	if len(records) == 0 {
		return s.Muted.Render("No contacts yet.")
	}

	nameW, phoneW, emailW := 4, 6, 5
	for _, rec := range records {
		if len(rec.Name) > nameW {
			nameW = len(rec.Name)
		}
		if w := len(strings.Join(rec.Phones, "; ")); w > phoneW {
			phoneW = w
		}
		if len(rec.Email) > emailW {
			emailW = len(rec.Email)
		}
	}

	var b strings.Builder
	header := fmt.Sprintf("%-*s  %-*s  %-*s  %s", nameW, "NAME", phoneW, "PHONES", emailW, "EMAIL", "BIRTHDAY")
	b.WriteString(s.TableHeader.Render(header))
	b.WriteString("\n")

	for i, rec := range records {
		row := fmt.Sprintf("%-*s  %-*s  %-*s  %s",
			nameW, rec.Name,
			phoneW, strings.Join(rec.Phones, "; "),
			emailW, rec.Email,
			book.FormatBirthday(rec.Birthday))
		style := s.TableRow
		if i%2 == 1 {
			style = s.TableRowAlt
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ReminderList renders upcoming congratulation dates for the
// `rolo birthdays` subcommand.
func ReminderList(s Styles, reminders []book.Reminder) string {
	if len(reminders) == 0 {
		return s.Muted.Render("No upcoming birthdays.")
	}
	var b strings.Builder
	for _, rem := range reminders {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			s.Bold.Render(rem.Date.Format(book.BirthdayLayout)),
			rem.Name))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
