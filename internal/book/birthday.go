package book

import (
	"sort"
	"time"
)

// BirthdayLayout is the input and display format for birth dates.
const BirthdayLayout = "02.01.2006"

// DefaultBirthdayHorizon is how many days ahead UpcomingBirthdays looks
// when the caller does not override it.
const DefaultBirthdayHorizon = 7

// ParseBirthday parses a DD.MM.YYYY date. Dates after now's calendar day
// are rejected with ErrFutureDate; today is accepted.
func ParseBirthday(value string, now time.Time) (time.Time, error) {
	t, err := time.Parse(BirthdayLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if t.After(dateOnly(now)) {
		return time.Time{}, ErrFutureDate
	}
	return t, nil
}

// FormatBirthday renders a stored birthday, or "not set" for the zero value.
func FormatBirthday(t time.Time) string {
	if t.IsZero() {
		return "not set"
	}
	return t.Format(BirthdayLayout)
}

// Reminder is one upcoming congratulation: the contact and the date to
// reach out on, which is the birthday occurrence shifted off weekends.
type Reminder struct {
	Name string
	Date time.Time
}

// UpcomingBirthdays returns a reminder for every record whose birthday
// occurs within horizonDays of now, inclusive of today. Occurrences that
// land on Saturday or Sunday shift to the following Monday, after the
// horizon check. Results are sorted by congratulation date, then name.
func (b *Book) UpcomingBirthdays(now time.Time, horizonDays int) []Reminder {
	if horizonDays <= 0 {
		horizonDays = DefaultBirthdayHorizon
	}
	today := dateOnly(now)

	var out []Reminder
	for _, rec := range b.records {
		if rec.Birthday.IsZero() {
			continue
		}
		occ := nextOccurrence(rec.Birthday, today)
		days := int(occ.Sub(today).Hours() / 24)
		if days > horizonDays {
			continue
		}
		switch occ.Weekday() {
		case time.Saturday:
			occ = occ.AddDate(0, 0, 2)
		case time.Sunday:
			occ = occ.AddDate(0, 0, 1)
		}
		out = append(out, Reminder{Name: rec.Name, Date: occ})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// nextOccurrence maps a birth date to its next anniversary on or after
// today. time.Date normalizes Feb 29 to Mar 1 in non-leap years.
func nextOccurrence(birthday, today time.Time) time.Time {
	occ := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if occ.Before(today) {
		occ = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return occ
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
