package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a single contact: a name plus validated phone numbers, an
// optional email and an optional birthday. The name is the user-facing
// key; ID is the storage identity and survives exports and imports.
//
// Records are not safe for concurrent mutation. The interpreter serializes
// all access (see internal/command).
type Record struct {
	ID        string
	Name      string
	Phones    []string
	Email     string
	Birthday  time.Time // zero when unset
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord creates an empty record for name.
func NewRecord(name string) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidatePhone checks the single accepted phone format: exactly 10 digits.
func ValidatePhone(value string) error {
	if len(value) != 10 {
		return ErrInvalidPhone
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return ErrInvalidPhone
		}
	}
	return nil
}

// ValidateEmail checks for a plausible local@domain shape. It is
// deliberately loose; the book is not a mail transfer agent.
func ValidateEmail(value string) error {
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 {
		return ErrInvalidEmail
	}
	domain := value[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 || dot == len(domain)-1 || strings.Contains(value, " ") {
		return ErrInvalidEmail
	}
	return nil
}

// HasPhone reports whether the exact number is on the record.
func (r *Record) HasPhone(phone string) bool {
	for _, p := range r.Phones {
		if p == phone {
			return true
		}
	}
	return false
}

// AddPhone validates and appends a number. Adding a number the record
// already holds is a no-op, not an error.
func (r *Record) AddPhone(phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if r.HasPhone(phone) {
		return nil
	}
	r.Phones = append(r.Phones, phone)
	r.touch()
	return nil
}

// RemovePhone validates the number and removes it from the record.
func (r *Record) RemovePhone(phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	for i, p := range r.Phones {
		if p == phone {
			r.Phones = append(r.Phones[:i], r.Phones[i+1:]...)
			r.touch()
			return nil
		}
	}
	return ErrPhoneNotFound
}

// EditPhone replaces oldPhone with newPhone in place. When newPhone is
// already on the record, the old number is dropped instead so the record
// never holds duplicates. Validation order matches the lookup order: old
// number first, then presence, then the new number.
func (r *Record) EditPhone(oldPhone, newPhone string) error {
	if err := ValidatePhone(oldPhone); err != nil {
		return err
	}
	idx := -1
	for i, p := range r.Phones {
		if p == oldPhone {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPhoneNotFound
	}
	if err := ValidatePhone(newPhone); err != nil {
		return err
	}
	if r.HasPhone(newPhone) && oldPhone != newPhone {
		r.Phones = append(r.Phones[:idx], r.Phones[idx+1:]...)
	} else {
		r.Phones[idx] = newPhone
	}
	r.touch()
	return nil
}

// SetBirthday parses and stores a DD.MM.YYYY birth date.
func (r *Record) SetBirthday(value string, now time.Time) error {
	t, err := ParseBirthday(value, now)
	if err != nil {
		return err
	}
	r.Birthday = t
	r.touch()
	return nil
}

// HasBirthday reports whether a birth date is set.
func (r *Record) HasBirthday() bool { return !r.Birthday.IsZero() }

// SetEmail validates and stores an email address.
func (r *Record) SetEmail(value string) error {
	if err := ValidateEmail(value); err != nil {
		return err
	}
	r.Email = value
	r.touch()
	return nil
}

// String renders the record the way the `all` listing shows it.
func (r *Record) String() string {
	return fmt.Sprintf("Contact name: %s, phones: %s, birthday: %s",
		r.Name, strings.Join(r.Phones, "; "), FormatBirthday(r.Birthday))
}

func (r *Record) touch() { r.UpdatedAt = time.Now().UTC() }
