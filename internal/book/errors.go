package book

import "errors"

// Sentinel errors for lookup and validation failures. The command
// interpreter maps these to the user-facing response strings, so handlers
// and callers compare with errors.Is rather than matching message text.
var (
	ErrNotFound      = errors.New("contact not found")
	ErrNoteNotFound  = errors.New("note not found")
	ErrPhoneNotFound = errors.New("phone not on the list")
	ErrInvalidPhone  = errors.New("phone must have 10 digits")
	ErrInvalidDate   = errors.New("invalid date format")
	ErrFutureDate    = errors.New("date is in the future")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrEmptyTitle    = errors.New("note title must not be empty")
	ErrDuplicateNote = errors.New("note title already taken")
)
