package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rolo/internal/book"
	"rolo/internal/logging"
)

// LoadBook assembles a book from the store. Contacts and notes load
// concurrently; the book is built only after both queries finish, so no
// partially loaded book is ever visible.
func LoadBook(ctx context.Context, s *Store) (*book.Book, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "LoadBook")
	defer timer.Stop()

	var (
		records []*book.Record
		notes   []*book.Note
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.LoadContacts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = s.LoadNotes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := book.New()
	for _, rec := range records {
		b.Add(rec)
	}
	for _, n := range notes {
		if err := b.AddNote(n); err != nil {
			logging.Get(logging.CategoryBoot).Warn("Skipping stored note %q: %v", n.Title, err)
		}
	}

	logging.Boot("Book loaded: %d contacts, %d notes", b.Len(), b.NoteCount())
	return b, nil
}
