// Package memory is an in-memory timesheet source for development and tests.
package memory

import (
	"context"
	"sync"

	"ore/internal/core"
	ports "ore/internal/timesheet"
)

type Store struct {
	mu    sync.Mutex
	items []core.TimesheetEntry
}

// Ensure interface conformance
var _ ports.EntrySource = (*Store)(nil)

func New(entries ...core.TimesheetEntry) *Store {
	return &Store{items: append([]core.TimesheetEntry(nil), entries...)}
}

// Add appends entries to the store.
func (s *Store) Add(entries ...core.TimesheetEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, entries...)
}

// FetchEntries returns the stored entries that fall in the given month.
func (s *Store) FetchEntries(_ context.Context, year, month int) ([]core.TimesheetEntry, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TimesheetEntry
	for _, e := range s.items {
		if e.WorkDate.Year() == year && int(e.WorkDate.Month()) == month {
			out = append(out, e)
		}
	}
	return out, nil
}
