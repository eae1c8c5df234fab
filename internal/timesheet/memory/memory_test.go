package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ore/internal/core"
)

func entry(day int, projectID string, minutes int64) core.TimesheetEntry {
	return core.TimesheetEntry{
		WorkDate:  time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
		ProjectID: projectID,
		TaskName:  "Task",
		Minutes:   minutes,
	}
}

func TestStore_FetchEntries_FiltersByMonth(t *testing.T) {
	s := New(entry(5, "P1", 60), entry(12, "P2", 30))
	s.Add(core.TimesheetEntry{
		WorkDate:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ProjectID: "P1",
		TaskName:  "Task",
		Minutes:   480,
	})

	got, err := s.FetchEntries(context.Background(), 2026, 1)
	if err != nil {
		t.Fatalf("FetchEntries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries: got %d, want 2", len(got))
	}

	got, err = s.FetchEntries(context.Background(), 2026, 3)
	if err != nil {
		t.Fatalf("FetchEntries: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("entries for empty month: got %d, want 0", len(got))
	}
}

func TestStore_FetchEntries_InvalidMonth(t *testing.T) {
	s := New()
	if _, err := s.FetchEntries(context.Background(), 2026, 13); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("error = %v, want ErrInvalidMonth", err)
	}
}
