package timesheet

import (
	"context"

	"ore/internal/core"
)

// Ports for timesheet import adapters.
type (
	// EntrySource fetches the raw timesheet entries for one billing month.
	EntrySource interface {
		FetchEntries(ctx context.Context, year int, month int) ([]core.TimesheetEntry, error)
	}
)
