package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ore/internal/core"
)

// Column headers expected on the first row of the timesheet sheet.
// Exports keep the ID columns even when a row has no project assigned,
// in which case the cell is simply empty.
const (
	headerDate        = "Date"
	headerProjectID   = "Project ID"
	headerProjectName = "Project"
	headerClientID    = "Client ID"
	headerClientName  = "Client"
	headerTask        = "Task"
	headerUser        = "User"
	headerDuration    = "Duration"
)

// parseEntries converts a values matrix (as returned by the Sheets API)
// into timesheet entries for the given year and month. Rows outside the
// requested month are skipped, as are fully empty rows.
func parseEntries(values [][]interface{}, year, month int) ([]core.TimesheetEntry, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	cols := map[string]int{}
	for _, h := range []string{headerDate, headerProjectID, headerProjectName, headerClientID, headerClientName, headerTask, headerUser, headerDuration} {
		cols[h] = indexOf(headers, h)
	}
	var missing []string
	for _, h := range []string{headerDate, headerTask, headerDuration} {
		if cols[h] == -1 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected timesheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	var entries []core.TimesheetEntry
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		dateStr := strings.TrimSpace(safeGet(row, cols[headerDate]))
		if dateStr == "" {
			continue
		}
		workDate, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if workDate.Year() != year || int(workDate.Month()) != month {
			continue
		}
		minutes, err := parseDurationMinutes(safeGet(row, cols[headerDuration]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, core.TimesheetEntry{
			WorkDate:    workDate,
			ProjectID:   strings.TrimSpace(safeGet(row, cols[headerProjectID])),
			ProjectName: strings.TrimSpace(safeGet(row, cols[headerProjectName])),
			ClientID:    strings.TrimSpace(safeGet(row, cols[headerClientID])),
			ClientName:  strings.TrimSpace(safeGet(row, cols[headerClientName])),
			TaskName:    strings.TrimSpace(safeGet(row, cols[headerTask])),
			UserName:    strings.TrimSpace(safeGet(row, cols[headerUser])),
			Minutes:     minutes,
		})
	}
	return entries, nil
}

// parseDate accepts the formats seen in real exports: ISO dates and the
// European day-first form.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseDurationMinutes accepts either clock notation ("7:30", "0:05",
// optionally with seconds) or decimal hours ("7.5", "7,5").
func parseDurationMinutes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 && len(parts) != 3 {
			return 0, fmt.Errorf("unparseable duration %q", s)
		}
		hours, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || hours < 0 {
			return 0, fmt.Errorf("unparseable duration %q", s)
		}
		mins, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || mins < 0 || mins > 59 {
			return 0, fmt.Errorf("unparseable duration %q", s)
		}
		// Seconds, if present, are dropped: billing granularity is minutes.
		return hours*60 + mins, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("unparseable duration %q", s)
	}
	return int64(hours*60 + 0.5), nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
