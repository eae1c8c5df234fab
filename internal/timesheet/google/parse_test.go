package google

import (
	"testing"
	"time"
)

// Build a small matrix emulating a real export for January 2026.
func TestParseEntries_Example(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Project ID", "Project", "Client ID", "Client", "Task", "User", "Duration"},
		{"2026-01-05", "P1", "Website", "C1", "Acme", "Frontend", "mario", "2:47"},
		{"2026-01-05", "P1", "Website", "C1", "Acme", "Backend", "mario", "1.5"},
		{"06/01/2026", "P2", "Consulting", "C2", "Globex", "Call", "lucia", "0:05"},
		{"2026-01-07", "", "", "", "", "Interno", "lucia", "3:00"},
		{"2026-02-01", "P1", "Website", "C1", "Acme", "Frontend", "mario", "8:00"},
		{"", "", "", "", "", "", "", ""},
	}

	entries, err := parseEntries(values, 2026, 1)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries: got %d, want 4", len(entries))
	}

	first := entries[0]
	if !first.WorkDate.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("WorkDate = %v", first.WorkDate)
	}
	if first.ProjectID != "P1" || first.TaskName != "Frontend" || first.Minutes != 167 {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if entries[1].Minutes != 90 {
		t.Errorf("decimal duration: got %d minutes, want 90", entries[1].Minutes)
	}
	if entries[2].ProjectID != "P2" || entries[2].Minutes != 5 {
		t.Errorf("european date row: %+v", entries[2])
	}
	if entries[3].ProjectID != "" {
		t.Errorf("unassigned row should keep empty project id, got %q", entries[3].ProjectID)
	}
}

func TestParseEntries_MissingHeader(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Project", "Task"},
		{"2026-01-05", "Website", "Frontend"},
	}
	if _, err := parseEntries(values, 2026, 1); err == nil {
		t.Fatal("expected error for missing Duration header")
	}
}

func TestParseEntries_Empty(t *testing.T) {
	entries, err := parseEntries(nil, 2026, 1)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"7:30", 450, false},
		{"0:05", 5, false},
		{"1:02:30", 62, false},
		{"7.5", 450, false},
		{"7,5", 450, false},
		{"0.78", 47, false},
		{"", 0, false},
		{"1:75", 0, true},
		{"-2:00", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDurationMinutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDurationMinutes(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDurationMinutes(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDurationMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	if _, err := parseDate("yesterday"); err == nil {
		t.Fatal("expected error")
	}
}
