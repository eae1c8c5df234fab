package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"85.50", 8550, true},
		{"85,50", 8550, true},
		{"0", 0, true}, // zero rate is a valid configuration
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMulHours(t *testing.T) {
	cases := []struct {
		rate  int64
		hours float64
		want  int64
	}{
		{5000, 40, 200000},
		{5000, 10, 50000},
		{5000, 0, 0},
		{0, 12.5, 0},
		{8550, 1.25, 10688}, // 106.875 rounds up
		{3333, 0.33, 1100},  // 10.9989 rounds to 11.00
	}
	for _, tc := range cases {
		got := Money{Cents: tc.rate}.MulHours(tc.hours)
		if got.Cents != tc.want {
			t.Fatalf("MulHours(%d, %v) = %d, want %d", tc.rate, tc.hours, got.Cents, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{1.004, 1.0},
		{0.1 + 0.2, 0.3},
		{50.0 / 60, 0.83},
		{55.0 / 60, 0.92},
		{49.999999, 50},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 200000}).String(); got != "2000.00" {
		t.Fatalf("expected 2000.00, got %s", got)
	}
	if got := (Money{Cents: -105}).String(); got != "-1.05" {
		t.Fatalf("expected -1.05, got %s", got)
	}
}
