package core

import "testing"

func TestApplyRounding(t *testing.T) {
	cases := []struct {
		minutes int64
		inc     RoundingIncrement
		want    int64
	}{
		{0, RoundNone, 0},
		{47, RoundNone, 47},
		{47, RoundToFive, 50},
		{45, RoundToFive, 45},
		{1, RoundToQuarter, 15},
		{15, RoundToQuarter, 15},
		{16, RoundToQuarter, 30},
		{61, RoundToHalf, 90},
		{60, RoundToHalf, 60},
		{0, RoundToHalf, 0},
	}
	for _, tc := range cases {
		got := ApplyRounding(tc.minutes, tc.inc)
		if got != tc.want {
			t.Fatalf("ApplyRounding(%d, %d) = %d, want %d", tc.minutes, tc.inc, got, tc.want)
		}
	}
}

func TestApplyRoundingProperties(t *testing.T) {
	incs := []RoundingIncrement{RoundNone, RoundToFive, RoundToQuarter, RoundToHalf}
	for _, inc := range incs {
		for m := int64(0); m <= 200; m++ {
			got := ApplyRounding(m, inc)
			if got < m {
				t.Fatalf("ApplyRounding(%d, %d) = %d rounded down", m, inc, got)
			}
			if inc != RoundNone && got%int64(inc) != 0 {
				t.Fatalf("ApplyRounding(%d, %d) = %d not a multiple", m, inc, got)
			}
		}
	}
}

// Rounding per task can only inflate relative to rounding the combined total.
func TestPerTaskRoundingNeverFiner(t *testing.T) {
	cases := [][]int64{
		{7, 8},
		{16, 16, 16},
		{1, 1, 1, 1},
		{30, 30},
	}
	for _, minutes := range cases {
		var perTask, combined int64
		for _, m := range minutes {
			perTask += ApplyRounding(m, RoundToQuarter)
			combined += m
		}
		if perTask < ApplyRounding(combined, RoundToQuarter) {
			t.Fatalf("per-task total %d below combined rounding for %v", perTask, minutes)
		}
	}
}

func TestRoundingIncrementValidate(t *testing.T) {
	for _, inc := range []RoundingIncrement{RoundNone, RoundToFive, RoundToQuarter, RoundToHalf} {
		if err := inc.Validate(); err != nil {
			t.Fatalf("increment %d expected valid, got %v", inc, err)
		}
	}
	for _, inc := range []RoundingIncrement{-5, 1, 10, 60} {
		if err := inc.Validate(); err == nil {
			t.Fatalf("increment %d expected invalid", inc)
		}
	}
}
