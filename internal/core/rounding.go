package core

// RoundingIncrement is the minute granularity a task's duration is rounded up
// to before billing. Zero means no rounding (exact minutes).
type RoundingIncrement int

const (
	RoundNone      RoundingIncrement = 0
	RoundToFive    RoundingIncrement = 5
	RoundToQuarter RoundingIncrement = 15
	RoundToHalf    RoundingIncrement = 30
)

// Validate rejects increments outside the closed supported set.
func (r RoundingIncrement) Validate() error {
	switch r {
	case RoundNone, RoundToFive, RoundToQuarter, RoundToHalf:
		return nil
	}
	return ErrInvalidRounding
}

// ApplyRounding rounds a raw duration UP to the increment, never down: the
// agency never under-bills a partial increment. Rounding is applied per task,
// after the task's entries have been summed; rounding any finer grouping
// would inflate totals. Negative minutes are not a supported input.
func ApplyRounding(minutes int64, inc RoundingIncrement) int64 {
	if inc == RoundNone {
		return minutes
	}
	step := int64(inc)
	return (minutes + step - 1) / step * step
}
