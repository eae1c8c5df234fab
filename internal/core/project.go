package core

// CalculateProjectBilling aggregates a project's tasks and applies the
// minimum/maximum/carryover policy. Evaluation order is fixed: minimum first,
// then maximum. Upstream validation guarantees min <= max, so the two steps
// never both fire. The function raises no errors and keeps no state across
// invocations; every call is a fresh evaluation from the supplied
// carryover-in snapshot.
func CalculateProjectBilling(p ProjectInput) ProjectBillingResult {
	cfg := p.Config
	res := ProjectBillingResult{
		ProjectID:   cfg.ProjectID,
		ProjectName: cfg.ProjectName,
		HourlyRate:  cfg.HourlyRate,
		Adjustment:  NoAdjustment{},
	}

	for _, t := range p.Tasks {
		tr := CalculateTaskBilling(t, cfg.Rounding, cfg.HourlyRate)
		res.Tasks = append(res.Tasks, tr)
		res.ActualMinutes += tr.ActualMinutes
		res.RoundedMinutes += tr.RoundedMinutes
	}
	res.ActualHours = Round2(float64(res.ActualMinutes) / 60)
	res.RoundedHours = Round2(float64(res.RoundedMinutes) / 60)
	res.BaseRevenue = cfg.HourlyRate.MulHours(res.RoundedHours)

	hasLimits := cfg.MinimumHours != nil || cfg.MaximumHours != nil || cfg.CarryoverHoursIn > 0
	if !hasLimits {
		res.AdjustedHours = res.RoundedHours
		res.BilledHours = res.RoundedHours
		res.BilledRevenue = res.BaseRevenue
		return res
	}

	res.CarryoverIn = cfg.CarryoverHoursIn
	res.AdjustedHours = Round2(res.RoundedHours + cfg.CarryoverHoursIn)
	billed := res.AdjustedHours

	// Minimum step: only active projects get padded up to their minimum.
	if cfg.IsActive && cfg.MinimumHours != nil && billed < *cfg.MinimumHours {
		res.MinimumPadding = Round2(*cfg.MinimumHours - billed)
		billed = *cfg.MinimumHours
		res.MinimumApplied = true
		res.Adjustment = MinimumAdjustment{
			MinimumHours: *cfg.MinimumHours,
			PaddingHours: res.MinimumPadding,
		}
	}

	// Maximum step: clamp, routing the excess to carryover or unbillable.
	if cfg.MaximumHours != nil && billed > *cfg.MaximumHours {
		excess := Round2(billed - *cfg.MaximumHours)
		billed = *cfg.MaximumHours
		res.MaximumApplied = true
		if cfg.CarryoverEnabled {
			carry := excess
			if cfg.CarryoverCap != nil && carry > *cfg.CarryoverCap {
				carry = *cfg.CarryoverCap
				res.UnbillableHours = Round2(excess - carry)
			}
			res.CarryoverOut = carry
			res.Adjustment = MaximumAdjustment{
				MaximumHours: *cfg.MaximumHours,
				CarryoverOut: carry,
			}
		} else {
			res.UnbillableHours = excess
			res.Adjustment = MaximumUnbillableAdjustment{
				MaximumHours:    *cfg.MaximumHours,
				UnbillableHours: excess,
			}
		}
	}

	// FIFO accounting note: carryover-in counts as consumed before
	// newly-earned hours. Audit figure only; does not move BilledHours.
	res.CarryoverConsumed = res.CarryoverIn
	if billed < res.CarryoverConsumed {
		res.CarryoverConsumed = Round2(billed)
	}

	res.BilledHours = billed
	res.BilledRevenue = cfg.HourlyRate.MulHours(billed)
	return res
}
