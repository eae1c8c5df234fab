package core

// CalculateTaskBilling computes a single task's actual and rounded hours and
// its base (pre-adjustment) revenue. The task's entries must already be
// summed into TotalMinutes; rounding happens on that total only.
func CalculateTaskBilling(task TaskInput, inc RoundingIncrement, rate Money) TaskBillingResult {
	actual := task.TotalMinutes
	rounded := ApplyRounding(actual, inc)
	roundedHours := Round2(float64(rounded) / 60)
	return TaskBillingResult{
		TaskName:       task.Name,
		ActualMinutes:  actual,
		ActualHours:    Round2(float64(actual) / 60),
		RoundedMinutes: rounded,
		RoundedHours:   roundedHours,
		BaseRevenue:    rate.MulHours(roundedHours),
	}
}
