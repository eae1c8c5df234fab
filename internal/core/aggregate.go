package core

// CalculateCompanyBilling sums a company's projects. Pure summation over
// every numeric field; each hour sum is re-normalized with Round2 so float
// error cannot compound across many line items. Revenue sums are exact
// integer cents.
func CalculateCompanyBilling(company CompanyInput) CompanyBillingResult {
	res := CompanyBillingResult{
		ClientID:   company.ClientID,
		ClientName: company.ClientName,
	}
	for _, p := range company.Projects {
		pr := CalculateProjectBilling(p)
		res.Projects = append(res.Projects, pr)
		res.ActualHours = Round2(res.ActualHours + pr.ActualHours)
		res.RoundedHours = Round2(res.RoundedHours + pr.RoundedHours)
		res.AdjustedHours = Round2(res.AdjustedHours + pr.AdjustedHours)
		res.BilledHours = Round2(res.BilledHours + pr.BilledHours)
		res.UnbillableHours = Round2(res.UnbillableHours + pr.UnbillableHours)
		res.CarryoverOut = Round2(res.CarryoverOut + pr.CarryoverOut)
		res.BaseRevenue = res.BaseRevenue.Add(pr.BaseRevenue)
		res.BilledRevenue = res.BilledRevenue.Add(pr.BilledRevenue)
	}
	return res
}

// CalculateMonthlyBilling sums all companies into the grand total for a
// billing period.
func CalculateMonthlyBilling(companies []CompanyInput) MonthlyBillingResult {
	var res MonthlyBillingResult
	for _, c := range companies {
		cr := CalculateCompanyBilling(c)
		res.Companies = append(res.Companies, cr)
		res.ActualHours = Round2(res.ActualHours + cr.ActualHours)
		res.RoundedHours = Round2(res.RoundedHours + cr.RoundedHours)
		res.AdjustedHours = Round2(res.AdjustedHours + cr.AdjustedHours)
		res.BilledHours = Round2(res.BilledHours + cr.BilledHours)
		res.UnbillableHours = Round2(res.UnbillableHours + cr.UnbillableHours)
		res.CarryoverOut = Round2(res.CarryoverOut + cr.CarryoverOut)
		res.BaseRevenue = res.BaseRevenue.Add(cr.BaseRevenue)
		res.BilledRevenue = res.BilledRevenue.Add(cr.BilledRevenue)
	}
	return res
}

// CalculateMonthlyReport runs the full pipeline: group entries, compute the
// monthly roll-up, and surface the unmatched-project findings alongside it.
func CalculateMonthlyReport(entries []TimesheetEntry, configs ConfigSource, companies CompanyResolver) (MonthlyReport, error) {
	inputs, unmatched, err := BuildBillingInputs(entries, configs, companies)
	if err != nil {
		return MonthlyReport{}, err
	}
	return MonthlyReport{
		Result:             CalculateMonthlyBilling(inputs),
		UnmatchedProjects:  unmatched,
		AllProjectsMatched: len(unmatched) == 0,
	}, nil
}
