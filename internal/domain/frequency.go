package domain

import "time"

// Payment frequency identifiers as published by the product catalog.
const (
	FrequencyWeekly     = "WEEKLY"
	FrequencyBiweekly   = "BIWEEKLY"
	FrequencyMonthly    = "MONTHLY"
	FrequencyQuarterly  = "QUARTERLY"
	FrequencySemiannual = "SEMIANNUAL"
	FrequencyAnnual     = "ANNUAL"
)

// PaymentFrequency describes how installment due dates advance. Day-based
// frequencies step in whole days; month-based ones step in calendar months so
// a due date keeps its day-of-month where the target month allows it.
type PaymentFrequency struct {
	ID             string
	PeriodsPerYear int
	Months         int
	Days           int
}

var frequencies = map[string]PaymentFrequency{
	FrequencyWeekly:     {ID: FrequencyWeekly, PeriodsPerYear: 52, Days: 7},
	FrequencyBiweekly:   {ID: FrequencyBiweekly, PeriodsPerYear: 26, Days: 14},
	FrequencyMonthly:    {ID: FrequencyMonthly, PeriodsPerYear: 12, Months: 1},
	FrequencyQuarterly:  {ID: FrequencyQuarterly, PeriodsPerYear: 4, Months: 3},
	FrequencySemiannual: {ID: FrequencySemiannual, PeriodsPerYear: 2, Months: 6},
	FrequencyAnnual:     {ID: FrequencyAnnual, PeriodsPerYear: 1, Months: 12},
}

// LookupFrequency resolves a frequency ID to its definition.
func LookupFrequency(id string) (PaymentFrequency, bool) {
	f, ok := frequencies[id]
	return f, ok
}

// AddPeriods advances a date by n frequency periods.
func (f PaymentFrequency) AddPeriods(t time.Time, n int) time.Time {
	if f.Months > 0 {
		return t.AddDate(0, n*f.Months, 0)
	}
	return t.AddDate(0, 0, n*f.Days)
}
