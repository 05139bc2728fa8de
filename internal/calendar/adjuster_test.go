package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	customError "github.com/lendcore/credit-workflow/pkg/errors"
)

type staticHolidays map[string]struct{}

func (s staticHolidays) IsHoliday(_ context.Context, date time.Time, _, _ string) (bool, error) {
	_, ok := s[date.Format("2006-01-02")]
	return ok, nil
}

type failingHolidays struct{}

func (failingHolidays) IsHoliday(context.Context, time.Time, string, string) (bool, error) {
	return false, errors.New("holiday table unreachable")
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAdjust(t *testing.T) {
	holidays := staticHolidays{
		"2025-07-04": {},
		"2025-07-07": {},
	}
	cal := NewBusinessCalendar(holidays)

	tests := []struct {
		name      string
		date      string
		rule      string
		adjusted  string
		shiftDays int
	}{
		{"business day untouched", "2025-07-02", RuleNextBusinessDay, "2025-07-02", 0},
		{"no adjustment rule", "2025-07-05", RuleNoAdjustment, "2025-07-05", 0},
		// Fri 07-04 and Mon 07-07 are holidays, so next lands on Tue
		{"holiday then weekend then holiday", "2025-07-04", RuleNextBusinessDay, "2025-07-08", 4},
		{"saturday forward", "2025-07-05", RuleNextBusinessDay, "2025-07-08", 3},
		{"holiday backward", "2025-07-04", RulePreviousBusinessDay, "2025-07-03", -1},
		{"sunday backward", "2025-07-06", RulePreviousBusinessDay, "2025-07-03", -3},
		// Sat 08-30: following Monday is already September, so fall back
		{"modified following within month", "2025-07-05", RuleModifiedFollowing, "2025-07-08", 3},
		{"modified following month spill", "2025-08-30", RuleModifiedFollowing, "2025-08-29", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, err := cal.Adjust(context.Background(), day(tt.date), tt.rule, "", "")
			assert.NoError(t, err)
			assert.Equal(t, day(tt.adjusted), adj.AdjustedDate)
			assert.Equal(t, tt.shiftDays, adj.ShiftDays)
		})
	}
}

func TestAdjust_UnknownRule(t *testing.T) {
	cal := NewBusinessCalendar(staticHolidays{})

	_, err := cal.Adjust(context.Background(), day("2025-07-02"), "SOMETIME_LATER", "", "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrValidationFailed))
}

func TestAdjust_SourceFailurePropagates(t *testing.T) {
	cal := NewBusinessCalendar(failingHolidays{})

	_, err := cal.Adjust(context.Background(), day("2025-07-02"), RuleNextBusinessDay, "", "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrCalendarUnavailable))
}

func TestAdjust_IgnoresTimeOfDay(t *testing.T) {
	cal := NewBusinessCalendar(staticHolidays{})

	ts := time.Date(2025, 7, 2, 17, 45, 12, 0, time.UTC)
	adj, err := cal.Adjust(context.Background(), ts, RuleNextBusinessDay, "", "")
	assert.NoError(t, err)
	assert.Equal(t, day("2025-07-02"), adj.AdjustedDate)
	assert.Equal(t, 0, adj.ShiftDays)
}
