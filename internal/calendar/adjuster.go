package calendar

import (
	"context"
	"time"

	customError "github.com/lendcore/credit-workflow/pkg/errors"
	"github.com/lendcore/credit-workflow/pkg/utils"
)

// Due-date adjustment rule codes.
const (
	RuleNoAdjustment        = "NO_ADJUSTMENT"
	RuleNextBusinessDay     = "NEXT_BUSINESS_DAY"
	RulePreviousBusinessDay = "PREVIOUS_BUSINESS_DAY"
	RuleModifiedFollowing   = "MODIFIED_FOLLOWING"
)

// maxShift bounds how far an adjustment may walk before the calendar is
// considered broken (e.g. a whole year marked as holidays).
const maxShift = 30

// Adjustment is the outcome of shifting a date onto a business day.
type Adjustment struct {
	AdjustedDate time.Time `json:"adjusted_date"`
	ShiftDays    int       `json:"shift_days"`
}

// Adjuster moves calendar dates onto qualifying business days.
type Adjuster interface {
	Adjust(ctx context.Context, date time.Time, ruleCode, agencyID, portfolioTypeID string) (Adjustment, error)
}

// HolidaySource answers whether a date is a declared holiday for an agency
// and portfolio type. Empty agency/portfolio means the global calendar.
type HolidaySource interface {
	IsHoliday(ctx context.Context, date time.Time, agencyID, portfolioTypeID string) (bool, error)
}

// BusinessCalendar adjusts dates using weekend rules plus a holiday source.
type BusinessCalendar struct {
	holidays HolidaySource
}

func NewBusinessCalendar(holidays HolidaySource) *BusinessCalendar {
	return &BusinessCalendar{holidays: holidays}
}

func (c *BusinessCalendar) Adjust(ctx context.Context, date time.Time, ruleCode, agencyID, portfolioTypeID string) (Adjustment, error) {
	date = utils.TruncateToDay(date)

	if ruleCode == "" || ruleCode == RuleNoAdjustment {
		return Adjustment{AdjustedDate: date}, nil
	}

	switch ruleCode {
	case RuleNextBusinessDay:
		return c.walk(ctx, date, 1, agencyID, portfolioTypeID)
	case RulePreviousBusinessDay:
		return c.walk(ctx, date, -1, agencyID, portfolioTypeID)
	case RuleModifiedFollowing:
		adj, err := c.walk(ctx, date, 1, agencyID, portfolioTypeID)
		if err != nil {
			return Adjustment{}, err
		}
		// Forward adjustment must not spill into the next month.
		if adj.AdjustedDate.Month() != date.Month() || adj.AdjustedDate.Year() != date.Year() {
			return c.walk(ctx, date, -1, agencyID, portfolioTypeID)
		}
		return adj, nil
	default:
		return Adjustment{}, customError.WrapValidationFailed("unknown due date rule code: " + ruleCode)
	}
}

func (c *BusinessCalendar) walk(ctx context.Context, date time.Time, step int, agencyID, portfolioTypeID string) (Adjustment, error) {
	current := date
	shift := 0
	for {
		business, err := c.isBusinessDay(ctx, current, agencyID, portfolioTypeID)
		if err != nil {
			return Adjustment{}, customError.WrapCalendarUnavailable(err)
		}
		if business {
			return Adjustment{AdjustedDate: current, ShiftDays: shift}, nil
		}
		if shift >= maxShift || shift <= -maxShift {
			return Adjustment{}, customError.WrapCalendarUnavailable(nil)
		}
		current = current.AddDate(0, 0, step)
		shift += step
	}
}

func (c *BusinessCalendar) isBusinessDay(ctx context.Context, date time.Time, agencyID, portfolioTypeID string) (bool, error) {
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}
	holiday, err := c.holidays.IsHoliday(ctx, date, agencyID, portfolioTypeID)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}
