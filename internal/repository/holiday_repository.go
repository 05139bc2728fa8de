package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type holidayRepository struct {
	db *sqlx.DB
}

func NewHolidayRepository(db *sqlx.DB) HolidayRepository {
	return &holidayRepository{db: db}
}

// ListHolidays returns a year's declared holidays. Rows scoped to an agency or
// portfolio type only apply when the caller's scope matches; NULL-scoped rows
// are global.
func (r *holidayRepository) ListHolidays(ctx context.Context, year int, agencyID, portfolioTypeID string) ([]time.Time, error) {
	query := `
		SELECT holiday_date
		FROM business_holidays
		WHERE holiday_date >= $1 AND holiday_date < $2
		  AND (agency_id IS NULL OR agency_id = $3)
		  AND (portfolio_type_id IS NULL OR portfolio_type_id = $4)
		ORDER BY holiday_date
	`

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := r.db.QueryxContext(ctx, query, from, to, agencyID, portfolioTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		holidays = append(holidays, d)
	}

	return holidays, rows.Err()
}
