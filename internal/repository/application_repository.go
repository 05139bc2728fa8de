package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendcore/credit-workflow/internal/domain"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			id, client_id, loan_product_id, promoter_id,
			requested_principal, requested_term, requested_payment_frequency_id,
			suggested_payment_frequency_id, requested_rate_override,
			status_code, notes, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		app.ID,
		app.ClientID,
		app.LoanProductID,
		app.PromoterID,
		app.RequestedPrincipal,
		app.RequestedTerm,
		app.RequestedPaymentFrequencyID,
		app.SuggestedPaymentFrequencyID,
		app.RequestedRateOverride,
		app.StatusCode,
		app.Notes,
		app.Version,
		app.CreatedAt,
		app.UpdatedAt,
	)

	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	query := `
		SELECT id, client_id, loan_product_id, promoter_id,
		       requested_principal, requested_term, requested_payment_frequency_id,
		       suggested_payment_frequency_id, requested_rate_override,
		       status_code, notes, version, created_at, updated_at
		FROM loan_applications
		WHERE id = $1
	`

	var app domain.LoanApplication
	err := r.db.GetContext(ctx, &app, query, id)
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.LoanApplication) error {
	query := `
		UPDATE loan_applications
		SET requested_principal = $2,
		    requested_term = $3,
		    requested_payment_frequency_id = $4,
		    requested_rate_override = $5,
		    notes = $6,
		    version = version + 1,
		    updated_at = $7
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		app.ID,
		app.RequestedPrincipal,
		app.RequestedTerm,
		app.RequestedPaymentFrequencyID,
		app.RequestedRateOverride,
		app.Notes,
		time.Now(),
	)

	return err
}

func (r *applicationRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to string, note *string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE loan_applications
		SET status_code = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND status_code = $2
	`, id, from, to, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO application_status_history (id, application_id, from_status, to_status, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), id, from, to, note, time.Now())
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *applicationRepository) GetStatusHistory(ctx context.Context, id uuid.UUID) ([]*domain.StatusHistoryEntry, error) {
	query := `
		SELECT id, application_id, from_status, to_status, note, created_at
		FROM application_status_history
		WHERE application_id = $1
		ORDER BY created_at
	`

	var history []*domain.StatusHistoryEntry
	err := r.db.SelectContext(ctx, &history, query, id)
	if err != nil {
		return nil, err
	}

	return history, nil
}
