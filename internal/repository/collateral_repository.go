package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lendcore/credit-workflow/internal/domain"
	customError "github.com/lendcore/credit-workflow/pkg/errors"
)

type collateralRepository struct {
	db *sqlx.DB
}

func NewCollateralRepository(db *sqlx.DB) CollateralRepository {
	return &collateralRepository{db: db}
}

func (r *collateralRepository) GetCollateral(ctx context.Context, id uuid.UUID) (*domain.Collateral, error) {
	query := `
		SELECT id, description, appraised_value, status, created_at, updated_at
		FROM collateral
		WHERE id = $1
	`

	var col domain.Collateral
	err := r.db.GetContext(ctx, &col, query, id)
	if err != nil {
		return nil, err
	}

	return &col, nil
}

// Link runs in one transaction: the application row is locked first so two
// concurrent link requests on the same application serialize, then the
// collateral row is locked and its status re-checked under the lock.
func (r *collateralRepository) Link(ctx context.Context, link *domain.CollateralLink) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	appStatus, err := lockApplication(ctx, tx, link.ApplicationID)
	if err != nil {
		return err
	}
	if appStatus != domain.StatusDraft {
		return customError.WrapApplicationNotEditable(link.ApplicationID.String(), appStatus)
	}

	var collateralStatus string
	err = tx.QueryRowxContext(ctx,
		`SELECT status FROM collateral WHERE id = $1 FOR UPDATE`,
		link.CollateralID,
	).Scan(&collateralStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapCollateralUnavailable(link.CollateralID.String(), "UNKNOWN")
		}
		return err
	}
	if collateralStatus != domain.CollateralAvailable {
		return customError.WrapCollateralUnavailable(link.CollateralID.String(), collateralStatus)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collateral_links (id, application_id, collateral_id, coverage_value, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, link.ID, link.ApplicationID, link.CollateralID, link.CoverageValue, link.Notes, link.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE collateral SET status = $2, updated_at = $3 WHERE id = $1`,
		link.CollateralID, domain.CollateralLinked, time.Now(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *collateralRepository) Unlink(ctx context.Context, applicationID, linkID uuid.UUID) (*domain.CollateralLink, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	appStatus, err := lockApplication(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if appStatus != domain.StatusDraft {
		return nil, customError.WrapApplicationNotEditable(applicationID.String(), appStatus)
	}

	var link domain.CollateralLink
	err = tx.GetContext(ctx, &link, `
		SELECT id, application_id, collateral_id, coverage_value, notes, created_at
		FROM collateral_links
		WHERE id = $1 AND application_id = $2
	`, linkID, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCollateralLinkNotFound(linkID.String())
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM collateral_links WHERE id = $1`, linkID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE collateral SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		link.CollateralID, domain.CollateralAvailable, time.Now(), domain.CollateralLinked,
	)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *collateralRepository) ListLinks(ctx context.Context, applicationID uuid.UUID) ([]*domain.CollateralLink, error) {
	query := `
		SELECT id, application_id, collateral_id, coverage_value, notes, created_at
		FROM collateral_links
		WHERE application_id = $1
		ORDER BY created_at
	`

	var links []*domain.CollateralLink
	err := r.db.SelectContext(ctx, &links, query, applicationID)
	if err != nil {
		return nil, err
	}

	return links, nil
}

func (r *collateralRepository) ReleaseTerminalLinks(ctx context.Context) (int64, error) {
	query := `
		UPDATE collateral
		SET status = $1, updated_at = $2
		WHERE status = $3
		  AND id IN (
			SELECT cl.collateral_id
			FROM collateral_links cl
			JOIN loan_applications la ON la.id = cl.application_id
			WHERE la.status_code IN ($4, $5)
		  )
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.CollateralAvailable,
		time.Now(),
		domain.CollateralLinked,
		domain.StatusRejected,
		domain.StatusCancelled,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func lockApplication(ctx context.Context, tx *sqlx.Tx, applicationID uuid.UUID) (string, error) {
	var status string
	err := tx.QueryRowxContext(ctx,
		`SELECT status_code FROM loan_applications WHERE id = $1 FOR UPDATE`,
		applicationID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", customError.WrapApplicationNotFound(applicationID.String())
		}
		return "", err
	}
	return status, nil
}
