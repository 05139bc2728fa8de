package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lendcore/credit-workflow/internal/domain"
)

// ApplicationRepository defines the persistence boundary for loan applications
type ApplicationRepository interface {
	// Create persists a new application in DRAFT
	Create(ctx context.Context, app *domain.LoanApplication) error

	// GetByID retrieves an application by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)

	// Update persists field edits on a DRAFT application and bumps its version
	Update(ctx context.Context, app *domain.LoanApplication) error

	// CompareAndSwapStatus moves the status from->to only if it still equals
	// from, appending a history entry in the same transaction. Returns false
	// without error when the swap lost the race.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to string, note *string) (bool, error)

	// GetStatusHistory lists the transition audit trail, oldest first
	GetStatusHistory(ctx context.Context, id uuid.UUID) ([]*domain.StatusHistoryEntry, error)
}

// CollateralRepository defines the persistence boundary for the collateral
// registry and application links. Link and Unlink run in a transaction that
// row-locks the application so concurrent coverage changes serialize.
type CollateralRepository interface {
	// GetCollateral retrieves a registry record by ID
	GetCollateral(ctx context.Context, id uuid.UUID) (*domain.Collateral, error)

	// Link attaches AVAILABLE collateral to a DRAFT application and marks the
	// collateral LINKED
	Link(ctx context.Context, link *domain.CollateralLink) error

	// Unlink removes a link from a DRAFT application and releases the
	// collateral back to AVAILABLE
	Unlink(ctx context.Context, applicationID, linkID uuid.UUID) (*domain.CollateralLink, error)

	// ListLinks returns the active links of an application
	ListLinks(ctx context.Context, applicationID uuid.UUID) ([]*domain.CollateralLink, error)

	// ReleaseTerminalLinks releases collateral still LINKED to applications in
	// a terminal status; used by the reconciliation job
	ReleaseTerminalLinks(ctx context.Context) (int64, error)
}

// ProductRepository defines the read-only product catalog lookup
type ProductRepository interface {
	// GetByID retrieves a loan product by its ID
	GetByID(ctx context.Context, id string) (*domain.LoanProduct, error)
}

// HolidayRepository defines the holiday calendar lookup
type HolidayRepository interface {
	// ListHolidays returns the declared holidays of one calendar year for an
	// agency/portfolio scope, including global entries
	ListHolidays(ctx context.Context, year int, agencyID, portfolioTypeID string) ([]time.Time, error)
}
