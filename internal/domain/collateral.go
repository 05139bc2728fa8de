package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Collateral registry statuses. The registry owns the full lifecycle; this
// core only moves records between AVAILABLE and LINKED.
const (
	CollateralAvailable = "AVAILABLE"
	CollateralLinked    = "LINKED"
	CollateralReleased  = "RELEASED"
	CollateralDisposed  = "DISPOSED"
)

// Collateral is a registry record referenced by applications, never owned by
// them.
type Collateral struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Description    string          `json:"description" db:"description"`
	AppraisedValue decimal.Decimal `json:"appraised_value" db:"appraised_value"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// CollateralLink attaches a collateral record to an application while it is
// being drafted.
type CollateralLink struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	ApplicationID uuid.UUID        `json:"application_id" db:"application_id"`
	CollateralID  uuid.UUID        `json:"collateral_id" db:"collateral_id"`
	CoverageValue *decimal.Decimal `json:"coverage_value,omitempty" db:"coverage_value"`
	Notes         *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type AddCollateralRequest struct {
	CollateralID  uuid.UUID        `json:"collateral_id" validate:"required"`
	CoverageValue *decimal.Decimal `json:"coverage_value,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type CoverageSummary struct {
	TotalCoverage    decimal.Decimal `json:"total_coverage"`
	RequiredCoverage decimal.Decimal `json:"required_coverage"`
	Shortfall        decimal.Decimal `json:"shortfall"`
}

type CollateralListResponse struct {
	Links    []*CollateralLink `json:"links"`
	Coverage CoverageSummary   `json:"coverage"`
}
