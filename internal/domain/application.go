package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application lifecycle statuses.
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// MaxNoteLength bounds the free-text note/reason accepted on transitions.
const MaxNoteLength = 500

// LoanApplication represents a credit application working its way from draft
// to a decision. Version increments on every persisted mutation and backs the
// optimistic checks on collateral changes.
type LoanApplication struct {
	ID                          uuid.UUID       `json:"id" db:"id"`
	ClientID                    string          `json:"client_id" db:"client_id"`
	LoanProductID               string          `json:"loan_product_id" db:"loan_product_id"`
	PromoterID                  string          `json:"promoter_id" db:"promoter_id"`
	RequestedPrincipal          decimal.Decimal `json:"requested_principal" db:"requested_principal"`
	RequestedTerm               int             `json:"requested_term" db:"requested_term"`
	RequestedPaymentFrequencyID string          `json:"requested_payment_frequency_id" db:"requested_payment_frequency_id"`
	SuggestedPaymentFrequencyID *string         `json:"suggested_payment_frequency_id,omitempty" db:"suggested_payment_frequency_id"`
	RequestedRateOverride       *decimal.Decimal `json:"requested_rate_override,omitempty" db:"requested_rate_override"`
	StatusCode                  string          `json:"status_code" db:"status_code"`
	Notes                       *string         `json:"notes,omitempty" db:"notes"`
	Version                     int             `json:"version" db:"version"`
	CreatedAt                   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time       `json:"updated_at" db:"updated_at"`
}

// StatusHistoryEntry records one lifecycle transition for audit purposes.
type StatusHistoryEntry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ApplicationID uuid.UUID `json:"application_id" db:"application_id"`
	FromStatus    string    `json:"from_status" db:"from_status"`
	ToStatus      string    `json:"to_status" db:"to_status"`
	Note          *string   `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type CreateApplicationRequest struct {
	ClientID                    string          `json:"client_id" validate:"required"`
	LoanProductID               string          `json:"loan_product_id" validate:"required"`
	PromoterID                  string          `json:"promoter_id" validate:"required"`
	RequestedPrincipal          decimal.Decimal `json:"requested_principal" validate:"required"`
	RequestedTerm               int             `json:"requested_term" validate:"required,gt=0"`
	RequestedPaymentFrequencyID string          `json:"requested_payment_frequency_id"`
	RequestedRateOverride       *decimal.Decimal `json:"requested_rate_override,omitempty"`
	Notes                       *string         `json:"notes,omitempty"`
}

type UpdateApplicationRequest struct {
	RequestedPrincipal          *decimal.Decimal `json:"requested_principal,omitempty"`
	RequestedTerm               *int             `json:"requested_term,omitempty"`
	RequestedPaymentFrequencyID *string          `json:"requested_payment_frequency_id,omitempty"`
	RequestedRateOverride       *decimal.Decimal `json:"requested_rate_override,omitempty"`
	Notes                       *string          `json:"notes,omitempty"`
}

type TransitionRequest struct {
	Note *string `json:"note,omitempty"`
}

type ApplicationResponse struct {
	Application *LoanApplication     `json:"application"`
	History     []*StatusHistoryEntry `json:"history,omitempty"`
}
