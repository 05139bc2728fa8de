package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SchedulePreviewRequest carries the optional overrides for a preview. Absent
// fields fall back to the application's requested values, then the product's
// defaults.
type SchedulePreviewRequest struct {
	PrincipalOverride          *decimal.Decimal `json:"principal_override,omitempty"`
	TermOverride               *int             `json:"term_override,omitempty"`
	PaymentFrequencyIDOverride *string          `json:"payment_frequency_id_override,omitempty"`
	NominalRateOverride        *decimal.Decimal `json:"nominal_rate_override,omitempty"`
	FirstDueDateOverride       *time.Time       `json:"first_due_date_override,omitempty"`
}

// Installment is one scheduled payment of the preview.
type Installment struct {
	InstallmentNo   int             `json:"installment_no"`
	DueDateOriginal time.Time       `json:"due_date_original"`
	DueDateAdjusted time.Time       `json:"due_date_adjusted"`
	Principal       decimal.Decimal `json:"principal"`
	Interest        decimal.Decimal `json:"interest"`
	Total           decimal.Decimal `json:"total"`
}

// ScheduleMetadata summarizes the resolved terms the preview was built from.
type ScheduleMetadata struct {
	NominalRate               decimal.Decimal `json:"nominal_rate"`
	EffectivePeriodRate       decimal.Decimal `json:"effective_period_rate"`
	InterestCalculationMethod string          `json:"interest_calculation_method"`
	LastInstallmentAdjustment decimal.Decimal `json:"last_installment_adjustment"`
}

// SchedulePreviewResult is the full preview: metadata plus the ordered
// installment list. Principal portions always sum exactly to the effective
// principal.
type SchedulePreviewResult struct {
	Metadata     ScheduleMetadata `json:"metadata"`
	Installments []Installment    `json:"installments"`
}
