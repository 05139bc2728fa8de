package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interest calculation methods supported by the schedule engine.
const (
	InterestByDays   = "INTEREST_BY_DAYS"
	InterestByPeriod = "INTEREST_BY_PERIOD"
	InterestFlat     = "FLAT"
)

// LoanProduct is the read-only catalog entry an application is bound to.
// Rates are in percentage units (24 means 24% nominal annual).
type LoanProduct struct {
	ID                        string          `json:"id" db:"id"`
	Name                      string          `json:"name" db:"name"`
	MinAmount                 decimal.Decimal `json:"min_amount" db:"min_amount"`
	MaxAmount                 decimal.Decimal `json:"max_amount" db:"max_amount"`
	MinTerm                   int             `json:"min_term" db:"min_term"`
	MaxTerm                   int             `json:"max_term" db:"max_term"`
	PaymentFrequencyID        string          `json:"payment_frequency_id" db:"payment_frequency_id"`
	NominalRate               decimal.Decimal `json:"nominal_rate" db:"nominal_rate"`
	InterestCalculationMethod string          `json:"interest_calculation_method" db:"interest_calculation_method"`
	RequiresCollateral        bool            `json:"requires_collateral" db:"requires_collateral"`
	MinCollateralRatio        decimal.Decimal `json:"min_collateral_ratio" db:"min_collateral_ratio"`
	DueDateRuleCode           string          `json:"due_date_rule_code" db:"due_date_rule_code"`
	CreatedAt                 time.Time       `json:"created_at" db:"created_at"`
}

// AmountInBounds reports whether a principal falls within the product's range.
func (p *LoanProduct) AmountInBounds(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}

// TermInBounds reports whether a term falls within the product's range.
func (p *LoanProduct) TermInBounds(term int) bool {
	return term >= p.MinTerm && term <= p.MaxTerm
}

// RequiredCoverage returns the minimum collateral coverage for a principal,
// zero when the product does not require collateral.
func (p *LoanProduct) RequiredCoverage(principal decimal.Decimal) decimal.Decimal {
	if !p.RequiresCollateral {
		return decimal.Zero
	}
	return principal.Mul(p.MinCollateralRatio)
}
