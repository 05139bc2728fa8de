package schedule

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendcore/credit-workflow/internal/calendar"
	"github.com/lendcore/credit-workflow/internal/domain"
	customError "github.com/lendcore/credit-workflow/pkg/errors"
	"github.com/lendcore/credit-workflow/pkg/utils"
)

var (
	oneHundred = decimal.NewFromInt(100)
	daysBasis  = decimal.NewFromInt(360)
)

// Input bundles everything a preview depends on. DisbursementDate anchors the
// default first due date and the day counts of the INTEREST_BY_DAYS method;
// the caller supplies it so the engine stays deterministic.
type Input struct {
	Application      *domain.LoanApplication
	Product          *domain.LoanProduct
	Overrides        domain.SchedulePreviewRequest
	DisbursementDate time.Time
	AgencyID         string
	PortfolioTypeID  string
}

// Engine generates amortization schedule previews. It performs no writes and
// holds no state beyond the calendar adjuster it consults for due dates.
type Engine struct {
	adjuster calendar.Adjuster
}

func NewEngine(adjuster calendar.Adjuster) *Engine {
	return &Engine{adjuster: adjuster}
}

// Generate resolves the effective terms (override, then application, then
// product), walks the installments and returns the preview. Identical inputs
// always produce identical output.
func (e *Engine) Generate(ctx context.Context, in Input) (*domain.SchedulePreviewResult, error) {
	if in.Application == nil || in.Product == nil {
		return nil, customError.WrapValidationFailed("application and product are required")
	}
	if in.DisbursementDate.IsZero() {
		return nil, customError.WrapValidationFailed("disbursement date is required")
	}

	principal, err := e.resolvePrincipal(in)
	if err != nil {
		return nil, err
	}
	term, err := e.resolveTerm(in)
	if err != nil {
		return nil, err
	}
	frequency, err := e.resolveFrequency(in)
	if err != nil {
		return nil, err
	}
	nominalRate, err := e.resolveNominalRate(in)
	if err != nil {
		return nil, err
	}

	firstDueDate := frequency.AddPeriods(in.DisbursementDate, 1)
	if in.Overrides.FirstDueDateOverride != nil {
		firstDueDate = *in.Overrides.FirstDueDateOverride
	}

	method := in.Product.InterestCalculationMethod
	periodsPerYear := decimal.NewFromInt(int64(frequency.PeriodsPerYear))
	periodRate := nominalRate.Div(oneHundred).Div(periodsPerYear)

	// Equal principal portions; the rounding residual lands on the last one.
	evenPrincipal := principal.Div(decimal.NewFromInt(int64(term))).Round(2)
	lastPrincipal := principal.Sub(evenPrincipal.Mul(decimal.NewFromInt(int64(term - 1))))

	installments := make([]domain.Installment, 0, term)
	balance := principal
	prevDueDate := in.DisbursementDate

	for no := 1; no <= term; no++ {
		original := frequency.AddPeriods(firstDueDate, no-1)

		adjusted, err := e.adjuster.Adjust(ctx, original, in.Product.DueDateRuleCode, in.AgencyID, in.PortfolioTypeID)
		if err != nil {
			return nil, err
		}

		principalDue := evenPrincipal
		if no == term {
			principalDue = lastPrincipal
		}

		var interest decimal.Decimal
		switch method {
		case domain.InterestFlat:
			interest = principal.Mul(periodRate).Round(2)
		case domain.InterestByPeriod:
			interest = balance.Mul(periodRate).Round(2)
		case domain.InterestByDays:
			days := utils.DaysBetween(prevDueDate, adjusted.AdjustedDate)
			interest = balance.Mul(nominalRate).Div(oneHundred).
				Mul(decimal.NewFromInt(int64(days))).Div(daysBasis).Round(2)
		default:
			return nil, customError.WrapValidationFailed("unknown interest calculation method: " + method)
		}

		installments = append(installments, domain.Installment{
			InstallmentNo:   no,
			DueDateOriginal: original,
			DueDateAdjusted: adjusted.AdjustedDate,
			Principal:       principalDue,
			Interest:        interest,
			Total:           principalDue.Add(interest),
		})

		balance = balance.Sub(principalDue)
		prevDueDate = adjusted.AdjustedDate
	}

	return &domain.SchedulePreviewResult{
		Metadata: domain.ScheduleMetadata{
			NominalRate:               nominalRate,
			EffectivePeriodRate:       periodRate,
			InterestCalculationMethod: method,
			LastInstallmentAdjustment: lastPrincipal.Sub(evenPrincipal),
		},
		Installments: installments,
	}, nil
}

func (e *Engine) resolvePrincipal(in Input) (decimal.Decimal, error) {
	if o := in.Overrides.PrincipalOverride; o != nil {
		if !o.IsPositive() {
			return decimal.Zero, customError.WrapInvalidOverride("principal", "must be positive")
		}
		if !in.Product.AmountInBounds(*o) {
			return decimal.Zero, customError.WrapInvalidOverride("principal", "outside product amount bounds")
		}
		return *o, nil
	}
	if !in.Application.RequestedPrincipal.IsPositive() {
		return decimal.Zero, customError.WrapValidationFailed("requested principal must be positive")
	}
	return in.Application.RequestedPrincipal, nil
}

func (e *Engine) resolveTerm(in Input) (int, error) {
	if o := in.Overrides.TermOverride; o != nil {
		if !in.Product.TermInBounds(*o) {
			return 0, customError.WrapInvalidOverride("term", "outside product term bounds")
		}
		return *o, nil
	}
	if in.Application.RequestedTerm <= 0 {
		return 0, customError.WrapValidationFailed("requested term must be positive")
	}
	return in.Application.RequestedTerm, nil
}

func (e *Engine) resolveFrequency(in Input) (domain.PaymentFrequency, error) {
	if o := in.Overrides.PaymentFrequencyIDOverride; o != nil {
		freq, ok := domain.LookupFrequency(*o)
		if !ok {
			return domain.PaymentFrequency{}, customError.WrapInvalidOverride("payment_frequency", "unknown frequency "+*o)
		}
		return freq, nil
	}

	candidates := []string{in.Application.RequestedPaymentFrequencyID}
	if in.Application.SuggestedPaymentFrequencyID != nil {
		candidates = append(candidates, *in.Application.SuggestedPaymentFrequencyID)
	}
	candidates = append(candidates, in.Product.PaymentFrequencyID)

	for _, id := range candidates {
		if id == "" {
			continue
		}
		if freq, ok := domain.LookupFrequency(id); ok {
			return freq, nil
		}
	}
	return domain.PaymentFrequency{}, customError.WrapUnresolvedFrequency()
}

func (e *Engine) resolveNominalRate(in Input) (decimal.Decimal, error) {
	if o := in.Overrides.NominalRateOverride; o != nil {
		if o.IsNegative() {
			return decimal.Zero, customError.WrapInvalidOverride("nominal_rate", "must not be negative")
		}
		return *o, nil
	}
	if in.Application.RequestedRateOverride != nil {
		return *in.Application.RequestedRateOverride, nil
	}
	return in.Product.NominalRate, nil
}
