package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/credit-workflow/internal/config"
	"github.com/lendcore/credit-workflow/internal/domain"
	"github.com/lendcore/credit-workflow/internal/repository"
	"github.com/lendcore/credit-workflow/internal/schedule"
	"github.com/lendcore/credit-workflow/internal/workflow"
	customError "github.com/lendcore/credit-workflow/pkg/errors"
)

// ApplicationService owns the application lifecycle: creation, draft edits,
// the workflow transitions and schedule preview orchestration. Transitions
// are compare-and-swap on status_code so concurrent racers lose cleanly.
type ApplicationService struct {
	AppRepo        repository.ApplicationRepository
	ProductRepo    repository.ProductRepository
	CollateralRepo repository.CollateralRepository
	Engine         *schedule.Engine
	config         *config.Config
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	productRepo repository.ProductRepository,
	collateralRepo repository.CollateralRepository,
	engine *schedule.Engine,
	cfg *config.Config,
) *ApplicationService {
	return &ApplicationService{
		AppRepo:        appRepo,
		ProductRepo:    productRepo,
		CollateralRepo: collateralRepo,
		Engine:         engine,
		config:         cfg,
	}
}

// CreateApplication opens a new DRAFT application bound to a product. The
// product's frequency is recorded as the suggestion; hard bounds checks run
// at submit time.
func (s *ApplicationService) CreateApplication(ctx context.Context, request *domain.CreateApplicationRequest) (*domain.LoanApplication, error) {
	if err := validateNote(request.Notes); err != nil {
		return nil, err
	}
	if !request.RequestedPrincipal.IsPositive() {
		return nil, customError.WrapValidationFailed("requested principal must be positive")
	}

	product, err := s.getProduct(ctx, request.LoanProductID)
	if err != nil {
		return nil, err
	}

	frequencyID := request.RequestedPaymentFrequencyID
	if frequencyID == "" {
		frequencyID = product.PaymentFrequencyID
	}
	if _, ok := domain.LookupFrequency(frequencyID); !ok {
		return nil, customError.WrapValidationFailed("unknown payment frequency: " + frequencyID)
	}

	suggested := product.PaymentFrequencyID
	now := time.Now()
	app := &domain.LoanApplication{
		ID:                          uuid.New(),
		ClientID:                    request.ClientID,
		LoanProductID:               request.LoanProductID,
		PromoterID:                  request.PromoterID,
		RequestedPrincipal:          request.RequestedPrincipal,
		RequestedTerm:               request.RequestedTerm,
		RequestedPaymentFrequencyID: frequencyID,
		SuggestedPaymentFrequencyID: &suggested,
		RequestedRateOverride:       request.RequestedRateOverride,
		StatusCode:                  domain.StatusDraft,
		Notes:                       request.Notes,
		Version:                     1,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}

	if err := s.AppRepo.Create(ctx, app); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return app, nil
}

// GetApplication returns an application together with its transition history.
func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*domain.ApplicationResponse, error) {
	app, err := s.loadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.AppRepo.GetStatusHistory(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.ApplicationResponse{Application: app, History: history}, nil
}

// UpdateApplication edits the requested terms of a DRAFT application.
func (s *ApplicationService) UpdateApplication(ctx context.Context, id uuid.UUID, request *domain.UpdateApplicationRequest) (*domain.LoanApplication, error) {
	app, err := s.loadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Guard(workflow.OpEdit, app.ID.String(), app.StatusCode); err != nil {
		return nil, err
	}
	if err := validateNote(request.Notes); err != nil {
		return nil, err
	}

	if request.RequestedPrincipal != nil {
		if !request.RequestedPrincipal.IsPositive() {
			return nil, customError.WrapValidationFailed("requested principal must be positive")
		}
		app.RequestedPrincipal = *request.RequestedPrincipal
	}
	if request.RequestedTerm != nil {
		if *request.RequestedTerm <= 0 {
			return nil, customError.WrapValidationFailed("requested term must be positive")
		}
		app.RequestedTerm = *request.RequestedTerm
	}
	if request.RequestedPaymentFrequencyID != nil {
		if _, ok := domain.LookupFrequency(*request.RequestedPaymentFrequencyID); !ok {
			return nil, customError.WrapValidationFailed("unknown payment frequency: " + *request.RequestedPaymentFrequencyID)
		}
		app.RequestedPaymentFrequencyID = *request.RequestedPaymentFrequencyID
	}
	if request.RequestedRateOverride != nil {
		if request.RequestedRateOverride.IsNegative() {
			return nil, customError.WrapValidationFailed("rate override must not be negative")
		}
		app.RequestedRateOverride = request.RequestedRateOverride
	}
	if request.Notes != nil {
		app.Notes = request.Notes
	}

	if err := s.AppRepo.Update(ctx, app); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return app, nil
}

// Submit moves a DRAFT application to SUBMITTED after the hard checks:
// product bounds on principal and term, and collateral coverage when the
// product requires it.
func (s *ApplicationService) Submit(ctx context.Context, id uuid.UUID, note *string) (*domain.LoanApplication, error) {
	app, err := s.loadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Guard(workflow.OpSubmit, app.ID.String(), app.StatusCode); err != nil {
		return nil, err
	}
	if err := validateNote(note); err != nil {
		return nil, err
	}

	product, err := s.getProduct(ctx, app.LoanProductID)
	if err != nil {
		return nil, err
	}

	if !product.AmountInBounds(app.RequestedPrincipal) {
		return nil, customError.WrapValidationFailed(fmt.Sprintf(
			"requested principal %s outside product bounds [%s, %s]",
			app.RequestedPrincipal, product.MinAmount, product.MaxAmount))
	}
	if !product.TermInBounds(app.RequestedTerm) {
		return nil, customError.WrapValidationFailed(fmt.Sprintf(
			"requested term %d outside product bounds [%d, %d]",
			app.RequestedTerm, product.MinTerm, product.MaxTerm))
	}

	if product.RequiresCollateral {
		if err := s.checkCoverage(ctx, app, product); err != nil {
			return nil, err
		}
	}

	return s.swapStatus(ctx, app, workflow.OpSubmit, note)
}

// Approve moves a SUBMITTED application to APPROVED.
func (s *ApplicationService) Approve(ctx context.Context, id uuid.UUID, note *string) (*domain.LoanApplication, error) {
	return s.transition(ctx, id, workflow.OpApprove, note)
}

// Reject moves a SUBMITTED application to REJECTED.
func (s *ApplicationService) Reject(ctx context.Context, id uuid.UUID, reason *string) (*domain.LoanApplication, error) {
	return s.transition(ctx, id, workflow.OpReject, reason)
}

// Cancel moves a DRAFT or SUBMITTED application to CANCELLED.
func (s *ApplicationService) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*domain.LoanApplication, error) {
	return s.transition(ctx, id, workflow.OpCancel, reason)
}

// PreviewSchedule generates the amortization preview for an application in
// DRAFT or SUBMITTED. Read-only.
func (s *ApplicationService) PreviewSchedule(ctx context.Context, id uuid.UUID, overrides domain.SchedulePreviewRequest) (*domain.SchedulePreviewResult, error) {
	app, err := s.loadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Guard(workflow.OpPreviewSchedule, app.ID.String(), app.StatusCode); err != nil {
		return nil, err
	}

	product, err := s.getProduct(ctx, app.LoanProductID)
	if err != nil {
		return nil, err
	}

	return s.Engine.Generate(ctx, schedule.Input{
		Application:      app,
		Product:          product,
		Overrides:        overrides,
		DisbursementDate: time.Now().Truncate(24 * time.Hour),
		AgencyID:         s.config.Business.AgencyID,
		PortfolioTypeID:  s.config.Business.PortfolioTypeID,
	})
}

func (s *ApplicationService) transition(ctx context.Context, id uuid.UUID, op workflow.Operation, note *string) (*domain.LoanApplication, error) {
	app, err := s.loadApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Guard(op, app.ID.String(), app.StatusCode); err != nil {
		return nil, err
	}
	if err := validateNote(note); err != nil {
		return nil, err
	}

	return s.swapStatus(ctx, app, op, note)
}

func (s *ApplicationService) swapStatus(ctx context.Context, app *domain.LoanApplication, op workflow.Operation, note *string) (*domain.LoanApplication, error) {
	target, ok := workflow.Target(op)
	if !ok {
		return nil, customError.WrapInvalidTransition(app.ID.String(), app.StatusCode, string(op))
	}

	swapped, err := s.AppRepo.CompareAndSwapStatus(ctx, app.ID, app.StatusCode, target, note)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !swapped {
		// Status moved between our read and the write; the racer won.
		return nil, customError.WrapConcurrentModification(app.ID.String())
	}

	app.StatusCode = target
	app.Version++
	if note != nil {
		app.Notes = note
	}
	return app, nil
}

func (s *ApplicationService) checkCoverage(ctx context.Context, app *domain.LoanApplication, product *domain.LoanProduct) error {
	links, err := s.CollateralRepo.ListLinks(ctx, app.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	total := totalCoverage(links)
	required := product.RequiredCoverage(app.RequestedPrincipal)
	if total.LessThan(required) {
		return customError.WrapInsufficientCollateral(required.String(), total.String())
	}
	return nil
}

func (s *ApplicationService) loadApplication(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	return loadApplication(ctx, s.AppRepo, id)
}

func (s *ApplicationService) getProduct(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	return getProduct(ctx, s.ProductRepo, productID)
}

func loadApplication(ctx context.Context, repo repository.ApplicationRepository, id uuid.UUID) (*domain.LoanApplication, error) {
	app, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapApplicationNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return app, nil
}

func getProduct(ctx context.Context, repo repository.ProductRepository, productID string) (*domain.LoanProduct, error) {
	product, err := repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapProductNotFound(productID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return product, nil
}

func validateNote(note *string) error {
	if note != nil && utf8.RuneCountInString(*note) > domain.MaxNoteLength {
		return customError.WrapValidationFailed(fmt.Sprintf("note exceeds %d characters", domain.MaxNoteLength))
	}
	return nil
}

func totalCoverage(links []*domain.CollateralLink) decimal.Decimal {
	total := decimal.Zero
	for _, link := range links {
		if link.CoverageValue != nil {
			total = total.Add(*link.CoverageValue)
		}
	}
	return total
}
