package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/credit-workflow/internal/domain"
	"github.com/lendcore/credit-workflow/internal/repository"
	"github.com/lendcore/credit-workflow/internal/workflow"
	customError "github.com/lendcore/credit-workflow/pkg/errors"
)

// CollateralService manages the collateral links of a draft application. The
// repository serializes link changes per application with a row lock, so the
// guard here is a fast pre-check and the lock-holding transaction re-verifies.
type CollateralService struct {
	AppRepo        repository.ApplicationRepository
	CollateralRepo repository.CollateralRepository
	ProductRepo    repository.ProductRepository
}

func NewCollateralService(
	appRepo repository.ApplicationRepository,
	collateralRepo repository.CollateralRepository,
	productRepo repository.ProductRepository,
) *CollateralService {
	return &CollateralService{
		AppRepo:        appRepo,
		CollateralRepo: collateralRepo,
		ProductRepo:    productRepo,
	}
}

// AddCollateral links an AVAILABLE collateral record to a DRAFT application.
// The registry moves the collateral to LINKED as the observable side effect.
func (s *CollateralService) AddCollateral(ctx context.Context, applicationID uuid.UUID, request *domain.AddCollateralRequest) (*domain.CollateralLink, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !workflow.Allowed(workflow.OpLinkCollateral, app.StatusCode) {
		return nil, customError.WrapApplicationNotEditable(app.ID.String(), app.StatusCode)
	}
	if err := validateNote(request.Notes); err != nil {
		return nil, err
	}
	if request.CoverageValue != nil && request.CoverageValue.IsNegative() {
		return nil, customError.WrapValidationFailed("coverage value must not be negative")
	}

	link := &domain.CollateralLink{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		CollateralID:  request.CollateralID,
		CoverageValue: request.CoverageValue,
		Notes:         request.Notes,
		CreatedAt:     time.Now(),
	}

	if err := s.CollateralRepo.Link(ctx, link); err != nil {
		return nil, wrapRepoError(err)
	}

	return link, nil
}

// RemoveCollateral detaches a link from a DRAFT application and releases the
// collateral back toward AVAILABLE.
func (s *CollateralService) RemoveCollateral(ctx context.Context, applicationID, linkID uuid.UUID) (*domain.CollateralLink, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !workflow.Allowed(workflow.OpUnlinkCollateral, app.StatusCode) {
		return nil, customError.WrapApplicationNotEditable(app.ID.String(), app.StatusCode)
	}

	link, err := s.CollateralRepo.Unlink(ctx, applicationID, linkID)
	if err != nil {
		return nil, wrapRepoError(err)
	}

	return link, nil
}

// ListCollateral returns the active links plus the coverage position against
// the product's requirement.
func (s *CollateralService) ListCollateral(ctx context.Context, applicationID uuid.UUID) (*domain.CollateralListResponse, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	product, err := s.getProduct(ctx, app.LoanProductID)
	if err != nil {
		return nil, err
	}

	links, err := s.CollateralRepo.ListLinks(ctx, applicationID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	total := totalCoverage(links)
	required := product.RequiredCoverage(app.RequestedPrincipal)
	shortfall := required.Sub(total)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}

	return &domain.CollateralListResponse{
		Links: links,
		Coverage: domain.CoverageSummary{
			TotalCoverage:    total,
			RequiredCoverage: required,
			Shortfall:        shortfall,
		},
	}, nil
}

func (s *CollateralService) loadApplication(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	return loadApplication(ctx, s.AppRepo, id)
}

func (s *CollateralService) getProduct(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	return getProduct(ctx, s.ProductRepo, productID)
}

// wrapRepoError keeps typed business errors intact and wraps everything else
// as a database failure.
func wrapRepoError(err error) error {
	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		return err
	}
	return customError.WrapDatabaseError(err)
}
