package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lendcore/credit-workflow/internal/calendar"
	"github.com/lendcore/credit-workflow/internal/config"
	"github.com/lendcore/credit-workflow/internal/domain"
	"github.com/lendcore/credit-workflow/internal/schedule"
	customError "github.com/lendcore/credit-workflow/pkg/errors"
	"github.com/lendcore/credit-workflow/tests/mocks"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func testProduct() *domain.LoanProduct {
	return &domain.LoanProduct{
		ID:                        "PROD-STD",
		MinAmount:                 dec("1000"),
		MaxAmount:                 dec("50000"),
		MinTerm:                   6,
		MaxTerm:                   36,
		PaymentFrequencyID:        domain.FrequencyMonthly,
		NominalRate:               dec("24"),
		InterestCalculationMethod: domain.InterestFlat,
	}
}

func draftApplication() *domain.LoanApplication {
	return &domain.LoanApplication{
		ID:                          uuid.New(),
		ClientID:                    "CLI-1",
		LoanProductID:               "PROD-STD",
		PromoterID:                  "PRM-1",
		RequestedPrincipal:          dec("10000"),
		RequestedTerm:               12,
		RequestedPaymentFrequencyID: domain.FrequencyMonthly,
		StatusCode:                  domain.StatusDraft,
		Version:                     1,
	}
}

func newService(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository) *ApplicationService {
	return NewApplicationService(appRepo, productRepo, collateralRepo, nil, &config.Config{})
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name          string
		note          *string
		setupMocks    func(*mocks.MockApplicationRepository, *mocks.MockProductRepository, *mocks.MockCollateralRepository, *domain.LoanApplication)
		expectedError error
		expectedState string
	}{
		{
			name: "Success - Submit from draft",
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
				productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(testProduct(), nil)
				appRepo.On("CompareAndSwapStatus", mock.Anything, app.ID, domain.StatusDraft, domain.StatusSubmitted, (*string)(nil)).Return(true, nil)
			},
			expectedState: domain.StatusSubmitted,
		},
		{
			name: "Failure - Already submitted",
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				app.StatusCode = domain.StatusSubmitted
				appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
			},
			expectedError: customError.ErrInvalidTransition,
		},
		{
			name: "Failure - Lost the compare-and-swap race",
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
				productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(testProduct(), nil)
				appRepo.On("CompareAndSwapStatus", mock.Anything, app.ID, domain.StatusDraft, domain.StatusSubmitted, (*string)(nil)).Return(false, nil)
			},
			expectedError: customError.ErrConcurrentModification,
		},
		{
			name: "Failure - Note too long",
			note: strPtr(strings.Repeat("x", domain.MaxNoteLength+1)),
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
			},
			expectedError: customError.ErrValidationFailed,
		},
		{
			name: "Failure - Principal outside product bounds",
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				app.RequestedPrincipal = dec("90000")
				appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
				productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(testProduct(), nil)
			},
			expectedError: customError.ErrValidationFailed,
		},
		{
			name: "Failure - Term outside product bounds",
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				app.RequestedTerm = 48
				appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
				productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(testProduct(), nil)
			},
			expectedError: customError.ErrValidationFailed,
		},
		{
			name: "Failure - Application not found",
			setupMocks: func(appRepo *mocks.MockApplicationRepository, productRepo *mocks.MockProductRepository, collateralRepo *mocks.MockCollateralRepository, app *domain.LoanApplication) {
				appRepo.On("GetByID", mock.Anything, app.ID).Return(nil, sql.ErrNoRows)
			},
			expectedError: customError.ErrApplicationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appRepo := &mocks.MockApplicationRepository{}
			productRepo := &mocks.MockProductRepository{}
			collateralRepo := &mocks.MockCollateralRepository{}
			app := draftApplication()

			tt.setupMocks(appRepo, productRepo, collateralRepo, app)

			service := newService(appRepo, productRepo, collateralRepo)
			result, err := service.Submit(context.Background(), app.ID, tt.note)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedState, result.StatusCode)
			}

			appRepo.AssertExpectations(t)
			productRepo.AssertExpectations(t)
		})
	}
}

func TestSubmit_CollateralCoverage(t *testing.T) {
	product := testProduct()
	product.RequiresCollateral = true
	product.MinCollateralRatio = dec("1.2")

	tests := []struct {
		name          string
		coverage      []*domain.CollateralLink
		expectedError error
	}{
		{
			name: "Success - Coverage meets the ratio",
			coverage: []*domain.CollateralLink{
				{CoverageValue: decPtr("12500.00")},
			},
		},
		{
			name: "Failure - Coverage below the ratio",
			coverage: []*domain.CollateralLink{
				{CoverageValue: decPtr("11900.00")},
			},
			expectedError: customError.ErrInsufficientCollateral,
		},
		{
			name: "Success - Coverage summed across links",
			coverage: []*domain.CollateralLink{
				{CoverageValue: decPtr("6000.00")},
				{CoverageValue: decPtr("6000.00")},
				{CoverageValue: nil},
			},
		},
		{
			name:          "Failure - No links at all",
			coverage:      []*domain.CollateralLink{},
			expectedError: customError.ErrInsufficientCollateral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appRepo := &mocks.MockApplicationRepository{}
			productRepo := &mocks.MockProductRepository{}
			collateralRepo := &mocks.MockCollateralRepository{}
			app := draftApplication()

			appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
			productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(product, nil)
			collateralRepo.On("ListLinks", mock.Anything, app.ID).Return(tt.coverage, nil)
			if tt.expectedError == nil {
				appRepo.On("CompareAndSwapStatus", mock.Anything, app.ID, domain.StatusDraft, domain.StatusSubmitted, (*string)(nil)).Return(true, nil)
			}

			service := newService(appRepo, productRepo, collateralRepo)
			result, err := service.Submit(context.Background(), app.ID, nil)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, domain.StatusSubmitted, result.StatusCode)
			}

			appRepo.AssertExpectations(t)
			collateralRepo.AssertExpectations(t)
		})
	}
}

func TestApproveRejectCancel(t *testing.T) {
	tests := []struct {
		name          string
		fromStatus    string
		call          func(*ApplicationService, context.Context, uuid.UUID) (*domain.LoanApplication, error)
		toStatus      string
		expectedError error
	}{
		{
			name:       "Approve submitted",
			fromStatus: domain.StatusSubmitted,
			call: func(s *ApplicationService, ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
				return s.Approve(ctx, id, nil)
			},
			toStatus: domain.StatusApproved,
		},
		{
			name:       "Reject submitted",
			fromStatus: domain.StatusSubmitted,
			call: func(s *ApplicationService, ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
				return s.Reject(ctx, id, strPtr("insufficient income"))
			},
			toStatus: domain.StatusRejected,
		},
		{
			name:       "Cancel draft",
			fromStatus: domain.StatusDraft,
			call: func(s *ApplicationService, ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
				return s.Cancel(ctx, id, strPtr("client withdrew"))
			},
			toStatus: domain.StatusCancelled,
		},
		{
			name:       "Cancel submitted",
			fromStatus: domain.StatusSubmitted,
			call: func(s *ApplicationService, ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
				return s.Cancel(ctx, id, nil)
			},
			toStatus: domain.StatusCancelled,
		},
		{
			name:       "Approve draft fails",
			fromStatus: domain.StatusDraft,
			call: func(s *ApplicationService, ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
				return s.Approve(ctx, id, nil)
			},
			expectedError: customError.ErrInvalidTransition,
		},
		{
			name:       "Cancel rejected fails",
			fromStatus: domain.StatusRejected,
			call: func(s *ApplicationService, ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
				return s.Cancel(ctx, id, nil)
			},
			expectedError: customError.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appRepo := &mocks.MockApplicationRepository{}
			app := draftApplication()
			app.StatusCode = tt.fromStatus

			appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
			if tt.expectedError == nil {
				appRepo.On("CompareAndSwapStatus", mock.Anything, app.ID, tt.fromStatus, tt.toStatus, mock.Anything).Return(true, nil)
			}

			service := newService(appRepo, &mocks.MockProductRepository{}, &mocks.MockCollateralRepository{})
			result, err := tt.call(service, context.Background(), app.ID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.toStatus, result.StatusCode)
			}

			appRepo.AssertExpectations(t)
		})
	}
}

func TestUpdateApplication(t *testing.T) {
	t.Run("Success - Edit draft fields", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		app := draftApplication()

		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		appRepo.On("Update", mock.Anything, mock.MatchedBy(func(a *domain.LoanApplication) bool {
			return a.RequestedPrincipal.Equal(dec("15000")) && a.RequestedTerm == 24
		})).Return(nil)

		service := newService(appRepo, &mocks.MockProductRepository{}, &mocks.MockCollateralRepository{})

		term := 24
		result, err := service.UpdateApplication(context.Background(), app.ID, &domain.UpdateApplicationRequest{
			RequestedPrincipal: decPtr("15000"),
			RequestedTerm:      &term,
		})
		assert.NoError(t, err)
		assert.True(t, result.RequestedPrincipal.Equal(dec("15000")))

		appRepo.AssertExpectations(t)
	})

	t.Run("Failure - Edit after submission", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		app := draftApplication()
		app.StatusCode = domain.StatusSubmitted

		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		service := newService(appRepo, &mocks.MockProductRepository{}, &mocks.MockCollateralRepository{})

		_, err := service.UpdateApplication(context.Background(), app.ID, &domain.UpdateApplicationRequest{
			RequestedPrincipal: decPtr("15000"),
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrInvalidTransition))
	})

	t.Run("Failure - Unknown frequency", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		app := draftApplication()

		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		service := newService(appRepo, &mocks.MockProductRepository{}, &mocks.MockCollateralRepository{})

		_, err := service.UpdateApplication(context.Background(), app.ID, &domain.UpdateApplicationRequest{
			RequestedPaymentFrequencyID: strPtr("FORTNIGHTLY"),
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrValidationFailed))
	})
}

func TestCreateApplication(t *testing.T) {
	t.Run("Success - Draft created with suggested frequency", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		productRepo := &mocks.MockProductRepository{}

		productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(testProduct(), nil)
		appRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.LoanApplication) bool {
			return a.StatusCode == domain.StatusDraft && a.Version == 1
		})).Return(nil)

		service := newService(appRepo, productRepo, &mocks.MockCollateralRepository{})

		app, err := service.CreateApplication(context.Background(), &domain.CreateApplicationRequest{
			ClientID:           "CLI-1",
			LoanProductID:      "PROD-STD",
			PromoterID:         "PRM-1",
			RequestedPrincipal: dec("10000"),
			RequestedTerm:      12,
		})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusDraft, app.StatusCode)
		// Frequency defaults from the product and is recorded as suggested
		assert.Equal(t, domain.FrequencyMonthly, app.RequestedPaymentFrequencyID)
		assert.Equal(t, domain.FrequencyMonthly, *app.SuggestedPaymentFrequencyID)

		appRepo.AssertExpectations(t)
	})

	t.Run("Failure - Unknown product", func(t *testing.T) {
		productRepo := &mocks.MockProductRepository{}
		productRepo.On("GetByID", mock.Anything, "PROD-MISSING").Return(nil, sql.ErrNoRows)

		service := newService(&mocks.MockApplicationRepository{}, productRepo, &mocks.MockCollateralRepository{})

		_, err := service.CreateApplication(context.Background(), &domain.CreateApplicationRequest{
			ClientID:           "CLI-1",
			LoanProductID:      "PROD-MISSING",
			PromoterID:         "PRM-1",
			RequestedPrincipal: dec("10000"),
			RequestedTerm:      12,
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrProductNotFound))
	})

	t.Run("Failure - Non-positive principal", func(t *testing.T) {
		service := newService(&mocks.MockApplicationRepository{}, &mocks.MockProductRepository{}, &mocks.MockCollateralRepository{})

		_, err := service.CreateApplication(context.Background(), &domain.CreateApplicationRequest{
			ClientID:           "CLI-1",
			LoanProductID:      "PROD-STD",
			PromoterID:         "PRM-1",
			RequestedPrincipal: dec("0"),
			RequestedTerm:      12,
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrValidationFailed))
	})
}

type noHolidays struct{}

func (noHolidays) IsHoliday(context.Context, time.Time, string, string) (bool, error) {
	return false, nil
}

func TestPreviewSchedule(t *testing.T) {
	engine := schedule.NewEngine(calendar.NewBusinessCalendar(noHolidays{}))

	t.Run("Success - Preview for draft", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		productRepo := &mocks.MockProductRepository{}
		app := draftApplication()

		product := testProduct()
		product.DueDateRuleCode = calendar.RuleNextBusinessDay

		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)
		productRepo.On("GetByID", mock.Anything, "PROD-STD").Return(product, nil)

		service := NewApplicationService(appRepo, productRepo, &mocks.MockCollateralRepository{}, engine, &config.Config{})
		result, err := service.PreviewSchedule(context.Background(), app.ID, domain.SchedulePreviewRequest{})

		assert.NoError(t, err)
		assert.Len(t, result.Installments, 12)

		sumPrincipal := dec("0")
		for _, inst := range result.Installments {
			sumPrincipal = sumPrincipal.Add(inst.Principal)
		}
		assert.True(t, sumPrincipal.Equal(app.RequestedPrincipal))
	})

	t.Run("Failure - Preview on terminal application", func(t *testing.T) {
		appRepo := &mocks.MockApplicationRepository{}
		app := draftApplication()
		app.StatusCode = domain.StatusRejected

		appRepo.On("GetByID", mock.Anything, app.ID).Return(app, nil)

		service := NewApplicationService(appRepo, &mocks.MockProductRepository{}, &mocks.MockCollateralRepository{}, engine, &config.Config{})
		_, err := service.PreviewSchedule(context.Background(), app.ID, domain.SchedulePreviewRequest{})

		assert.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrInvalidTransition))
	})
}
