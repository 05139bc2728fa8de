package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lendcore/credit-workflow/internal/domain"
)

// MockApplicationRepository is a mock implementation of repository.ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.LoanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *domain.LoanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to string, note *string) (bool, error) {
	args := m.Called(ctx, id, from, to, note)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepository) GetStatusHistory(ctx context.Context, id uuid.UUID) ([]*domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StatusHistoryEntry), args.Error(1)
}

// MockCollateralRepository is a mock implementation of repository.CollateralRepository
type MockCollateralRepository struct {
	mock.Mock
}

func (m *MockCollateralRepository) GetCollateral(ctx context.Context, id uuid.UUID) (*domain.Collateral, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collateral), args.Error(1)
}

func (m *MockCollateralRepository) Link(ctx context.Context, link *domain.CollateralLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockCollateralRepository) Unlink(ctx context.Context, applicationID, linkID uuid.UUID) (*domain.CollateralLink, error) {
	args := m.Called(ctx, applicationID, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollateralLink), args.Error(1)
}

func (m *MockCollateralRepository) ListLinks(ctx context.Context, applicationID uuid.UUID) ([]*domain.CollateralLink, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CollateralLink), args.Error(1)
}

func (m *MockCollateralRepository) ReleaseTerminalLinks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.LoanProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanProduct), args.Error(1)
}

// MockHolidayRepository is a mock implementation of repository.HolidayRepository
type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) ListHolidays(ctx context.Context, year int, agencyID, portfolioTypeID string) ([]time.Time, error) {
	args := m.Called(ctx, year, agencyID, portfolioTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}
