package mocks

import (
	"context"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockCampaignRepository is a mock implementation of persistence.CampaignRepository interface.
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) ListByStatus(ctx context.Context, status models.CampaignStatus) ([]*models.Campaign, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Save(ctx context.Context, campaign *models.Campaign) error {
	args := m.Called(ctx, campaign)

	return args.Error(0)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockSegmentRepository is a mock implementation of persistence.SegmentRepository interface.
type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Segment), args.Error(1)
}

func (m *MockSegmentRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Segment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Segment), args.Error(1)
}

func (m *MockSegmentRepository) Save(ctx context.Context, segment *models.Segment) error {
	args := m.Called(ctx, segment)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	campaigns *MockCampaignRepository
	segments  *MockSegmentRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		campaigns: &MockCampaignRepository{},
		segments:  &MockSegmentRepository{},
	}
}

func (m *MockPersistence) GetMockCampaignRepository() *MockCampaignRepository {
	return m.campaigns
}

func (m *MockPersistence) GetMockSegmentRepository() *MockSegmentRepository {
	return m.segments
}

func (m *MockPersistence) CampaignRepository() persistence.CampaignRepository {
	return m.campaigns
}

func (m *MockPersistence) SegmentRepository() persistence.SegmentRepository {
	return m.segments
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
