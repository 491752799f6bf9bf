package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkovac/postforge-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSecretService mocks the SecretService
type MockSecretService struct {
	mock.Mock
}

func (m *MockSecretService) Put(ctx context.Context, ownerID uuid.UUID, name, value string) (*models.Secret, error) {
	args := m.Called(ctx, ownerID, name, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Secret), args.Error(1)
}

func (m *MockSecretService) Get(ctx context.Context, ownerID uuid.UUID, name string) (string, error) {
	args := m.Called(ctx, ownerID, name)
	return args.String(0), args.Error(1)
}

func (m *MockSecretService) List(ctx context.Context, ownerID uuid.UUID) ([]models.SecretEntry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SecretEntry), args.Error(1)
}

func (m *MockSecretService) Delete(ctx context.Context, ownerID uuid.UUID, name string) error {
	args := m.Called(ctx, ownerID, name)
	return args.Error(0)
}

// MockQuotaService mocks the QuotaService
type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) CheckAndConsume(ctx context.Context, ownerID uuid.UUID, amount int) (*models.QuotaStatus, error) {
	args := m.Called(ctx, ownerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) Peek(ctx context.Context, ownerID uuid.UUID) (*models.QuotaStatus, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) SetLimit(ctx context.Context, ownerID uuid.UUID, newLimit int) error {
	args := m.Called(ctx, ownerID, newLimit)
	return args.Error(0)
}
