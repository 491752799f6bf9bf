package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkovac/postforge-api/internal/models"
)

// SecretServiceInterface defines the methods used by handlers from SecretService
type SecretServiceInterface interface {
	Put(ctx context.Context, ownerID uuid.UUID, name, value string) (*models.Secret, error)
	Get(ctx context.Context, ownerID uuid.UUID, name string) (string, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.SecretEntry, error)
	Delete(ctx context.Context, ownerID uuid.UUID, name string) error
}

// QuotaServiceInterface defines the methods used by handlers from QuotaService
type QuotaServiceInterface interface {
	CheckAndConsume(ctx context.Context, ownerID uuid.UUID, amount int) (*models.QuotaStatus, error)
	Peek(ctx context.Context, ownerID uuid.UUID) (*models.QuotaStatus, error)
	SetLimit(ctx context.Context, ownerID uuid.UUID, newLimit int) error
}
