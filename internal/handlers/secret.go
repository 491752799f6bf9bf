package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/mkovac/postforge-api/internal/services"
	"github.com/mkovac/postforge-api/pkg/dto"
)

type SecretHandler struct {
	secretService SecretServiceInterface
}

func NewSecretHandler(secretService SecretServiceInterface) *SecretHandler {
	return &SecretHandler{secretService: secretService}
}

func (h *SecretHandler) Put(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}
	name := c.Param("name")

	var req dto.PutSecretRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	secret, err := h.secretService.Put(context.Background(), ownerID, name, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSecretEmptyName):
			c.BadRequest("secret name is required")
		case errors.Is(err, services.ErrSecretEmptyValue):
			c.BadRequest("secret value is required")
		case errors.Is(err, services.ErrStorageUnavailable):
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
		default:
			c.InternalServerError("failed to store secret")
		}
		return
	}

	_ = c.JSON(201, dto.SecretResponse{
		Name:      secret.Name,
		CreatedAt: secret.CreatedAt.Format(time.RFC3339),
		UpdatedAt: secret.UpdatedAt.Format(time.RFC3339),
	})
}

func (h *SecretHandler) Get(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}
	name := c.Param("name")

	value, err := h.secretService.Get(context.Background(), ownerID, name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSecretNotFound):
			c.NotFound("secret not found")
		case errors.Is(err, services.ErrDecryptionFailed):
			// Actionable for the user: the stored value is unreadable with
			// the current key, re-saving it fixes the entry.
			_ = c.JSON(422, dto.ErrorResponse{
				Error: "stored secret could not be decrypted; the encryption key may have changed, please save the key again",
			})
		case errors.Is(err, services.ErrStorageUnavailable):
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
		default:
			c.InternalServerError("failed to read secret")
		}
		return
	}

	_ = c.JSON(200, dto.SecretValueResponse{Name: name, Value: value})
}

func (h *SecretHandler) List(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}

	entries, err := h.secretService.List(context.Background(), ownerID)
	if err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
			return
		}
		c.InternalServerError("failed to list secrets")
		return
	}

	resp := dto.SecretListResponse{Secrets: make([]dto.SecretEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Secrets = append(resp.Secrets, dto.SecretEntryResponse{
			Name:          entry.Name,
			Value:         entry.Value,
			DecryptFailed: entry.DecryptFailed,
		})
	}
	_ = c.JSON(200, resp)
}

func (h *SecretHandler) Delete(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}
	name := c.Param("name")

	if err := h.secretService.Delete(context.Background(), ownerID, name); err != nil {
		switch {
		case errors.Is(err, services.ErrSecretNotFound):
			c.NotFound("secret not found")
		case errors.Is(err, services.ErrStorageUnavailable):
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
		default:
			c.InternalServerError("failed to delete secret")
		}
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "secret deleted"})
}
