package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/mkovac/postforge-api/internal/models"
	"github.com/mkovac/postforge-api/internal/services"
	"github.com/mkovac/postforge-api/pkg/dto"
)

type QuotaHandler struct {
	quotaService QuotaServiceInterface
}

func NewQuotaHandler(quotaService QuotaServiceInterface) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService}
}

func (h *QuotaHandler) Consume(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}

	var req dto.ConsumeQuotaRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	status, err := h.quotaService.CheckAndConsume(context.Background(), ownerID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuotaInvalidAmount):
			c.BadRequest("amount must be at least 1")
		case errors.Is(err, services.ErrQuotaExceeded):
			h.respondExceeded(c, ownerID)
		case errors.Is(err, services.ErrStorageUnavailable):
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
		default:
			c.InternalServerError("failed to consume quota")
		}
		return
	}

	_ = c.JSON(200, quotaResponse(status))
}

func (h *QuotaHandler) Get(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}

	status, err := h.quotaService.Peek(context.Background(), ownerID)
	if err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
			return
		}
		c.InternalServerError("failed to read quota")
		return
	}

	_ = c.JSON(200, quotaResponse(status))
}

func (h *QuotaHandler) SetLimit(c *drift.Context) {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		c.BadRequest("invalid owner id")
		return
	}

	var req dto.SetQuotaLimitRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.quotaService.SetLimit(context.Background(), ownerID, req.DailyLimit); err != nil {
		switch {
		case errors.Is(err, services.ErrQuotaInvalidLimit):
			c.BadRequest("daily limit must not be negative")
		case errors.Is(err, services.ErrStorageUnavailable):
			_ = c.JSON(503, dto.ErrorResponse{Error: "storage unavailable"})
		default:
			c.InternalServerError("failed to update quota limit")
		}
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "daily limit updated"})
}

// respondExceeded reports the denied consumption together with how long
// the caller has to wait for the next window.
func (h *QuotaHandler) respondExceeded(c *drift.Context, ownerID uuid.UUID) {
	resp := dto.QuotaExceededResponse{Error: "daily generation quota exceeded"}
	if status, err := h.quotaService.Peek(context.Background(), ownerID); err == nil {
		resp.UsedToday = status.UsedToday
		resp.DailyLimit = status.DailyLimit
		if wait := time.Until(status.NextReset()); wait > 0 {
			resp.RetryAfterSeconds = int64(wait.Seconds())
		}
	}
	_ = c.JSON(429, resp)
}

func quotaResponse(status *models.QuotaStatus) dto.QuotaResponse {
	return dto.QuotaResponse{
		UsedToday:     status.UsedToday,
		DailyLimit:    status.DailyLimit,
		Remaining:     status.Remaining(),
		LifetimeTotal: status.LifetimeTotal,
		ResetAt:       status.ResetAt.Format(time.RFC3339),
	}
}
