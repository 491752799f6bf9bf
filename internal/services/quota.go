package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkovac/postforge-api/internal/database"
	"github.com/mkovac/postforge-api/internal/models"
)

var (
	// ErrQuotaExceeded means the requested consumption would cross the
	// daily limit. Counters are left unchanged; the caller should wait
	// for the next window rather than retry.
	ErrQuotaExceeded = errors.New("daily generation quota exceeded")

	ErrQuotaInvalidAmount = errors.New("consume amount must be at least 1")
	ErrQuotaInvalidLimit  = errors.New("daily limit must not be negative")
)

type QuotaService struct {
	db           *database.DB
	defaultLimit int

	// now is injectable so rollover across the day boundary is testable.
	now func() time.Time
}

func NewQuotaService(db *database.DB, defaultLimit int) *QuotaService {
	return &QuotaService{db: db, defaultLimit: defaultLimit, now: time.Now}
}

// dayStart is the UTC midnight opening the current counting window.
func (s *QuotaService) dayStart() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// ensureRecord lazily creates the owner's ledger row. Racing callers are
// harmless: ON CONFLICT DO NOTHING keeps exactly one row per owner.
func (s *QuotaService) ensureRecord(ctx context.Context, ownerID uuid.UUID, dayStart time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO generation_quotas (owner_id, daily_limit, used_today, reset_at, lifetime_total)
		VALUES ($1, $2, 0, $3, 0)
		ON CONFLICT (owner_id) DO NOTHING
	`, ownerID, s.defaultLimit, dayStart)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// CheckAndConsume accounts amount units against the owner's daily limit.
// Rollover of a stale window and the guarded increment happen in a single
// UPDATE, so two concurrent calls can never both pass with one unit of
// headroom left.
func (s *QuotaService) CheckAndConsume(ctx context.Context, ownerID uuid.UUID, amount int) (*models.QuotaStatus, error) {
	if amount < 1 {
		return nil, ErrQuotaInvalidAmount
	}

	dayStart := s.dayStart()
	if err := s.ensureRecord(ctx, ownerID, dayStart); err != nil {
		return nil, err
	}

	status := models.QuotaStatus{OwnerID: ownerID}
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE generation_quotas SET
			used_today = CASE WHEN reset_at < $3 THEN 0 ELSE used_today END + $2,
			lifetime_total = lifetime_total + $2,
			reset_at = GREATEST(reset_at, $3),
			updated_at = NOW()
		WHERE owner_id = $1
			AND CASE WHEN reset_at < $3 THEN 0 ELSE used_today END + $2 <= daily_limit
		RETURNING used_today, daily_limit, lifetime_total, reset_at
	`, ownerID, amount, dayStart).Scan(
		&status.UsedToday, &status.DailyLimit, &status.LifetimeTotal, &status.ResetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row exists (ensured above) but the guard failed.
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &status, nil
}

// Peek reports current counters without consuming. A stale window is
// rolled over and persisted first so the caller sees accurate numbers.
func (s *QuotaService) Peek(ctx context.Context, ownerID uuid.UUID) (*models.QuotaStatus, error) {
	dayStart := s.dayStart()
	if err := s.ensureRecord(ctx, ownerID, dayStart); err != nil {
		return nil, err
	}

	_, err := s.db.Pool.Exec(ctx, `
		UPDATE generation_quotas
		SET used_today = 0, reset_at = $2, updated_at = NOW()
		WHERE owner_id = $1 AND reset_at < $2
	`, ownerID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	status := models.QuotaStatus{OwnerID: ownerID}
	err = s.db.Pool.QueryRow(ctx, `
		SELECT used_today, daily_limit, lifetime_total, reset_at
		FROM generation_quotas
		WHERE owner_id = $1
	`, ownerID).Scan(
		&status.UsedToday, &status.DailyLimit, &status.LifetimeTotal, &status.ResetAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &status, nil
}

// SetLimit overrides the owner's daily limit. Consumption counters are
// untouched; a missing ledger row is created with the new limit.
func (s *QuotaService) SetLimit(ctx context.Context, ownerID uuid.UUID, newLimit int) error {
	if newLimit < 0 {
		return ErrQuotaInvalidLimit
	}

	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO generation_quotas (owner_id, daily_limit, used_today, reset_at, lifetime_total)
		VALUES ($1, $2, 0, $3, 0)
		ON CONFLICT (owner_id) DO UPDATE
		SET daily_limit = EXCLUDED.daily_limit, updated_at = NOW()
	`, ownerID, newLimit, s.dayStart())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
