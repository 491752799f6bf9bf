package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mkovac/postforge-api/internal/database"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQuotaService(t *testing.T) (*QuotaService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	svc := NewQuotaService(db, 50)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	}
	return svc, mock
}

func quotaDayStart() time.Time {
	return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
}

func TestQuotaService_CheckAndConsume_Success(t *testing.T) {
	svc, mock := setupQuotaService(t)
	ownerID := uuid.New()
	dayStart := quotaDayStart()

	mock.ExpectExec(`INSERT INTO generation_quotas`).
		WithArgs(ownerID, 50, dayStart).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	rows := pgxmock.NewRows([]string{"used_today", "daily_limit", "lifetime_total", "reset_at"}).
		AddRow(13, 50, int64(113), dayStart)

	mock.ExpectQuery(`UPDATE generation_quotas SET`).
		WithArgs(ownerID, 1, dayStart).
		WillReturnRows(rows)

	status, err := svc.CheckAndConsume(context.Background(), ownerID, 1)

	require.NoError(t, err)
	assert.Equal(t, 13, status.UsedToday)
	assert.Equal(t, 50, status.DailyLimit)
	assert.Equal(t, 37, status.Remaining())
	assert.Equal(t, int64(113), status.LifetimeTotal)
	assert.Equal(t, dayStart, status.ResetAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_CheckAndConsume_Exceeded(t *testing.T) {
	svc, mock := setupQuotaService(t)
	ownerID := uuid.New()
	dayStart := quotaDayStart()

	mock.ExpectExec(`INSERT INTO generation_quotas`).
		WithArgs(ownerID, 50, dayStart).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	// The guard rejected the update, so no row comes back.
	mock.ExpectQuery(`UPDATE generation_quotas SET`).
		WithArgs(ownerID, 1, dayStart).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.CheckAndConsume(context.Background(), ownerID, 1)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_CheckAndConsume_InvalidAmount(t *testing.T) {
	svc, mock := setupQuotaService(t)

	_, err := svc.CheckAndConsume(context.Background(), uuid.New(), 0)

	assert.ErrorIs(t, err, ErrQuotaInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_CheckAndConsume_StorageError(t *testing.T) {
	svc, mock := setupQuotaService(t)
	ownerID := uuid.New()
	dayStart := quotaDayStart()

	mock.ExpectExec(`INSERT INTO generation_quotas`).
		WithArgs(ownerID, 50, dayStart).
		WillReturnError(errors.New("connection refused"))

	_, err := svc.CheckAndConsume(context.Background(), ownerID, 1)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_Peek_RollsOverStaleWindow(t *testing.T) {
	svc, mock := setupQuotaService(t)
	ownerID := uuid.New()
	dayStart := quotaDayStart()

	mock.ExpectExec(`INSERT INTO generation_quotas`).
		WithArgs(ownerID, 50, dayStart).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	mock.ExpectExec(`UPDATE generation_quotas\s+SET used_today = 0, reset_at`).
		WithArgs(ownerID, dayStart).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rows := pgxmock.NewRows([]string{"used_today", "daily_limit", "lifetime_total", "reset_at"}).
		AddRow(0, 50, int64(200), dayStart)

	mock.ExpectQuery(`SELECT used_today, daily_limit, lifetime_total, reset_at`).
		WithArgs(ownerID).
		WillReturnRows(rows)

	status, err := svc.Peek(context.Background(), ownerID)

	require.NoError(t, err)
	assert.Equal(t, 0, status.UsedToday)
	// Rollover resets the window but never the lifetime counter.
	assert.Equal(t, int64(200), status.LifetimeTotal)
	assert.Equal(t, dayStart, status.ResetAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_SetLimit_Upsert(t *testing.T) {
	svc, mock := setupQuotaService(t)
	ownerID := uuid.New()
	dayStart := quotaDayStart()

	mock.ExpectExec(`INSERT INTO generation_quotas`).
		WithArgs(ownerID, 100, dayStart).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.SetLimit(context.Background(), ownerID, 100)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaService_SetLimit_Negative(t *testing.T) {
	svc, mock := setupQuotaService(t)

	err := svc.SetLimit(context.Background(), uuid.New(), -1)

	assert.ErrorIs(t, err, ErrQuotaInvalidLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
