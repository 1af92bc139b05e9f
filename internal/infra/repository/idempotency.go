package repository

import (
	"context"
	"errors"
	"time"

	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	ParticipantID       uuid.UUID
	Endpoint            string
	RequestHash         string
	Status              string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

// TryInsert claims the key in "processing" state. It reports whether this
// call won the claim; an existing row is left untouched so the caller can
// inspect it.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, dbtx db.DBTX, key, participantID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := dbtx.Exec(ctx, `
		INSERT INTO idempotency_keys
			(key, participant_id, endpoint, request_hash, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, 'processing', $5, now())
		ON CONFLICT (key, participant_id) DO NOTHING`,
		key, participantID, endpoint, requestHash, expiresAt,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, dbtx db.DBTX, key, participantID uuid.UUID) (*IdempotencyRecord, error) {
	row := dbtx.QueryRow(ctx, `
		SELECT key, participant_id, endpoint, request_hash, status,
			result_reservation_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND participant_id = $2`,
		key, participantID,
	)
	var rec IdempotencyRecord
	err := row.Scan(&rec.Key, &rec.ParticipantID, &rec.Endpoint, &rec.RequestHash,
		&rec.Status, &rec.ResultReservationID, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, dbtx db.DBTX, key, participantID, reservationID uuid.UUID) error {
	tag, err := dbtx.Exec(ctx, `
		UPDATE idempotency_keys
		SET status = 'completed', result_reservation_id = $3
		WHERE key = $1 AND participant_id = $2`,
		key, participantID, reservationID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}
