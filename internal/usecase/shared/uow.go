package shared

import (
	"context"
	"time"

	"event-capacity/internal/domain/capacity"
	"event-capacity/internal/domain/overbooking"
	"event-capacity/internal/domain/reservation"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/infra/repository"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
}

type Tx interface {
	Pools() PoolRepository
	Reservations() ReservationRepository
	Overbooking() OverbookingRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	DB() db.DBTX
}

type PoolRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, pool *capacity.Pool) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*capacity.Pool, error)
	FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*capacity.Pool, error)
	Save(ctx context.Context, dbtx db.DBTX, pool *capacity.Pool) error
}

type ReservationRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) (uuid.UUID, error)
	FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	UpdateStatus(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expected reservation.Status) error
	UpdateAttendance(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) error
	FindExpiredPendingIDs(ctx context.Context, dbtx db.DBTX, now time.Time, limit int32) ([]uuid.UUID, error)
}

type OverbookingRepository interface {
	Upsert(ctx context.Context, dbtx db.DBTX, cfg *overbooking.Config) error
	FindByPoolID(ctx context.Context, dbtx db.DBTX, poolID uuid.UUID) (*overbooking.Config, error)
	SaveRiskLevel(ctx context.Context, dbtx db.DBTX, poolID uuid.UUID, level overbooking.RiskLevel) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, dbtx db.DBTX, key, participantID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, dbtx db.DBTX, key, participantID uuid.UUID) (*repository.IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, dbtx db.DBTX, key, participantID, reservationID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
