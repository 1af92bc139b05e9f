package repository

import (
	"context"
	"errors"
	"time"

	"event-capacity/internal/domain/reservation"
	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

const reservationColumns = `id, pool_id, participant_id, status, attendance,
	hold_expires_at, base_price_cents, discount_cents, overbooked,
	created_at, status_changed_at`

func (r *ReservationRepository) Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	_, err := dbtx.Exec(ctx, `
		INSERT INTO reservations
			(id, pool_id, participant_id, status, attendance, hold_expires_at,
			 base_price_cents, discount_cents, overbooked, created_at, status_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		res.ID(), res.PoolID(), res.ParticipantID(), string(res.Status()),
		string(res.Attendance()), res.HoldExpiresAt(), res.BasePriceCents(),
		res.DiscountCents(), res.Overbooked(), res.CreatedAt(), res.StatusChangedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return uuid.Nil, infra.WrapRepoErr("pool does not exist", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err)
	}
	return res.ID(), nil
}

func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	row := dbtx.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
	return scanReservation(row)
}

// UpdateStatus is a compare-and-set on status: at most one concurrent caller
// observes rows affected = 1 for a given edge. Zero rows with an existing id
// means the reservation moved in the meantime.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expected reservation.Status) error {
	tag, err := dbtx.Exec(ctx, `
		UPDATE reservations
		SET status = $3,
			attendance = $4,
			hold_expires_at = $5,
			overbooked = $6,
			status_changed_at = $7
		WHERE id = $1 AND status = $2`,
		res.ID(), string(expected), string(res.Status()), string(res.Attendance()),
		res.HoldExpiresAt(), res.Overbooked(), res.StatusChangedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation status changed concurrently", nil, infra.KindConflict)
	}
	return nil
}

func (r *ReservationRepository) UpdateAttendance(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) error {
	tag, err := dbtx.Exec(ctx, `
		UPDATE reservations SET attendance = $2 WHERE id = $1`,
		res.ID(), string(res.Attendance()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update attendance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

// FindExpiredPendingIDs returns the next batch of holds past their deadline,
// oldest first. The result is a hint: each id is re-checked under lock by the
// expire transition, so stale entries are harmless.
func (r *ReservationRepository) FindExpiredPendingIDs(ctx context.Context, dbtx db.DBTX, now time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT id FROM reservations
		WHERE status = 'pending_payment' AND hold_expires_at < $1
		ORDER BY hold_expires_at
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query expired holds", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired hold id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired holds", err)
	}
	return ids, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, poolID, participantID  uuid.UUID
		status, attendance         string
		holdExpiresAt              *time.Time
		basePrice, discount        int64
		overbooked                 bool
		createdAt, statusChangedAt time.Time
	)
	err := row.Scan(&id, &poolID, &participantID, &status, &attendance,
		&holdExpiresAt, &basePrice, &discount, &overbooked,
		&createdAt, &statusChangedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan reservation", err)
	}
	return reservation.ReconstructReservation(
		id, poolID, participantID,
		reservation.Status(status), reservation.Attendance(attendance),
		holdExpiresAt, basePrice, discount, overbooked,
		createdAt, statusChangedAt,
	), nil
}
