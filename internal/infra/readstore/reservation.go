package readstore

import (
	"context"
	"errors"
	"time"

	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(dbtx db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: dbtx}
}

const reservationViewQuery = `
	SELECT r.id, r.pool_id, p.scope_id, p.scope_type, r.participant_id,
		r.status, r.attendance, r.hold_expires_at,
		r.base_price_cents, r.discount_cents, r.overbooked,
		r.created_at, r.status_changed_at
	FROM reservations r
	JOIN capacity_pools p ON p.id = r.pool_id`

func (s *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row := s.db.QueryRow(ctx, reservationViewQuery+` WHERE r.id = $1`, id)
	view, err := scanReservationView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return view, nil
}

func (s *ReservationReadStore) FindByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*queries.ReservationView, error) {
	rows, err := s.db.Query(ctx,
		reservationViewQuery+` WHERE r.participant_id = $1 ORDER BY r.created_at DESC`,
		participantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations by participant", err)
	}
	defer rows.Close()

	var views []*queries.ReservationView
	for rows.Next() {
		view, err := scanReservationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation view", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read reservation views", err)
	}
	return views, nil
}

func scanReservationView(row pgx.Row) (*queries.ReservationView, error) {
	var (
		v             queries.ReservationView
		holdExpiresAt *time.Time
	)
	err := row.Scan(&v.ID, &v.PoolID, &v.ScopeID, &v.ScopeType, &v.ParticipantID,
		&v.Status, &v.Attendance, &holdExpiresAt,
		&v.BasePriceCents, &v.DiscountCents, &v.Overbooked,
		&v.CreatedAt, &v.StatusChangedAt)
	if err != nil {
		return nil, err
	}
	v.HoldExpiresAt = holdExpiresAt
	v.FinalPriceCents = v.BasePriceCents - v.DiscountCents
	if v.FinalPriceCents < 0 {
		v.FinalPriceCents = 0
	}
	return &v, nil
}
