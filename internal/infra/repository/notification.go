package repository

import (
	"context"
	"time"

	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"
)

// NotificationRepository writes outbox jobs in the same transaction as the
// state change they announce. Delivery (email, push, audit log) is an
// external worker's concern; a delivery failure can never roll back a
// capacity transition.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := dbtx.Exec(ctx, `
		INSERT INTO notification_jobs (kind, topic, payload, run_at, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		kind, topic, payload, runAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
