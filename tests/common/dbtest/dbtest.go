//go:build e2e

package dbtest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// tables in FK dependency order; TRUNCATE CASCADE handles the rest
var truncateTables = []string{
	"notification_jobs",
	"idempotency_keys",
	"reservations",
	"overbooking_configs",
	"capacity_pools",
}

// ResetDB wipes all mutable state between subtests.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range truncateTables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
