package components

import (
	"event-capacity/internal/infra/cache"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/infra/readstore"
	repo_impl "event-capacity/internal/infra/repository"
	"event-capacity/internal/infra/uow"
	"event-capacity/internal/usecase/queries"
	"event-capacity/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			repo_impl.NewPoolRepository,
			fx.As(new(shared.PoolRepository)),
		),
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(shared.ReservationRepository)),
		),
		fx.Annotate(
			repo_impl.NewOverbookingRepository,
			fx.As(new(shared.OverbookingRepository)),
		),
		fx.Annotate(
			repo_impl.NewIdempotencyRepository,
			fx.As(new(shared.IdempotencyRepository)),
		),
		fx.Annotate(
			repo_impl.NewNotificationRepository,
			fx.As(new(shared.NotificationRepository)),
		),
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
		fx.Annotate(
			readstore.NewPoolReadStore,
			fx.As(new(queries.PoolReadStore)),
		),
		fx.Annotate(
			cache.NewPoolAvailabilityCache,
			fx.As(new(queries.AvailabilityCache)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
