package components

import (
	"event-capacity/internal/domain/reservation"
	"event-capacity/internal/pkg/clock"
	"event-capacity/internal/pkg/config"
	"event-capacity/internal/usecase/commands"
	"event-capacity/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		func() reservation.NoDiscount { return reservation.NoDiscount{} },
		fx.As(new(reservation.DiscountSource)),
	),
	reservation.NewFactory,
	func(cfg config.Config) config.ReservationConfig { return cfg.Reservation },
	func(cfg config.Config) config.ReaperConfig { return cfg.Reaper },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationCommands,
		commands.NewPoolCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewPoolQueries,
	),
)
