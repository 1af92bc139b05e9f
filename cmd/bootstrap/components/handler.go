package components

import (
	"event-capacity/internal/handler"
	"event-capacity/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewPoolHandler,
		api.NewReservationHandler,
	),
	fx.Invoke(handler.NewRouter),
)
