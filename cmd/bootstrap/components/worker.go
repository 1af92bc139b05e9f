package components

import (
	"context"

	"event-capacity/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewReaper,
	),
	fx.Invoke(startReaper),
)

func startReaper(lc fx.Lifecycle, reaper *worker.Reaper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			reaper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			reaper.Stop()
			return nil
		},
	})
}
