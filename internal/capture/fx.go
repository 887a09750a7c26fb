package capture

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("capture.worker",
	fx.Provide(DefaultConfig),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

// runWorker ties the poll loop to the app lifecycle. The loop gets its own
// context: the OnStart context only covers startup and is cancelled as soon
// as the app is up.
func runWorker(lc fx.Lifecycle, worker *Worker) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, stop := context.WithCancel(context.Background())
			cancel = stop
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
