package bootstrap

import (
	"context"
	"fmt"
)

// Hook runs at a fixed point of the lifecycle. A failing start or ready
// hook aborts startup; a failing stop hook is logged.
type Hook func(ctx context.Context) error

// OnStart adds hooks run once every component has started.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnReady adds hooks run after the ready check and before the summary.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop adds hooks run at shutdown, before components stop.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

func runHooks(ctx context.Context, hooks []Hook) error {
	for i := range hooks {
		if err := hooks[i](ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
