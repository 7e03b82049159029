// Package bootstrap runs a service through its lifecycle: start the
// registered components, run configure callbacks and hooks, print the
// startup summary, wait for SIGINT/SIGTERM, then stop everything in
// reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(server.NewComponent(srv))
//	app.OnReady(func(ctx context.Context) error { log.Info("ready"); return nil })
//	return app.Run(ctx)
package bootstrap
