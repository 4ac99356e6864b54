// Package server runs a small HTTP server for operational endpoints such as Prometheus
// metrics, with graceful shutdown that fits an errgroup-managed process lifecycle.
//
// # Basic Usage
//
//	srv := server.New(":9090", server.WithLogger(log))
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
//	g.Go(func() error { return app.Run(ctx) })
//	err := g.Wait()
//
// # Configuration
//
// Config reads METRICS_* environment variables through core/config:
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//	if cfg.Enabled() {
//		srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//		...
//	}
//
// Run stops the server with the configured shutdown timeout once its context is cancelled.
// Start blocks until the context is cancelled or serving fails; Stop shuts down an active
// server and is a no-op otherwise.
package server
