// Package main provides the game server binary: the map simulation behind a
// WebSocket session endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/server"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
)

// healthPeriod is how often the postgres service pings the database.
const healthPeriod = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrateFirst := flag.Bool("migrate", false, "apply pending migrations before starting")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "gameserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("addr", cfg.WebSocket.Addr()),
		zap.String("path", cfg.WebSocket.Path),
		zap.String("version", cfg.Game.Version),
	)

	if *migrateFirst {
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
		logger.Info("database schema current")
	}

	a, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing server", zap.Error(err))
	}
	defer cleanup()

	// Services stop in reverse: listener first so departing sessions can
	// still reach the loop, then the saver flushes, then the loop and pool.
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("postgres", &server.ContextService{Run: func(ctx context.Context) error {
		return watchDatabase(ctx, a, logger)
	}})
	lifecycle.Add("loop", &server.ContextService{Run: a.loop.Run})
	lifecycle.Add("saver", &server.ContextService{Run: a.saver.Run})
	lifecycle.Add("websocket", &server.FuncService{
		StartFn: a.ws.ListenAndServe,
		StopFn:  a.ws.Stop,
	})

	logger.Info("game server ready", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("game server exited", zap.Error(err))
	}
}

// watchDatabase pings the pool every healthPeriod until ctx ends. Failures are
// logged; the websocket health endpoint reports them to probes.
func watchDatabase(ctx context.Context, a *app, logger *zap.Logger) error {
	t := time.NewTicker(healthPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := a.pool.Health(ctx, healthTimeout); err != nil {
				logger.Warn("database health check failed", zap.Error(err))
				continue
			}
			acquired, idle := a.pool.Stat()
			logger.Debug("database healthy",
				zap.Int32("acquired", acquired),
				zap.Int32("idle", idle),
			)
		}
	}
}
