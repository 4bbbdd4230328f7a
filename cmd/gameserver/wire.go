//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
)

// initializeApp builds the server graph from cfg. The returned cleanup
// closes the script VM and the database pool.
func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, func(), error) {
	wire.Build(configSet, contentSet, simulationSet, storageSet, serverSet)
	return nil, nil, nil
}
