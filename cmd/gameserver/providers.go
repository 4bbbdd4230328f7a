package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/content"
	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/catalog"
	"github.com/cory-johannsen/warband/internal/game/command"
	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/game/npc"
	"github.com/cory-johannsen/warband/internal/game/room"
	"github.com/cory-johannsen/warband/internal/game/ruleset"
	"github.com/cory-johannsen/warband/internal/game/session"
	"github.com/cory-johannsen/warband/internal/game/world"
	"github.com/cory-johannsen/warband/internal/gameserver"
	"github.com/cory-johannsen/warband/internal/scripting"
	"github.com/cory-johannsen/warband/internal/sched"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
	"github.com/cory-johannsen/warband/internal/transport"
)

// loopQueue is the simulation task queue length.
const loopQueue = 4096

// healthTimeout bounds one database ping.
const healthTimeout = 2 * time.Second

// app holds the long-running parts main hands to the lifecycle.
type app struct {
	pool  *postgres.Pool
	loop  *sched.Loop
	saver *gameserver.Saver
	ws    *transport.Server
}

func newApp(pool *postgres.Pool, loop *sched.Loop, saver *gameserver.Saver, ws *transport.Server) *app {
	return &app{pool: pool, loop: loop, saver: saver, ws: ws}
}

var configSet = wire.NewSet(
	wire.FieldsOf(new(config.Config), "Database", "WebSocket", "Game"),
	provideVersion,
	provideRoomConfig,
)

var contentSet = wire.NewSet(
	provideRoller,
	provideContent,
	provideScripts,
	provideCatalog,
	provideArchetypes,
	provideBestiary,
	provideAtlas,
	command.DefaultRegistry,
)

var simulationSet = wire.NewSet(
	provideLoop,
	wire.Bind(new(sched.Runner), new(*sched.Loop)),
	wire.Bind(new(sched.Scheduler), new(*sched.Loop)),
	wire.Bind(new(npc.Trainer), new(*catalog.Catalog)),
	wire.Bind(new(room.ProgressSaver), new(*gameserver.Saver)),
	npc.NewSpawner,
	ai.NewBrain,
	room.NewManager,
	session.NewManager,
)

var storageSet = wire.NewSet(
	providePool,
	provideAccountRepository,
	providePlayerRepository,
	gameserver.NewAccountRepoAdapter,
	gameserver.NewPlayerRepoAdapter,
	wire.Bind(new(gameserver.AccountStore), new(*gameserver.AccountRepoAdapter)),
	wire.Bind(new(gameserver.PlayerStore), new(*gameserver.PlayerRepoAdapter)),
	provideSaver,
)

var serverSet = wire.NewSet(
	gameserver.NewAccountHandler,
	gameserver.NewPlayerHandler,
	gameserver.NewMapHandler,
	gameserver.NewChatHandler,
	gameserver.NewAbilityHandler,
	gameserver.NewServer,
	wire.Bind(new(transport.Handler), new(*gameserver.Server)),
	provideHealth,
	transport.NewServer,
	newApp,
)

func provideVersion(cfg config.GameConfig) gameserver.Version {
	return gameserver.Version(cfg.Version)
}

func provideRoomConfig(cfg config.GameConfig) room.Config {
	return room.Config{
		TickInterval:    cfg.TickInterval,
		RespawnDelay:    cfg.RespawnDelay,
		PopulationLimit: cfg.PopulationLimit,
	}
}

func provideRoller(logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

func provideContent(cfg config.GameConfig) fs.FS {
	return content.Open(cfg.ContentDir)
}

// provideScripts loads the ability scripts from ScriptsDir when set, else
// from the content tree.
func provideScripts(cfg config.GameConfig, fsys fs.FS, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	start := time.Now()
	scripts := scripting.NewManager(roller, logger, 0)
	src, dir := fsys, "scripts"
	if cfg.ScriptsDir != "" {
		src, dir = os.DirFS(cfg.ScriptsDir), "."
	}
	if err := scripts.Load(src, dir); err != nil {
		scripts.Close()
		return nil, nil, fmt.Errorf("loading scripts: %w", err)
	}
	logger.Info("scripts loaded", zap.Duration("elapsed", time.Since(start)))
	return scripts, scripts.Close, nil
}

func provideCatalog(fsys fs.FS, scripts *scripting.Manager, logger *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(fsys, "abilities", scripts)
	if err != nil {
		return nil, fmt.Errorf("loading abilities: %w", err)
	}
	logger.Info("abilities loaded", zap.Int("count", len(cat.Names())))
	return cat, nil
}

func provideArchetypes(fsys fs.FS, logger *zap.Logger) (*ruleset.Registry, error) {
	archetypes, err := ruleset.LoadArchetypes(fsys, "archetypes")
	if err != nil {
		return nil, fmt.Errorf("loading archetypes: %w", err)
	}
	logger.Info("archetypes loaded", zap.Int("count", len(archetypes)))
	return ruleset.NewRegistry(archetypes), nil
}

func provideBestiary(fsys fs.FS, logger *zap.Logger) (*npc.Bestiary, error) {
	templates, err := npc.LoadTemplates(fsys, "npcs")
	if err != nil {
		return nil, fmt.Errorf("loading npc templates: %w", err)
	}
	logger.Info("npc templates loaded", zap.Int("count", len(templates)))
	return npc.NewBestiary(templates)
}

func provideAtlas(fsys fs.FS, logger *zap.Logger) (*world.Atlas, error) {
	maps, err := world.LoadMaps(fsys, "maps")
	if err != nil {
		return nil, fmt.Errorf("loading maps: %w", err)
	}
	logger.Info("maps loaded", zap.Int("count", len(maps)))
	return world.NewAtlas(maps)
}

func provideLoop(logger *zap.Logger) *sched.Loop {
	return sched.NewLoop(loopQueue, logger)
}

func providePool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*postgres.Pool, func(), error) {
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool, pool.Close, nil
}

func provideAccountRepository(pool *postgres.Pool) *postgres.AccountRepository {
	return postgres.NewAccountRepository(pool.DB())
}

func providePlayerRepository(pool *postgres.Pool) *postgres.PlayerRepository {
	return postgres.NewPlayerRepository(pool.DB())
}

func provideSaver(store gameserver.PlayerStore, cfg config.GameConfig, logger *zap.Logger) *gameserver.Saver {
	return gameserver.NewSaver(store, cfg.SaveBuffer, logger)
}

func provideHealth(pool *postgres.Pool) transport.HealthFunc {
	return func(ctx context.Context) error {
		return pool.Health(ctx, healthTimeout)
	}
}
