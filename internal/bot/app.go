package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/arkade-01/p2pbot/internal/config"
	"github.com/arkade-01/p2pbot/internal/database"
	"github.com/arkade-01/p2pbot/internal/flows/sell"
	"github.com/arkade-01/p2pbot/internal/flows/verify"
	"github.com/arkade-01/p2pbot/internal/logger"
	"github.com/arkade-01/p2pbot/internal/paycrest"
	"github.com/arkade-01/p2pbot/internal/session"
	tg "github.com/arkade-01/p2pbot/internal/telegram"
	"github.com/arkade-01/p2pbot/internal/users"
)

// App owns every long-lived dependency of the bot process.
type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	redis    *redis.Client
	registry *tg.Registry
	handlers *Handlers
}

// New assembles the application: database with migrations applied,
// session store, aggregator client, conversation engines, and the
// handler registry.
func New(cfg *config.Config) (*App, error) {
	if err := database.RunMigrations(cfg.Database); err != nil {
		return nil, fmt.Errorf("bot: migrations: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bot: database: %w", err)
	}

	app := &App{cfg: cfg, db: db}

	store, err := app.buildSessionStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	client := paycrest.NewClient(cfg.API)
	profiles := users.NewRepository(db)

	sellEng := sell.NewEngine(store, client, profiles)
	verifyEng := verify.NewEngine(store, client, profiles)

	app.handlers = NewHandlers(sellEng, verifyEng, profiles, client, store)
	app.registry = buildRegistry(app.handlers)
	return app, nil
}

func (a *App) buildSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		logger.SESS.Info("session store ready",
			slog.String("event", "session.backend"),
			slog.String("backend", config.SessionBackendMemory),
		)
		return session.NewMemoryStore(cfg.SessionTTL()), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("bot: redis ping: %w", err)
	}
	a.redis = client

	logger.SESS.Info("session store ready",
		slog.String("event", "session.backend"),
		slog.String("backend", config.SessionBackendRedis),
		slog.String("addr", cfg.Redis.Addr),
	)
	return session.NewRedisStore(client, cfg.SessionTTL()), nil
}

// Run serves Telegram updates until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return tg.Run(ctx, tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: buildMiddlewares(a.cfg),
		Routes:      buildRoutes(a.registry, a.handlers),
	})
}

// Close releases the database and session-store connections.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
