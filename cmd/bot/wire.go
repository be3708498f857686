package main

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/sessions_bot/internal/api"
	"github.com/Freeeeeet/sessions_bot/internal/app"
	"github.com/Freeeeeet/sessions_bot/internal/clock"
	"github.com/Freeeeeet/sessions_bot/internal/config"
	"github.com/Freeeeeet/sessions_bot/internal/repository"
	"github.com/Freeeeeet/sessions_bot/internal/repository/memstore"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// deps собранные сервисы приложения
type deps struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	rdb    *redis.Client

	clock     *clock.Clock
	users     *service.UserService
	generator *service.SlotGenerator
	claims    *service.ClaimService
	display   *service.DisplaySynchronizer
}

// loadConfig читает конфиг и создаёт логгер
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	if cfg.DotEnvLoaded {
		logger.Debug("Loaded variables from .env")
	}
	return cfg, logger, nil
}

// openPool подключается к Postgres и проверяет соединение
func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// buildDeps поднимает хранилища и сервисы по конфигу
func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*deps, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	d := &deps{cfg: cfg, logger: logger, clock: clock.New(loc, nil)}

	if cfg.Store == "postgres" || cfg.PointerBackend == "postgres" {
		d.pool, err = openPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("✅ Connected to database")

		migrator, err := app.NewMigrator(d.pool, cfg.MigrationsDir, logger)
		if err != nil {
			d.close()
			return nil, err
		}
		err = migrator.Run(ctx)
		_ = migrator.Close()
		if err != nil {
			d.close()
			return nil, err
		}
	}

	var (
		sessions  service.SessionStore
		userStore service.UserStore
		pointers  service.PointerStore
	)

	switch cfg.Store {
	case "postgres":
		sessions = repository.NewSessionRepository(d.pool)
		userStore = repository.NewUserRepository(d.pool)
	default:
		logger.Warn("Using in-memory store, claims are lost on restart")
		sessions = memstore.NewSessionStore()
		userStore = memstore.NewUserStore()
	}

	switch cfg.PointerBackend {
	case "postgres":
		pointers = repository.NewDisplayPointerRepository(d.pool)
	case "redis":
		d.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := d.rdb.Ping(ctx).Err(); err != nil {
			d.close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		pointers = repository.NewRedisPointerStore(d.rdb, repository.DefaultPointerKey)
	default:
		pointers = memstore.NewPointerStore()
	}

	d.users, err = service.NewUserService(userStore, cfg.NameCacheSize, logger)
	if err != nil {
		d.close()
		return nil, err
	}

	d.generator = service.NewSlotGenerator(sessions, d.clock, service.ScheduleSettings{
		Times:       cfg.Sessions.Times,
		LabelSuffix: cfg.Sessions.LabelSuffix,
		WeekEnd:     cfg.WeekEnd(),
	}, logger)

	// Транспорт подставляется после создания бота
	d.display = service.NewDisplaySynchronizer(sessions, pointers, nil, d.users, d.generator, logger)
	d.claims = service.NewClaimService(sessions, d.generator, d.display, logger)

	return d, nil
}

// healthChecks проверки для /healthz
func (d *deps) healthChecks() map[string]api.HealthCheck {
	checks := make(map[string]api.HealthCheck)
	if d.pool != nil {
		checks["postgres"] = d.pool.Ping
	}
	if d.rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return d.rdb.Ping(ctx).Err() }
	}
	return checks
}

func (d *deps) close() {
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}
