package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"gorm.io/gorm"
	gormlog "gorm.io/gorm/logger"

	"github.com/Warky-Devs/backoffice/pkg/api"
	"github.com/Warky-Devs/backoffice/pkg/cache"
	"github.com/Warky-Devs/backoffice/pkg/common"
	"github.com/Warky-Devs/backoffice/pkg/common/adapters/database"
	"github.com/Warky-Devs/backoffice/pkg/config"
	"github.com/Warky-Devs/backoffice/pkg/logger"
	"github.com/Warky-Devs/backoffice/pkg/models"
	"github.com/Warky-Devs/backoffice/pkg/search"
)

// backend is the storage wiring selected by STORE_DRIVER
type backend struct {
	orderStore  common.RecordStore[models.Order]
	userStore   common.RecordStore[models.User]
	userLookup  common.ReferenceLookup
	checks      map[string]api.HealthCheck
	closers     []func()
	gorm        *gorm.DB
	bun         *bun.DB
	pool        *pgxpool.Pool
	redisClient *redis.Client
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// connectRetry retries a startup connect with exponential backoff
func connectRetry(ctx context.Context, name string, connect func() error) error {
	_, err := backoff.Retry[struct{}](ctx, func() (struct{}, error) {
		return struct{}{}, connect()
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(30*time.Second),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("Connecting to %s failed, retrying in %s: %v", name, next, err)
		}),
	)
	return errors.Wrapf(err, "connect %s", name)
}

// validateMappings checks every field to column map against its model
func validateMappings() error {
	mappings := []struct {
		model   interface{}
		columns database.Columns
	}{
		{&models.Order{}, models.OrderColumns},
		{&models.User{}, models.UserColumns},
		{&models.Order{}, models.OrderPgSource.Columns},
		{&models.User{}, models.UserPgSource.Columns},
	}
	for _, m := range mappings {
		if err := database.NewColumnValidator(m.model).ValidateColumns(m.columns); err != nil {
			return errors.Wrapf(err, "%T", m.model)
		}
	}
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if err := validateMappings(); err != nil {
		return nil, err
	}
	b := &backend{checks: make(map[string]api.HealthCheck)}

	var err error
	switch cfg.StoreDriver {
	case config.DriverGorm:
		err = b.openGorm(cfg)
	case config.DriverBun:
		err = b.openBun(cfg)
	case config.DriverPostgres:
		err = b.openPostgres(ctx, cfg)
	default:
		err = errors.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		b.Close()
		return nil, err
	}

	if err := b.openRedis(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backend) openGorm(cfg *config.Config) error {
	level := gormlog.Warn
	if cfg.IsDev() {
		level = gormlog.Info
	}
	newLogger := gormlog.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlog.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  cfg.IsDev(),
		},
	)

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{Logger: newLogger})
	if err != nil {
		return errors.Wrap(err, "open sqlite")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "open sqlite")
	}
	b.closers = append(b.closers, func() { _ = sqlDB.Close() })
	b.gorm = db

	b.orderStore = database.NewGormStore[models.Order](db, models.OrderColumns, "User")
	b.userStore = database.NewGormStore[models.User](db, models.UserColumns)
	b.userLookup = database.NewGormLookup(db, &models.User{}, models.UserColumns, search.FieldID)
	b.checks["sqlite"] = sqlDB.PingContext
	return nil
}

func (b *backend) openBun(cfg *config.Config) error {
	sqldb, err := sql.Open(database.SQLiteDriver, cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "open sqlite")
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	b.closers = append(b.closers, func() { _ = db.Close() })
	b.bun = db

	b.orderStore = database.NewBunStore[models.Order](db, models.OrderColumns, "User")
	b.userStore = database.NewBunStore[models.User](db, models.UserColumns)
	b.userLookup = database.NewBunLookup(db, (*models.User)(nil), models.UserColumns, search.FieldID)
	b.checks["sqlite"] = db.PingContext
	return nil
}

func (b *backend) openPostgres(ctx context.Context, cfg *config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return errors.Wrap(err, "parse postgres dsn")
	}
	b.closers = append(b.closers, pool.Close)
	if err := connectRetry(ctx, "postgres", func() error { return pool.Ping(ctx) }); err != nil {
		return err
	}
	b.pool = pool

	b.orderStore = database.NewPgStore[models.Order](pool, models.OrderPgSource, models.ScanOrder)
	b.userStore = database.NewPgStore[models.User](pool, models.UserPgSource, models.ScanUser)
	b.userLookup = database.NewPgLookup(pool, "users", models.UserColumns, search.FieldID)
	b.checks["postgres"] = pool.Ping
	return nil
}

func (b *backend) openRedis(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisAddr == "" || cfg.RefCacheTTL <= 0 {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	b.closers = append(b.closers, func() { _ = client.Close() })
	if err := connectRetry(ctx, "redis", func() error { return client.Ping(ctx).Err() }); err != nil {
		return err
	}
	b.redisClient = client

	b.userLookup = cache.NewRefCache(client, search.CollectionUsers, cfg.RefCacheTTL, b.userLookup)
	b.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return nil
}

// engines builds the order and user search engines over b
func (b *backend) engines(cfg *config.Config, opts ...search.Option) (*search.Engine[models.Order], *search.Engine[models.User], error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	opts = append([]search.Option{
		search.WithCallTimeout(cfg.QueryTimeout),
		search.WithLocation(loc),
		search.WithMaxLimit(cfg.MaxLimit),
	}, opts...)

	lookups := map[string]common.ReferenceLookup{search.CollectionUsers: b.userLookup}
	orders, err := search.NewEngine[models.Order](search.OrderSchema, b.orderStore, lookups, opts...)
	if err != nil {
		return nil, nil, err
	}
	users, err := search.NewEngine[models.User](search.UserSchema, b.userStore, lookups, opts...)
	if err != nil {
		return nil, nil, err
	}
	return orders, users, nil
}
