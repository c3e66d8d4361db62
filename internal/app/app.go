// Package app wires configuration into the services and HTTP modules shared
// by the api and admin binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"restaurant-booking/internal/core/auth"
	"restaurant-booking/internal/core/cache"
	"restaurant-booking/internal/core/config"
	"restaurant-booking/internal/core/database"
	"restaurant-booking/internal/core/logger"
	"restaurant-booking/internal/core/server"
	"restaurant-booking/internal/domain"
	"restaurant-booking/internal/notify"
	"restaurant-booking/internal/repo"
	"restaurant-booking/internal/service"
	"restaurant-booking/internal/transport/http/handler"
	"restaurant-booking/internal/transport/http/router"
)

var ErrMissingSecret = errors.New("jwt secret is not configured")

// NewLogger builds the process logger from cfg and routes gin and the
// standard logger through it.
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	l, flush := logger.New(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.Rotate.Enable,
			Filename:   cfg.Log.Rotate.Filename,
			MaxSizeMB:  cfg.Log.Rotate.MaxSizeMB,
			MaxBackups: cfg.Log.Rotate.MaxBackups,
			MaxAgeDays: cfg.Log.Rotate.MaxAgeDays,
			Compress:   cfg.Log.Rotate.Compress,
		},
	})
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(l, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(l, zapcore.ErrorLevel)
	undo := logger.RedirectStdLog(l, zapcore.InfoLevel)
	return l, func() {
		undo()
		flush()
	}
}

type App struct {
	Cfg          *config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	JWT          *auth.JWTer
	Revoker      *auth.Revoker
	Reservations *service.ReservationService
	Users        *service.UserService
	Registry     *router.Registry

	users *repo.UserRepo

	closers []func() error
}

// New opens the database and optional Redis and broker connections and
// builds every service. Call Close when done.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	if cfg.JWT.Secret == "" {
		return nil, ErrMissingSecret
	}
	rules, err := cfg.Booking.Rules()
	if err != nil {
		return nil, err
	}

	a := &App{Cfg: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.DB, err = database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if sqlDB, dbErr := a.DB.DB(); dbErr == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err = repo.AutoMigrate(a.DB); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	a.Revoker = auth.NewRevoker(nil)
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if pingErr := c.RDB.Ping(ctx).Err(); pingErr != nil {
			_ = c.Close()
			return nil, fmt.Errorf("redis ping: %w", pingErr)
		}
		a.Revoker = auth.NewRevoker(c.RDB)
		a.closers = append(a.closers, c.Close)
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	var notifier domain.Notifier = notify.LogNotifier{Log: log}
	if cfg.MQ.URL != "" {
		pub, pubErr := notify.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if pubErr != nil {
			return nil, pubErr
		}
		a.closers = append(a.closers, pub.Close)
		notifier = pub
		log.Info("reservation events published", zap.String("exchange", cfg.MQ.Exchange))
	}

	a.JWT = auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)

	a.users = repo.NewUserRepo(a.DB)
	users := a.users
	tables := repo.NewTableRepo(a.DB)
	reservations := repo.NewReservationRepo(a.DB)

	a.Reservations = service.NewReservationService(service.ReservationDeps{
		Reservations: reservations,
		Tables:       tables,
		Users:        users,
		Notifier:     notifier,
		Rules:        rules,
		Log:          log,
	})
	a.Users = service.NewUserService(users, a.JWT, a.Revoker, log)
	tableSvc := service.NewTableService(tables, log)
	catalogSvc := service.NewCatalogService(repo.NewCatalogRepo(a.DB), c, cfg.CacheTTL(), log)

	a.Registry = router.NewRegistry(
		handler.NewUserHandler(a.Users),
		handler.NewTableHandler(tableSvc, a.Reservations),
		handler.NewReservationHandler(a.Reservations),
		handler.NewCatalogHandler(catalogSvc),
	)

	if b := cfg.Bootstrap; b.AdminEmail != "" {
		created, bootErr := a.Users.EnsureAdmin(ctx, b.AdminEmail, b.AdminPassword, b.AdminName)
		if bootErr != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", bootErr)
		}
		if created {
			log.Info("bootstrap admin created", zap.String("email", b.AdminEmail))
		}
	}
	return a, nil
}

func (a *App) RouterDeps(staticDir string) router.Deps {
	return router.Deps{
		Log:     a.Log,
		JWT:     a.JWT,
		Revoker: a.Revoker,
		Users:   a.users,
		CORS: server.Options{
			AllowOrigins:     a.Cfg.App.CORS.AllowOrigins,
			AllowCredentials: a.Cfg.App.CORS.AllowCredentials,
		},
		StaticDir: staticDir,
		Limits:    router.DefaultLimits(),
	}
}

// Close waits for pending confirmations and releases connections in
// reverse order.
func (a *App) Close() {
	if a.Reservations != nil {
		a.Reservations.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close", zap.Error(err))
		}
	}
	a.closers = nil
}
