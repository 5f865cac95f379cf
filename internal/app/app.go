package app

import (
	"context"
	"database/sql"
	"fmt"

	"go-sge/internal/auth"
	"go-sge/internal/bootstrap"
	"go-sge/internal/config"
	"go-sge/internal/database"
	"go-sge/internal/middleware"
	"go-sge/internal/shared/connection"
	"go-sge/internal/shared/jwtauth"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the wired HTTP API.
type App struct {
	Router *gin.Engine
	db     *sql.DB
	rdb    *redis.Client
}

func postgresConfig(cfg *config.Config) connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
}

func jwtConfig(cfg *config.Config) jwtauth.Config {
	return jwtauth.Config{
		Secret:         []byte(cfg.JWT.Secret),
		Issuer:         cfg.JWT.Issuer,
		Audience:       cfg.JWT.Audience,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), cfg.DB.MaxRetries)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return gormDB, sqlDB, nil
}

// BuildApp connects the infrastructure, ensures the schema and the seeded
// identities, and registers every route.
func BuildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	gormDB, sqlDB, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := database.EnsureSchema(gormDB, logger); err != nil {
		sqlDB.Close()
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.DB.MaxRetries)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	if cfg.UsesDefaultSeedPassword() {
		logger.Warn("seeding admin with the default password, set SEED_ADMIN_PASSWORD", zap.String("email", cfg.Seed.AdminEmail))
	}
	seed := bootstrap.SeedConfig{AdminEmail: cfg.Seed.AdminEmail, AdminPassword: cfg.Seed.AdminPassword}
	if err := bootstrap.SeedIdentity(ctx, auth.NewRepository(gormDB), seed, logger); err != nil {
		rdb.Close()
		sqlDB.Close()
		return nil, fmt.Errorf("seed identity: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(logger),
	)

	registerModules(router, dependencies{
		cfg:    cfg,
		db:     sqlDB,
		gormDB: gormDB,
		rdb:    rdb,
		jwt:    jwtauth.NewManager(jwtConfig(cfg)),
		logger: logger,
	})

	return &App{Router: router, db: sqlDB, rdb: rdb}, nil
}

// Run serves the API until ctx is cancelled.
func (a *App) Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	return bootstrap.RunHTTPServer(ctx, a.Router, bootstrap.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, bootstrap.NewStdoutAuditLogger(logger), logger)
}

func (a *App) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
