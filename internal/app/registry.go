package app

import (
	"database/sql"
	"net/http"

	"go-sge/internal/attendance"
	"go-sge/internal/auth"
	"go-sge/internal/config"
	"go-sge/internal/department"
	"go-sge/internal/employee"
	"go-sge/internal/leave"
	"go-sge/internal/messaging/kafka"
	"go-sge/internal/middleware"
	"go-sge/internal/shared/jwtauth"
	"go-sge/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dependencies struct {
	cfg    *config.Config
	db     *sql.DB
	gormDB *gorm.DB
	rdb    *redis.Client
	jwt    *jwtauth.Manager
	logger *zap.Logger
}

func registerModules(router *gin.Engine, deps dependencies) {
	logger := deps.logger

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(deps.gormDB)
	authRepo := auth.NewRepository(deps.gormDB)
	tokenRepo := auth.NewTokenRepository(deps.gormDB)
	departmentRepo := department.NewRepository(deps.gormDB)
	employeeRepo := employee.NewRepository(deps.gormDB)
	leaveRepo := leave.NewRepository(deps.gormDB)
	outboxRepo := kafka.NewOutboxRepository(deps.db)

	// --- Services ---
	tokenService := auth.NewTokenService(deps.db, authRepo, tokenRepo, deps.jwt, deps.cfg.JWT.RefreshTokenTTL, logger)
	authService := auth.NewService(authRepo, tokenService, logger)
	attendanceService := attendance.NewService(deps.db, attendanceRepo, outboxRepo, logger)
	departmentService := department.NewService(deps.db, departmentRepo, deps.rdb, logger)
	employeeService := employee.NewServiceWithOutbox(deps.db, employeeRepo, outboxRepo, deps.rdb, logger)
	leaveService := leave.NewService(deps.db, leaveRepo, outboxRepo, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, deps.cfg.IsProduction(), logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	departmentHandler := department.NewHandler(departmentService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)

	// --- Middleware ---
	authenticate := middleware.AuthMiddleware(deps.jwt)
	idempotency := middleware.Idempotency(deps.rdb, logger)

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authenticate)
		attendance.RegisterRoutes(api, attendanceHandler, authenticate, idempotency)
		department.RegisterRoutes(api, departmentHandler, authenticate, idempotency)
		employee.RegisterRoutes(api, employeeHandler, authenticate, idempotency)
		leave.RegisterRoutes(api, leaveHandler, authenticate, idempotency)
	}
}
