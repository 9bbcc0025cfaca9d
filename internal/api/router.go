package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opendms/dms-platform/internal/api/handler"
	"github.com/opendms/dms-platform/internal/api/middleware"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
	"github.com/opendms/dms-platform/internal/core/service"
	"github.com/opendms/dms-platform/internal/core/token"
	"github.com/opendms/dms-platform/internal/infrastructure/config"
	mongodb "github.com/opendms/dms-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/opendms/dms-platform/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes
// registered. Coarse role gates mirror the route table; every
// target-dependent rule is decided by the permission matrix inside the
// services once the target entity is loaded.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("dms_auth"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	deptRepo := mongodb.NewDepartmentRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.ThrottleMaxFailures, cfg.Auth.ThrottleWindow)
	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.ClockLeeway)

	authService := service.NewAuthService(userRepo, deptRepo, codec, throttle, audit, log)
	userService := service.NewUserService(userRepo, audit, log)
	deptService := service.NewDepartmentService(deptRepo, userRepo, audit, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	deptHandler := handler.NewDepartmentHandler(deptService)

	authn := middleware.Auth(codec)
	// Public routes install the anonymous principal; a token that is
	// present but invalid is still rejected, never downgraded.
	public := middleware.OptionalAuth(codec)
	adminOnly := middleware.RequireAuthority(domain.RoleAdmin.Authority(), domain.RoleSuperAdmin.Authority())
	superadminOnly := middleware.RequireAuthority(domain.RoleSuperAdmin.Authority())

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login, public)
	e.POST("/auth/register-superadmin", authHandler.RegisterSuperAdmin, public)
	e.POST("/auth/register", authHandler.Register, authn, adminOnly)
	e.POST("/auth/change-password", authHandler.ChangePassword, authn)
	e.POST("/auth/admin/change-password", authHandler.ResetPassword, authn, superadminOnly)
	e.POST("/auth/update-status", authHandler.UpdateStatus, authn)
	e.GET("/auth/whoami", authHandler.WhoAmI, authn)

	// --- User routes ---
	e.GET("/users", userHandler.List, authn, adminOnly)
	e.GET("/users/:id", userHandler.Get, authn)
	e.PUT("/users/:id", userHandler.Update, authn)
	e.DELETE("/users/:id", userHandler.Delete, authn, adminOnly)

	// --- Department routes ---
	e.POST("/departments", deptHandler.Create, authn, superadminOnly)
	e.DELETE("/departments/:id", deptHandler.Delete, authn, superadminOnly)
	e.GET("/departments", deptHandler.List, authn, adminOnly)
	e.POST("/departments/assign", deptHandler.Assign, authn, adminOnly)
	e.POST("/departments/unassign", deptHandler.Unassign, authn, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness, public)
	e.GET("/health/ready", readinessHandler.Readiness, public)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
