package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appparking "github.com/parklot/backend/internal/application/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/infrastructure/auth"
	"github.com/parklot/backend/internal/infrastructure/config"
	"github.com/parklot/backend/internal/infrastructure/logger"
	"github.com/parklot/backend/internal/infrastructure/payment"
	"github.com/parklot/backend/internal/infrastructure/persistence"
	"github.com/parklot/backend/internal/infrastructure/scheduler"
	"github.com/parklot/backend/internal/interfaces/http/handler"
	"github.com/parklot/backend/internal/interfaces/http/middleware"
	"github.com/parklot/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	zapLogger, err := logger.New(logCfg)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.TimeZone),
	)

	gormLogger := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Repositories and transaction scope
	spotRepo := persistence.NewGormSpotRepository(db.DB)
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	clock := shared.NewSystemClock(cfg.Location())
	policy := appparking.Policy{
		MaxBookingSpan: cfg.Booking.MaxSpan,
		PastStartGrace: cfg.Booking.PastStartGrace,
		AmountEpsilon:  decimal.NewFromFloat(cfg.Booking.AmountEpsilon),
	}
	gateway := payment.NewSimulatedGateway(zapLogger)

	// Application services
	spotService := appparking.NewSpotService(spotRepo, clock, zapLogger)
	availabilityService := appparking.NewAvailabilityService(spotRepo, bookingRepo, policy, clock, zapLogger)
	reservationService := appparking.NewReservationService(txScope, policy, clock, zapLogger)
	bookingService := appparking.NewBookingService(txScope, gateway, policy, clock, zapLogger)
	reconcilerService := appparking.NewReconcilerService(txScope, clock, zapLogger)

	// Lifecycle sweep scheduler
	sweepScheduler := scheduler.NewSweepScheduler(reconcilerService, zapLogger, scheduler.SweepSchedulerConfig{
		Enabled:      cfg.Reconciler.Enabled,
		Interval:     cfg.Reconciler.SweepInterval,
		SweepTimeout: 30 * time.Second,
	})
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := sweepScheduler.Start(schedulerCtx); err != nil {
		zapLogger.Fatal("Failed to start sweep scheduler", zap.Error(err))
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		zapLogger.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(zapLogger),
		logger.GinMiddleware(zapLogger),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
	)

	engine.GET("/health", healthHandler(db))

	// Handlers and routes
	spotHandler := handler.NewSpotHandler(spotService, availabilityService)
	bookingHandler := handler.NewBookingHandler(reservationService, bookingService)

	parkingGroup := router.NewDomainGroup("parking", "/parking")
	parkingGroup.POST("/spots", spotHandler.Create)
	parkingGroup.GET("/spots", spotHandler.List)
	parkingGroup.GET("/spots/availability", spotHandler.Availability)
	parkingGroup.GET("/spots/:id", spotHandler.GetByID)
	parkingGroup.POST("/bookings", bookingHandler.Create)
	parkingGroup.GET("/bookings", bookingHandler.List)
	parkingGroup.GET("/bookings/:id", bookingHandler.GetByID)
	parkingGroup.POST("/bookings/:id/pay", bookingHandler.Pay)
	parkingGroup.POST("/bookings/:id/activate", bookingHandler.Activate)
	parkingGroup.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	parkingGroup.POST("/bookings/:id/extend", bookingHandler.Extend)
	parkingGroup.GET("/bookings/:id/payments", bookingHandler.ListPayments)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Without a JWT secret the API falls back to the X-User-ID header,
	// which is only acceptable for local development.
	if cfg.JWT.Secret != "" {
		jwtService := auth.NewJWTService(cfg.JWT)
		jwtConfig := middleware.DefaultJWTConfig(jwtService)
		jwtConfig.Logger = zapLogger
		jwtConfig.SkipPathPrefixes = append(jwtConfig.SkipPathPrefixes, "/api/v1/parking/spots")
		r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	} else {
		zapLogger.Warn("JWT secret not configured, accepting X-User-ID header for identity")
	}

	r.Register(parkingGroup)
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Shutting down server", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}

	if err := sweepScheduler.Stop(shutdownCtx); err != nil {
		zapLogger.Error("Sweep scheduler shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Server stopped")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
