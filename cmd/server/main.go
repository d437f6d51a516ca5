package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/aptfolio/backend/api/handler"
	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/internal/config"
	"github.com/aptfolio/backend/internal/infrastructure/journal"
	"github.com/aptfolio/backend/internal/infrastructure/monitor"
	pgInfra "github.com/aptfolio/backend/internal/infrastructure/postgres"
	redisInfra "github.com/aptfolio/backend/internal/infrastructure/redis"
	"github.com/aptfolio/backend/internal/middleware"
	"github.com/aptfolio/backend/internal/router"
	"github.com/aptfolio/backend/internal/services"
	"github.com/aptfolio/backend/internal/services/lifecycle"
	"github.com/aptfolio/backend/pkg/httpcontext"
	"github.com/aptfolio/backend/pkg/logger"
	"github.com/aptfolio/backend/repository"
	"github.com/aptfolio/backend/repository/postgres"
	redisRepo "github.com/aptfolio/backend/repository/redis"
	authUC "github.com/aptfolio/backend/usecase/auth"
	buildingUC "github.com/aptfolio/backend/usecase/building"
	escalationUC "github.com/aptfolio/backend/usecase/escalation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	runJournal, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		zapLogger.Fatal("failed to open run journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return runJournal.Close()
	})
	if cfg.Journal.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.Journal.RetentionDays)
		if err := runJournal.Prune(cutoff); err != nil {
			zapLogger.Warn("journal prune failed", zap.Error(err))
		}
	}

	mon := monitor.New(pool, redisClient, runJournal, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	buildingRepo := postgres.NewBuildingRepository(pool)
	operatorRepo := postgres.NewOperatorRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	runLocks := redisRepo.NewRunLockRepository(redisClient, cfg.Escalation.LockTTL)

	seedOperator(appCtx, cfg, operatorRepo, zapLogger)

	authUseCase := authUC.New(operatorRepo, sessionRepo, authUC.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.SessionTTL,
	}, zapLogger)
	buildingUseCase := buildingUC.New(buildingRepo, zapLogger)
	engine := escalationUC.New(buildingRepo, runLocks, runJournal, zapLogger)

	if cfg.Escalation.Enabled {
		scheduler, err := services.NewEscalationScheduler(engine, zapLogger, services.SchedulerConfig{
			CronSpec:   cfg.Escalation.CronSpec,
			RunTimeout: cfg.Escalation.RunTimeout,
		})
		if err != nil {
			zapLogger.Fatal("invalid escalation schedule", zap.Error(err))
		}
		scheduler.Start()
		manager.Register("escalation_scheduler", func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:       apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Building:   apiHandler.NewBuildingHandler(buildingUseCase, ctxAdapter, zapLogger),
		Escalation: apiHandler.NewEscalationHandler(engine, ctxAdapter, zapLogger, cfg.Escalation.RunTimeout),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// seedOperator provisions the bootstrap operator account when configured.
func seedOperator(ctx context.Context, cfg *config.Config, operators repository.OperatorRepository, logger *zap.Logger) {
	if cfg.Seed.OperatorUsername == "" || cfg.Seed.OperatorPassword == "" {
		return
	}

	hash, err := domain.HashPassword(cfg.Seed.OperatorPassword)
	if err != nil {
		logger.Error("failed to hash seed operator password", zap.Error(err))
		return
	}

	operator := &domain.Operator{
		Username:     cfg.Seed.OperatorUsername,
		PasswordHash: hash,
	}
	if err := operators.Upsert(ctx, operator); err != nil {
		logger.Error("failed to seed operator", zap.Error(err))
		return
	}
	logger.Info("seed operator provisioned", zap.String("username", operator.Username))
}
