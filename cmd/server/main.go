package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"researchhub/internal/completion"
	"researchhub/internal/config"
	"researchhub/internal/handler"
	"researchhub/internal/httpserver"
	"researchhub/internal/mail"
	"researchhub/internal/repository"
	"researchhub/internal/scholar"
	"researchhub/internal/service"
	"researchhub/internal/storage"
	"researchhub/internal/timer"
	"researchhub/pkg/db"
	"researchhub/pkg/logger"
	redisclient "researchhub/pkg/redis"
	"researchhub/pkg/util"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default("researchhub-server").Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.NewNamed("researchhub-server", cfg.Log)
	defer log.Sync()

	log.Info("Starting researchhub server...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	ctx := context.Background()

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis client", zap.Error(err))
	}
	defer rdb.Close()
	if err := redisclient.Ping(ctx, rdb); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// External clients
	llm, err := completion.New(cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to init completion client", zap.Error(err))
	}
	scholarClient := scholar.NewClient(cfg.Scholar, scholar.NewRedisCache(rdb), log)

	var mailer mail.Sender
	if cfg.Mail.APIKey != "" {
		sg, err := mail.NewSendGrid(cfg.Mail, log)
		if err != nil {
			log.Fatal("Failed to init SendGrid", zap.Error(err))
		}
		mailer = sg
	} else {
		log.Warn("No SendGrid API key configured, emails will only be logged")
		mailer = mail.NewLogSender(log)
	}

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to init storage", zap.Error(err))
	}
	defer store.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	roadmapRepo := repository.NewRoadmapRepository(dbConn, log)
	paperRepo := repository.NewPaperRepository(dbConn, log)
	contentRepo := repository.NewPaperContentRepository(dbConn, log)
	reminderRepo := repository.NewReminderRepository(dbConn, log)

	// Services
	lockTTL := cfg.Server.RoadmapLockTTL
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	authService := service.NewAuthService(userRepo, util.NewRevocationList(rdb), cfg.JWT.Secret, cfg.TokenTTL(), log)
	projectService := service.NewProjectService(projectRepo, roadmapRepo, llm, util.NewLock(rdb, lockTTL, log), log)
	paperService := service.NewPaperService(paperRepo, contentRepo, llm, log)
	reminderService := service.NewReminderService(reminderRepo, log)
	documentService := service.NewDocumentService(llm, scholarClient, mailer, store, log)

	timers := timer.NewManager(log)
	defer timers.Close()

	// Handlers
	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Projects:  handler.NewProjectHandler(projectService, log),
		Papers:    handler.NewPaperHandler(paperService, log),
		Dashboard: handler.NewDashboardHandler(projectService, paperService, log),
		Reminders: handler.NewReminderHandler(reminderService, log),
		Timer:     handler.NewTimerHandler(timers, log),
		Tools:     handler.NewToolsHandler(documentService, log),
	}, httpserver.Options{
		Authenticator: authService,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Ready: map[string]httpserver.Pinger{
			"db": dbConn,
			"redis": httpserver.PingFunc(func(ctx context.Context) error {
				return redisclient.Ping(ctx, rdb)
			}),
		},
		Logger: log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
