package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqcontracts "researchhub/contracts/mq"
	"researchhub/internal/config"
	"researchhub/internal/mail"
	"researchhub/internal/mqhandler"
	"researchhub/internal/repository"
	"researchhub/internal/worker"
	"researchhub/pkg/db"
	"researchhub/pkg/logger"
	"researchhub/pkg/mq"
	redisclient "researchhub/pkg/redis"
	"researchhub/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Default("researchhub-worker").Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.NewNamed("researchhub-worker", cfg.Log)
	defer log.Sync()

	log.Info("Starting reminder worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("queue", cfg.Worker.Queue),
		zap.Duration("interval", cfg.Worker.Interval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	retryTTL := cfg.Worker.RetryTTL
	if retryTTL <= 0 {
		retryTTL = 24 * time.Hour
	}
	retryCounter := util.NewRetryCounter(rdb, retryTTL)

	// MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Mail
	var mailer mail.Sender
	if cfg.Mail.APIKey != "" {
		sg, err := mail.NewSendGrid(cfg.Mail, log)
		if err != nil {
			log.Fatal("Failed to init SendGrid", zap.Error(err))
		}
		mailer = sg
	} else {
		log.Warn("No SendGrid API key configured, reminders will only be logged")
		mailer = mail.NewLogSender(log)
	}

	reminderRepo := repository.NewReminderRepository(dbConn, log)

	// (1) Dispatcher: due reminders -> reminder.due
	dispatcher := worker.NewDispatcher(reminderRepo, publisher, cfg.Worker.Config, log)
	go dispatcher.Run(ctx)

	// (2) Consumer: reminder.due -> email
	queue := cfg.Worker.Queue
	if queue == "" {
		queue = "reminder.due.q"
	}
	consumer, err := mq.NewConsumer(cfg.MQ.URL, queue, mqcontracts.RoutingKeyReminderDue, log)
	if err != nil {
		log.Fatal("Failed to init reminder consumer", zap.Error(err))
	}
	defer consumer.Close()

	dueHandler := mqhandler.NewReminderDueHandler(reminderRepo, mailer, retryCounter, publisher, log)
	consumer.SetHandler(dueHandler.Handle)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.StartConsuming(); err != nil {
			log.Error("Reminder consumer failed", zap.Error(err))
			cancel()
		}
	}()

	// HTTP server for health checks and metrics
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if !consumer.IsConnected() || !publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer pingCancel()
		if err := dbConn.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{Addr: ":8081", Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health server failed", zap.Error(err))
		}
	}()

	log.Info("Worker is ready to process reminders")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down worker...")
	cancel()
	consumer.Stop()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Warn("Timed out waiting for in-flight reminders")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("Worker exited")
}
