package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hydrotrack/internal/config"
	"hydrotrack/internal/dispatch"
	"hydrotrack/internal/handler"
	"hydrotrack/internal/httpserver"
	"hydrotrack/internal/mqhandler"
	"hydrotrack/internal/reminder"
	"hydrotrack/internal/repository"
	"hydrotrack/internal/service/auth"
	"hydrotrack/internal/service/intake"
	"hydrotrack/internal/service/notifier"
	"hydrotrack/internal/sink"
	"hydrotrack/pkg/db"
	"hydrotrack/pkg/logger"
	"hydrotrack/pkg/mq"
	"hydrotrack/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting hydrotrack...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb, err := redis.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connection established successfully")

	// MQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	entryRepo := repository.NewEntryRepository(dbConn, log)
	containerRepo := repository.NewContainerRepository(dbConn, log)
	settingsRepo := repository.NewSettingsRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn)

	// Core
	notificationSink := sink.NewRedisSink(rdb, log)
	scheduler := reminder.NewScheduler(notificationSink, settingsRepo, log)
	intakeSvc := intake.NewService(entryRepo, containerRepo, settingsRepo, publisher, log)
	authSvc := auth.NewService(userRepo, cfg.JWT.Secret)
	notifySvc := notifier.NewNotifier(log)

	// MQ Consumer for reminder.due
	log.Info("Initializing MQ consumer for reminder.due...",
		zap.String("queue", "reminder.due.q"),
		zap.String("routing_key", "reminder.due"),
	)
	dueConsumer, err := mq.NewConsumer(cfg.MQ.URL, "reminder.due.q", "reminder.due", log)
	if err != nil {
		log.Fatal("Failed to init reminder.due consumer", zap.Error(err))
	}
	defer dueConsumer.Close()
	dueConsumer.SetHandler(mqhandler.NewReminderDueHandler(notifySvc, log).Handle)
	go func() {
		if err := dueConsumer.StartConsuming(); err != nil {
			log.Fatal("reminder.due consumer failed", zap.Error(err))
		}
	}()

	// MQ Consumer for reminder.response
	log.Info("Initializing MQ consumer for reminder.response...",
		zap.String("queue", "reminder.response.q"),
		zap.String("routing_key", "reminder.response"),
	)
	responseConsumer, err := mq.NewConsumer(cfg.MQ.URL, "reminder.response.q", "reminder.response", log)
	if err != nil {
		log.Fatal("Failed to init reminder.response consumer", zap.Error(err))
	}
	defer responseConsumer.Close()
	responseConsumer.SetHandler(mqhandler.NewReminderResponseHandler(scheduler, log).Handle)
	go func() {
		if err := responseConsumer.StartConsuming(); err != nil {
			log.Fatal("reminder.response consumer failed", zap.Error(err))
		}
	}()

	// MQ Consumer for goal.reached
	log.Info("Initializing MQ consumer for goal.reached...",
		zap.String("queue", "goal.reached.q"),
		zap.String("routing_key", "goal.reached"),
	)
	goalConsumer, err := mq.NewConsumer(cfg.MQ.URL, "goal.reached.q", "goal.reached", log)
	if err != nil {
		log.Fatal("Failed to init goal.reached consumer", zap.Error(err))
	}
	defer goalConsumer.Close()
	goalConsumer.SetHandler(mqhandler.NewGoalReachedHandler(scheduler, log).Handle)
	go func() {
		if err := goalConsumer.StartConsuming(); err != nil {
			log.Fatal("goal.reached consumer failed", zap.Error(err))
		}
	}()

	// Reminder dispatcher
	dispatcher := dispatch.NewDispatcher(notificationSink, publisher, log)
	if cfg.Reminder.DispatchIntervalSeconds > 0 {
		dispatcher = dispatcher.WithInterval(time.Duration(cfg.Reminder.DispatchIntervalSeconds) * time.Second)
	}
	if cfg.Reminder.DispatchBatchSize > 0 {
		dispatcher = dispatcher.WithBatchSize(cfg.Reminder.DispatchBatchSize)
	}
	dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
	defer dispatchCancel()
	go dispatcher.Start(dispatchCtx)

	// HTTP Server
	authHandler := handler.NewAuthHandler(authSvc, log)
	entryHandler := handler.NewEntryHandler(intakeSvc, log)
	statsHandler := handler.NewStatsHandler(intakeSvc, log)
	containerHandler := handler.NewContainerHandler(containerRepo, log)
	settingsHandler := handler.NewSettingsHandler(settingsRepo, scheduler, log)
	reminderHandler := handler.NewReminderHandler(publisher, log)

	router := httpserver.NewRouter(
		authHandler,
		entryHandler,
		statsHandler,
		containerHandler,
		settingsHandler,
		reminderHandler,
		cfg.JWT.Secret,
		log,
		dbConn,
		dueConsumer,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("hydrotrack is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down hydrotrack gracefully...")

	dispatchCancel()

	log.Info("Stopping MQ consumers...")
	dueConsumer.Stop()
	responseConsumer.Stop()
	goalConsumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("hydrotrack shutdown complete")
}
