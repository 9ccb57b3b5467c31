package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/emoncse/bugtracker/internal/audit"
	"github.com/emoncse/bugtracker/internal/config"
	"github.com/emoncse/bugtracker/internal/domain"
	"github.com/emoncse/bugtracker/internal/handler"
	"github.com/emoncse/bugtracker/internal/hub"
	"github.com/emoncse/bugtracker/internal/kafka"
	"github.com/emoncse/bugtracker/internal/relay"
	"github.com/emoncse/bugtracker/internal/repository"
	"github.com/emoncse/bugtracker/internal/service"
	"github.com/emoncse/bugtracker/pkg/database"
	"github.com/emoncse/bugtracker/pkg/jwt"
	"github.com/emoncse/bugtracker/pkg/log"
	"github.com/emoncse/bugtracker/pkg/middleware"
	"github.com/emoncse/bugtracker/pkg/pubsub"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.ProjectModel{},
		&domain.BugModel{},
		&domain.CommentModel{},
		&domain.ActivityModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessDuration, cfg.Auth.RefreshDuration, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("jwt manager init failed")
	}

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	bugs := repository.NewBugRepository(db)
	comments := repository.NewCommentRepository(db)
	activities := repository.NewActivityRepository(db)

	wsHub := hub.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The relay is the broadcaster when Redis is reachable; otherwise
	// frames stay in-process through the bare hub.
	var broadcaster service.Broadcaster = wsHub
	bus, err := pubsub.NewRedisPubSub(cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, running single-instance")
	} else {
		defer bus.Close()
		rl := relay.New(wsHub, bus, uuid.New().String())
		broadcaster = rl
		go func() {
			if err := rl.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("relay stopped")
			}
		}()
	}

	var exporter kafka.ActivityProducer
	if cfg.Kafka.Enabled {
		exporter, err = kafka.NewActivityProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn().Err(err).Msg("kafka unavailable, activity export disabled")
		} else {
			defer exporter.Close()
		}
	}

	access := service.NewAccessService(projects, bugs)
	notifier := service.NewNotificationService(activities, broadcaster, exporter)
	tracker := service.NewTrackerService(projects, bugs, comments, activities, users, access, notifier)
	auth := service.NewAuthService(users, tokens)

	recorder := audit.NewRecorder()
	wsOpts := hub.Options{
		PingInterval:   cfg.WebSocket.PingInterval,
		PongWait:       cfg.WebSocket.PongWait,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		SendBuffer:     cfg.WebSocket.SendBuffer,
	}

	authMW := middleware.NewAuthMiddleware(tokens)
	router := handler.NewRouter(
		handler.NewAuthHandler(auth),
		handler.NewHTTPHandler(tracker),
		handler.NewWSHandler(wsHub, access, broadcaster, recorder, wsOpts),
		authMW,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
