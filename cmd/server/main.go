package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	natsclient "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/0xsj/overwatch-pkg/log"

	inboundnats "github.com/0xsj/overwatch-profile/internal/adapter/inbound/nats"
	"github.com/0xsj/overwatch-profile/internal/adapter/outbound/gravatar"
	natsadapter "github.com/0xsj/overwatch-profile/internal/adapter/outbound/nats"
	"github.com/0xsj/overwatch-profile/internal/adapter/outbound/postgres"
	rediscache "github.com/0xsj/overwatch-profile/internal/adapter/outbound/redis"
	"github.com/0xsj/overwatch-profile/internal/app/command"
	"github.com/0xsj/overwatch-profile/internal/app/service"
	"github.com/0xsj/overwatch-profile/internal/config"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/avatar"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := log.NewPretty(log.DefaultConfig())

	logger.Info("starting profile service",
		log.String("version", "1.0.0"),
	)

	// Connect to PostgreSQL
	pool, err := connectPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	// Connect to Redis
	redisClient, err := connectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// Connect to NATS
	natsConn, err := connectNATS(cfg.NATS, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	defer natsConn.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	inviteRepo := postgres.NewInviteRepository(pool)

	// Initialize caches and rate limiting
	userCache := rediscache.NewUserCache(redisClient, time.Hour)
	limiter := rediscache.NewRateLimiter(redisClient, cfg.Username.RateLimitMax, cfg.Username.RateLimitWindow)

	// Initialize collaborator clients
	eventPublisher := natsadapter.NewEventPublisher(natsConn, cfg.NATS.SubjectPrefix)
	mailScheduler := natsadapter.NewMailScheduler(natsConn, cfg.NATS.SubjectPrefix)
	membership := natsadapter.NewMembershipService(natsConn, cfg.NATS.SubjectPrefix)
	avatarStore := natsadapter.NewAvatarStore(natsConn, cfg.NATS.SubjectPrefix)
	permissions := natsadapter.NewPermissionChecker(natsConn, cfg.NATS.SubjectPrefix)

	// Initialize workflow services
	validator := service.NewUsernameValidator(cfg.Username.ValidationPattern, logger)
	availability := service.NewAvailabilityService(userRepo)
	avatars := service.NewAvatarService(
		[]avatar.Provider{gravatar.NewProvider()},
		avatarStore,
		logger,
	)
	sideEffects := service.NewSideEffects(
		service.SideEffectConfig{
			EnrollmentEmailEnabled: cfg.Username.EnrollmentEmailEnabled,
			DefaultAvatarEnabled:   cfg.Username.DefaultAvatarEnabled,
			RoomJoinPolicy:         service.RoomJoinPolicy(cfg.Username.RoomJoinPolicy),
		},
		mailScheduler,
		avatars,
		inviteRepo,
		membership,
		eventPublisher,
		logger,
	)

	// Initialize command handlers
	setUsername := command.NewSetUsernameHandler(validator, availability, userRepo, userCache, sideEffects)
	gated := command.NewRateLimitedSetUsername(setUsername, permissions, limiter, logger)

	// Start the inbound handler
	handler := inboundnats.NewHandler(natsConn, cfg.NATS.SubjectPrefix, gated, logger)
	if err := handler.Start(); err != nil {
		return fmt.Errorf("failed to start handler: %w", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("profile service started")

	sig := <-sigChan
	logger.Info("received shutdown signal", log.String("signal", sig.String()))
	cancel()

	if err := handler.Stop(); err != nil {
		return fmt.Errorf("failed to stop handler: %w", err)
	}

	logger.Info("profile service stopped gracefully")
	return nil
}

func connectPostgres(ctx context.Context, cfg config.DatabaseConfig, logger log.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to postgres",
		log.String("host", cfg.Host),
		log.String("database", cfg.Database),
	)

	return pool, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, logger log.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected to redis",
		log.String("address", cfg.Address()),
	)

	return client, nil
}

func connectNATS(cfg config.NATSConfig, logger log.Logger) (*natsclient.Conn, error) {
	opts := []natsclient.Option{
		natsclient.MaxReconnects(cfg.MaxReconnects),
		natsclient.ReconnectWait(cfg.ReconnectWait),
		natsclient.DisconnectErrHandler(func(nc *natsclient.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", log.String("error", err.Error()))
			}
		}),
		natsclient.ReconnectHandler(func(nc *natsclient.Conn) {
			logger.Info("nats reconnected", log.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := natsclient.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	logger.Info("connected to nats",
		log.String("url", conn.ConnectedUrl()),
	)

	return conn, nil
}
