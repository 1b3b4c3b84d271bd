package container

import (
	"context"
	"fmt"
	"time"

	"livepoll/internal/config"
	"livepoll/internal/live"
	"livepoll/internal/repository"
	"livepoll/internal/service"
	"livepoll/pkg/database"
	"livepoll/pkg/logger"
	"livepoll/pkg/redis"
)

// Services holds all application services
type Services struct {
	Auth  service.AuthService
	Polls *service.PollService
	Votes *service.VoteService
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Hub         *live.Hub
	Notifier    *live.Notifier
	Repos       *repository.Repositories
	Services    *Services
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	hub := live.NewHub(log.Logger)
	notifier := live.NewNotifier(hub, log.Logger)

	repos := &repository.Repositories{
		Polls:     repository.NewPollRepository(db),
		Questions: repository.NewQuestionRepository(db),
		Votes:     repository.NewVoteRepository(db),
		Users:     repository.NewUserRepository(db),
	}

	cache := service.NewCacheService(redisClient, log.Logger)
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour

	services := &Services{
		Auth:  service.NewAuthService(repos.Users, cfg.JWTSecret, tokenTTL, log.Logger),
		Polls: service.NewPollService(repos.Polls, repos.Questions, cache, notifier, log.Logger),
		Votes: service.NewVoteService(repos.Polls, repos.Votes, cache, notifier, log.Logger),
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		RedisClient: redisClient,
		Hub:         hub,
		Notifier:    notifier,
		Repos:       repos,
		Services:    services,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Close releases all held resources
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
