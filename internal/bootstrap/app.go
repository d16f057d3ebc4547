package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "chatfeed/internal/app"
	"chatfeed/internal/cache"
	"chatfeed/internal/config"
	"chatfeed/internal/logging"
	"chatfeed/internal/moderation"
	"chatfeed/internal/platform"
	"chatfeed/internal/platform/database"
	"chatfeed/internal/platform/postgres"
	rabbitmqClient "chatfeed/internal/platform/rabbitmq"
	redisClient "chatfeed/internal/platform/redis"
	"chatfeed/internal/repository"
	"chatfeed/internal/worker"
)

type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *gorm.DB
	PgPool      *pgxpool.Pool
	Redis       *redis.Client
	MQConn      *amqp.Connection
	AlertWorker *worker.ModerationAlertWorker
	FeedService *appsvc.FeedService

	// Checks are the dependency probes reported by /health.
	Checks map[string]func(ctx context.Context) error

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logging.New(cfg.App.LogLevel, cfg.App.LogFormat),
		Checks:    make(map[string]func(ctx context.Context) error),
		StartedAt: time.Now(),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	var feedCache appsvc.FeedCache
	if cfg.Redis.Enabled {
		err := platform.Connect(ctx, a.Logger, "redis", func(ctx context.Context) error {
			client, err := redisClient.New(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			a.Redis = client
			return nil
		})
		if err != nil {
			return fmt.Errorf("connect redis failed: %w", err)
		}
		fc := cache.NewFeedCache(a.Redis, cfg.FeedTTL())
		a.Checks["redis"] = fc.Ping
		feedCache = fc
	}

	var publisher appsvc.EventPublisher
	if cfg.RabbitMQ.Enabled {
		err := platform.Connect(ctx, a.Logger, "rabbitmq", func(ctx context.Context) error {
			conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ModerationQueue)
			if err != nil {
				return err
			}
			a.MQConn = conn
			return nil
		})
		if err != nil {
			return fmt.Errorf("connect rabbitmq failed: %w", err)
		}
		conn := a.MQConn
		a.Checks["rabbitmq"] = func(context.Context) error {
			if conn.IsClosed() {
				return fmt.Errorf("connection closed")
			}
			return nil
		}
		publisher = rabbitmqClient.NewEventPublisher(conn, cfg.RabbitMQ.ModerationQueue)

		a.AlertWorker = worker.NewModerationAlertWorker(conn, cfg.RabbitMQ.ModerationQueue, a.Logger)
		if err := a.AlertWorker.Start(ctx); err != nil {
			return fmt.Errorf("start moderation alert worker failed: %w", err)
		}
	}

	classifier := moderation.NewOpenAIClassifier(moderation.Config{
		BaseURL: cfg.Moderation.BaseURL,
		APIKey:  cfg.Moderation.APIKey,
		Model:   cfg.Moderation.Model,
		SiteURL: cfg.Moderation.SiteURL,
		Timeout: cfg.ModerationTimeout(),
	})
	if cfg.Moderation.APIKey == "" {
		a.Logger.Warn("moderation api key is empty; requests may be rejected and posts will pass unmoderated")
	}

	a.FeedService = appsvc.NewFeedService(store, classifier, feedCache, publisher, a.Logger)
	return nil
}

func (a *App) openStore(ctx context.Context) (appsvc.MessageStore, error) {
	cfg := a.Config

	if cfg.Database.Driver == config.DriverPgx {
		err := platform.Connect(ctx, a.Logger, "postgres", func(ctx context.Context) error {
			pool, err := postgres.NewPool(ctx, cfg.DSN())
			if err != nil {
				return err
			}
			a.PgPool = pool
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres failed: %w", err)
		}
		repo := repository.NewPgxMessageRepository(a.PgPool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.Checks["database"] = repo.Ping
		return repo, nil
	}

	err := platform.Connect(ctx, a.Logger, cfg.Database.Driver, func(ctx context.Context) error {
		db, err := database.Open(ctx, cfg.Database.Driver, cfg.DSN())
		if err != nil {
			return err
		}
		a.DB = db
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect database failed: %w", err)
	}
	if err := repository.AutoMigrate(a.DB); err != nil {
		return nil, err
	}
	repo := repository.NewMessageRepository(a.DB)
	a.Checks["database"] = repo.Ping
	return repo, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.AlertWorker != nil {
		a.AlertWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.PgPool != nil {
		a.PgPool.Close()
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
