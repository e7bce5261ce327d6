package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/domain"
	"product-catalog/internal/events"
	"product-catalog/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend bundles the storage and messaging resources behind the HTTP server
type Backend struct {
	Driver    string
	Products  repository.ProductRepository
	Publisher events.Publisher
	DB        *database.Service
	Redis     *redis.Client
}

// OpenBackend connects everything cfg asks for. Resources opened before a failure are released.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{Driver: cfg.Store.Driver}

	if err := b.openStore(ctx, cfg, logger); err != nil {
		b.Close(logger)
		return nil, err
	}

	if cfg.RedisRequired() {
		b.openRedis(ctx, cfg.Redis, logger)
	}

	if cfg.Cache.Enabled {
		if b.Redis != nil {
			b.Products = repository.NewCachedProductRepository(b.Products, cache.NewRedisCache(b.Redis, cfg.Cache.TTL), logger)
			logger.Info("Product cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
		} else {
			logger.Warn("Product cache disabled, Redis is unavailable")
		}
	}

	publisher, err := openPublisher(cfg.Events)
	if err != nil {
		b.Close(logger)
		return nil, err
	}
	b.Publisher = publisher
	logger.Info("Event publisher ready", zap.String("driver", cfg.Events.Driver))

	return b, nil
}

func (b *Backend) openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		var seed []domain.Product
		if cfg.Store.Seed {
			seed = repository.DefaultSeedProducts()
		}
		b.Products = repository.NewMemoryProductRepository(seed)

		if cfg.Store.Latency {
			b.Products = repository.NewDelayedProductRepository(b.Products, repository.DefaultLatencyProfile())
		}

		logger.Info("Using in-memory product store",
			zap.Int("seed_products", len(seed)),
			zap.Bool("simulated_latency", cfg.Store.Latency),
		)
		return nil

	case config.DriverMySQL, config.DriverPostgres:
		db, err := database.New(ctx, cfg.Store.Driver, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", cfg.Store.Driver, err)
		}
		b.DB = db
		logger.Info("Database health check", zap.Any("health", db.Health()))

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db.DB(), cfg.Store.Driver, logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("Database migrations completed successfully")
		}

		b.Products = repository.NewSQLProductRepository(db.DB(), repository.Dialect(cfg.Store.Driver))
		return nil

	default:
		return fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// openRedis connects to Redis. Features depending on it degrade when the ping fails.
func (b *Backend) openRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable", zap.String("addr", client.Options().Addr), zap.Error(err))
		client.Close()
		return
	}

	b.Redis = client
	logger.Info("Connected to Redis", zap.String("addr", client.Options().Addr))
}

func openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case "", config.EventsNone:
		return events.NewNoopPublisher(), nil
	case config.EventsKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsRabbitMQ:
		publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		return publisher, nil
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}

// Health reports the state of every connected resource
func (b *Backend) Health(ctx context.Context) (map[string]interface{}, bool) {
	healthy := true
	report := map[string]interface{}{
		"store": b.Driver,
	}

	if b.DB != nil {
		dbHealth := b.DB.Health()
		report["database"] = dbHealth
		if dbHealth["status"] != "up" {
			healthy = false
		}
	}

	if b.Redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		if err := b.Redis.Ping(pingCtx).Err(); err != nil {
			report["redis"] = "down"
		} else {
			report["redis"] = "up"
		}
	}

	return report, healthy
}

// Close releases every resource; errors are logged
func (b *Backend) Close(logger *zap.Logger) {
	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", zap.Error(err))
		}
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
}
