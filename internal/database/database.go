package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"product-catalog/internal/config"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service owns the pooled connection to the relational store
type Service struct {
	db      *sql.DB
	dialect string
}

// New opens a connection pool for the given driver (mysql or postgres) and verifies it with a ping
func New(ctx context.Context, driver string, cfg config.DatabaseConfig) (*Service, error) {
	driverName, dsn, err := DSN(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Service{db: db, dialect: driver}, nil
}

// DSN builds the database/sql driver name and connection string for driver
func DSN(driver string, cfg config.DatabaseConfig) (string, string, error) {
	switch driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Database
		mc.ParseTime = true
		mc.Loc = time.UTC
		// report matched rather than changed rows so UPDATE can detect missing ids
		mc.ClientFoundRows = true
		return "mysql", mc.FormatDSN(), nil

	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, cfg.Port),
			Path:     "/" + cfg.Database,
			RawQuery: "sslmode=disable",
		}
		return "pgx", u.String(), nil

	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DB returns the underlying pool
func (s *Service) DB() *sql.DB {
	return s.db
}

// Dialect returns the driver the pool was opened for
func (s *Service) Dialect() string {
	return s.dialect
}

// Health reports pool statistics and whether the database answers a ping
func (s *Service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	return stats
}

// Close closes the pool
func (s *Service) Close() error {
	return s.db.Close()
}
