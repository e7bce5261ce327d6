package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"product-catalog/internal/database"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// testDBs holds one migrated database per dialect; a dialect is absent when its container could not start
var testDBs = map[Dialect]*sql.DB{}

type teardownFunc func(context.Context, ...testcontainers.TerminateOption) error

func setupPostgres(ctx context.Context) (teardownFunc, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(db, string(DialectPostgres), zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	testDBs[DialectPostgres] = db
	return dbContainer.Terminate, nil
}

func setupMySQL(ctx context.Context) (teardownFunc, error) {
	dbContainer, err := mysql.Run(
		ctx,
		"mysql:8.0.36",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(ctx, "parseTime=true", "clientFoundRows=true")
	if err != nil {
		return dbContainer.Terminate, err
	}

	db, err := sql.Open("mysql", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(db, string(DialectMySQL), zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	testDBs[DialectMySQL] = db
	return dbContainer.Terminate, nil
}

// startContainer runs setup and turns a panic from a missing Docker provider into an error
func startContainer(ctx context.Context, setup func(context.Context) (teardownFunc, error)) (teardown teardownFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("container provider unavailable: %v", r)
		}
	}()
	return setup(ctx)
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	var teardowns []teardownFunc
	for name, setup := range map[string]func(context.Context) (teardownFunc, error){
		"postgres": setupPostgres,
		"mysql":    setupMySQL,
	} {
		teardown, err := startContainer(ctx, setup)
		if teardown != nil {
			teardowns = append(teardowns, teardown)
		}
		if err != nil {
			log.Printf("could not start %s container, SQL tests for it will be skipped: %v", name, err)
		}
	}

	code := m.Run()

	for _, db := range testDBs {
		db.Close()
	}
	for _, teardown := range teardowns {
		if err := teardown(ctx); err != nil {
			log.Printf("could not teardown container: %v", err)
		}
	}

	os.Exit(code)
}
