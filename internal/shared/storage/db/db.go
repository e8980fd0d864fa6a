package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// Role names the kind of process holding the pool.
type Role string

const (
	RoleServer  Role = "server"
	RoleLambda  Role = "lambda"
	RoleMigrate Role = "migrate"
)

// Options sizes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// IsLambdaRuntime reports whether the current process is running in AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// RoleForRuntime picks RoleLambda inside Lambda and RoleServer otherwise.
func RoleForRuntime() Role {
	if IsLambdaRuntime() {
		return RoleLambda
	}
	return RoleServer
}

// PoolFor returns pool sizing for role. The intake commit path holds one
// connection per in-flight insert, so servers keep ten; a Lambda container
// serves one event at a time and keeps two. DB_MAX_OPEN_CONNS and
// DB_MAX_IDLE_CONNS override the defaults.
func PoolFor(role Role) Options {
	opts := Options{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second}
	switch role {
	case RoleLambda:
		opts = Options{MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, PingTimeout: 3 * time.Second}
	case RoleMigrate:
		opts.MaxOpenConns, opts.MaxIdleConns = 1, 1
	}
	if v, ok := readEnvInt("DB_MAX_OPEN_CONNS"); ok {
		opts.MaxOpenConns = v
	}
	if v, ok := readEnvInt("DB_MAX_IDLE_CONNS"); ok {
		opts.MaxIdleConns = v
	}
	return opts
}

// Connect opens a pgx-backed *sql.DB and verifies it answers.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(max(opts.MaxOpenConns, 1))
	db.SetMaxIdleConns(max(opts.MaxIdleConns, 0))
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := Ping(ctx, db, opts.PingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := db.Stats()
	telemetry.Info("db.init", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
	})
	return db, nil
}

// Ping reports whether the database answers within timeout. A nil database is healthy
// because dev mode runs on memory repositories.
func Ping(ctx context.Context, database *sql.DB, timeout time.Duration) error {
	if database == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return database.PingContext(pingCtx)
}

func readEnvInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "value": raw})
		return 0, false
	}
	return val, true
}
