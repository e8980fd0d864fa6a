package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubMigrator(t *testing.T, upErr error) (*int, sqlmock.Sqlmock) {
	t.Helper()
	prev := migrator
	t.Cleanup(func() { migrator = prev })

	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	ups := 0
	migrator.connect = func(ctx context.Context) (*sql.DB, error) { return database, nil }
	migrator.up = func(ctx context.Context, d *sql.DB) error {
		ups++
		return upErr
	}
	migrator.version = func(ctx context.Context, d *sql.DB) (int64, error) { return 3, nil }
	return &ups, mock
}

func TestMigrateDefaultsToUp(t *testing.T) {
	ups, mock := stubMigrator(t, nil)
	var out bytes.Buffer

	require.NoError(t, execute(context.Background(), nil, &out))
	assert.Equal(t, 1, *ups)
	assert.Contains(t, out.String(), "migrations applied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateVersion(t *testing.T) {
	ups, _ := stubMigrator(t, nil)
	var out bytes.Buffer

	require.NoError(t, execute(context.Background(), []string{"version"}, &out))
	assert.Zero(t, *ups)
	assert.Equal(t, "schema version 3\n", out.String())
}

func TestMigrateUpFailure(t *testing.T) {
	stubMigrator(t, errors.New("syntax error"))
	err := execute(context.Background(), []string{"up"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "run migrations: syntax error")
}
