package rankings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO job_rankings").
		WithArgs("job-1", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := &PGStore{DB: db}
	if err := store.Upsert(context.Background(), "job-1", json.RawMessage(`[]`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT ranking, updated_at FROM job_rankings").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"ranking", "updated_at"}))

	store := &PGStore{DB: db}
	if _, _, err := store.Get(context.Background(), "job-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT ranking, updated_at FROM job_rankings").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"ranking", "updated_at"}).AddRow([]byte(`[1]`), now))

	store := &PGStore{DB: db}
	payload, updated, err := store.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(payload) != `[1]` || !updated.Equal(now) {
		t.Fatalf("unexpected row: %s %v", payload, updated)
	}
}

func TestMemoryStoreLatestWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Upsert(ctx, "job-1", json.RawMessage(`[1]`))
	_ = store.Upsert(ctx, "job-1", json.RawMessage(`[2]`))

	payload, _, err := store.Get(ctx, "job-1")
	if err != nil || string(payload) != `[2]` {
		t.Fatalf("expected latest payload, got %s %v", payload, err)
	}
	_ = store.Delete(ctx, "job-1")
	if _, _, err := store.Get(ctx, "job-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
