package health

import (
	"context"
	"database/sql"
	"time"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/db"
)

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Store    string `json:"store"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB        *sql.DB
	StoreType string
	Timeout   time.Duration
}

// NewService constructs a new health service. database may be nil when
// repositories are in memory.
func NewService(database *sql.DB, storeType string) *Service {
	return &Service{DB: database, StoreType: storeType, Timeout: 2 * time.Second}
}

// Status reports liveness and database reachability.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", Store: s.StoreType}
	if s.DB == nil {
		return st
	}
	if err := db.Ping(ctx, s.DB, s.Timeout); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
