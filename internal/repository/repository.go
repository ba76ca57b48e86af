package repository

import (
	"context"
	"database/sql"
	"time"

	"homeguard/internal/models"
	"homeguard/internal/repository/db"
)

// JobRepo is the process-wide job store. Implementations must be safe for
// concurrent use; individual Job records are owned by exactly one worker
// once the pipeline starts.
type JobRepo interface {
	Create(j models.Job)
	Get(id string) (models.Job, bool)
	Update(j models.Job)
	SweepTerminal(olderThan time.Time) int
}

// EventRepo is the append-only dispatch audit log.
type EventRepo interface {
	Append(ctx context.Context, e models.AlertEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.AlertEvent, error)
}

// ReadingRepo archives accepted sensor readings.
type ReadingRepo interface {
	SaveBatch(ctx context.Context, rows []models.Reading) error
	ListRecent(ctx context.Context, limit int) ([]models.Reading, error)
}

type Repository struct {
	Jobs     JobRepo
	Events   EventRepo
	Readings ReadingRepo
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Jobs:     NewJobMemory(),
		Events:   NewEventSQLite(sqlDB),
		Readings: NewReadingSQLite(sqlDB),
	}
}

// InitDB opens the SQLite file and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
