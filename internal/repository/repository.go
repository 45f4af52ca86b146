package repository

import (
	"context"
	"database/sql"
	"time"

	"lightsensord/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

type StateRepo interface {
	Save(ctx context.Context, s models.SensorState) error
	Load(ctx context.Context) (models.SensorState, error)
}

// EventQuery filters the sensor log. Zero fields do not filter.
type EventQuery struct {
	From       time.Time
	To         time.Time
	Type       string
	OperatorID int
}

type EventRepo interface {
	Append(ctx context.Context, e models.SensorEvent) error
	List(ctx context.Context, q EventQuery) ([]models.SensorEvent, error)
}

type ReadingRepo interface {
	Append(ctx context.Context, readings ...models.Reading) error
	// List returns at most limit readings recorded in [from, to], oldest first.
	List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error)
}

type Repository struct {
	StateRepo   StateRepo
	EventRepo   EventRepo
	ReadingRepo ReadingRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:   NewStateSQLite(db),
		EventRepo:   NewEventSQLite(db),
		ReadingRepo: NewReadingSQLite(db),
		Auth:        NewOperatorRepository(db),
	}
}
