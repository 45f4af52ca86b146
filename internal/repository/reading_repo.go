package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"lightsensord/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

const (
	insertReadingSQL = `INSERT INTO readings (id, recorded_at, timestamp_ns, version, sensor_id, type, ambient, white, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectReadingsSQL = `SELECT id, recorded_at, timestamp_ns, version, sensor_id, type, data FROM readings`

	defaultReadingLimit = 100
)

// Append stores a batch of readings in one transaction. Missing IDs and
// RecordedAt are filled in.
func (r *ReadingSQLite) Append(ctx context.Context, readings ...models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin readings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, rd := range readings {
		if rd.ID == "" {
			rd.ID = uuid.NewString()
		}
		if rd.RecordedAt.IsZero() {
			rd.RecordedAt = now
		}
		data, err := json.Marshal(rd.Data)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertReadingSQL,
			rd.ID,
			rd.RecordedAt.UTC(),
			rd.TimestampNs,
			rd.Version,
			rd.SensorID,
			rd.Type,
			rd.Ambient(),
			rd.White(),
			string(data),
		); err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}
	return tx.Commit()
}

// List returns the most recent readings within [from, to], oldest first.
// A non-positive limit falls back to defaultReadingLimit.
func (r *ReadingSQLite) List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, to.UTC())
	}
	if limit <= 0 {
		limit = defaultReadingLimit
	}

	q := selectReadingsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY recorded_at DESC, timestamp_ns DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reading
	for rows.Next() {
		var (
			rd   models.Reading
			data string
		)
		if err := rows.Scan(&rd.ID, &rd.RecordedAt, &rd.TimestampNs, &rd.Version, &rd.SensorID, &rd.Type, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &rd.Data); err != nil {
			return nil, fmt.Errorf("decode reading %s: %w", rd.ID, err)
		}
		rd.RecordedAt = rd.RecordedAt.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}
