package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"lightsensord/internal/models"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const insertEventSQL = `
		INSERT INTO sensor_events (id, occurred_at, type, message, meta, operator_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

const selectEventsSQL = `SELECT id, occurred_at, type, message, meta, operator_id FROM sensor_events`

// nullableOperator stores daemon-originated events with a NULL operator.
func nullableOperator(id int) any {
	if id <= 0 {
		return nil
	}
	return int64(id)
}

// Append inserts a new event. Missing EventID/OccurredAt are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.SensorEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.Format("2006-01-02 15:04:05"), // SQLite TIMESTAMP format
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
		nullableOperator(e.OperatorID),
	)
	return err
}

// List returns events filtered by [From, To] (inclusive), type and operator,
// ordered ASC.
func (r *EventSQLite) List(ctx context.Context, eq EventQuery) ([]models.SensorEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !eq.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, eq.From.UTC())
	}
	if !eq.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, eq.To.UTC())
	}
	if typ := strings.ToUpper(strings.TrimSpace(eq.Type)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if eq.OperatorID > 0 {
		conds = append(conds, "operator_id = ?")
		args = append(args, int64(eq.OperatorID))
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SensorEvent, 0, 64)
	for rows.Next() {
		var (
			ev       models.SensorEvent
			metaStr  sql.NullString
			operator sql.NullInt64
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr, &operator); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		if operator.Valid {
			ev.OperatorID = int(operator.Int64)
		}

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
