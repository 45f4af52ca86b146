package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"lightsensord/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	sensorStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO sensor_state (id, enabled, cal_status, cal_factor, cal_error, last_reading, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled=excluded.enabled,
			cal_status=excluded.cal_status,
			cal_factor=excluded.cal_factor,
			cal_error=excluded.cal_error,
			last_reading=excluded.last_reading,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, enabled, cal_status, cal_factor, cal_error, last_reading, updated_at
		FROM sensor_state WHERE id=?
	`
)

// marshalReading stores the last reading as JSON; nil stays NULL.
func marshalReading(r *models.Reading) (sql.NullString, error) {
	if r == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalReading(s sql.NullString) (*models.Reading, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var r models.Reading
	if err := json.Unmarshal([]byte(s.String), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save updates or inserts the sensor_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.SensorState) error {
	last, err := marshalReading(state.LastReading)
	if err != nil {
		return err
	}

	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	status := state.CalibrationStatus
	if status == "" {
		status = models.CalibrationUnknown
	}

	_, err = r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		sensorStateRowID,
		state.Enabled,
		status,
		state.CalibrationFactor,
		state.CalibrationError,
		last,
		tsUTC,
	)
	return err
}

// Load fetches the single sensor_state row. A missing row yields the zero
// state and no error.
func (r *StateSQLite) Load(ctx context.Context) (models.SensorState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, sensorStateRowID)

	var (
		s       models.SensorState
		calErr  sql.NullString
		lastStr sql.NullString
	)
	if err := row.Scan(
		&s.ID,
		&s.Enabled,
		&s.CalibrationStatus,
		&s.CalibrationFactor,
		&calErr,
		&lastStr,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SensorState{}, nil
		}
		return models.SensorState{}, err
	}

	last, err := unmarshalReading(lastStr)
	if err != nil {
		return models.SensorState{}, err
	}
	s.CalibrationError = calErr.String
	s.LastReading = last
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
