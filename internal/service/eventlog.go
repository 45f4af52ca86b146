package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lightsensord/internal/models"
	"lightsensord/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ErrUnknownEventType rejects a type filter the sensor never writes.
var ErrUnknownEventType = errors.New("unknown event type")

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidOperator  = errors.New("invalid operator id: must be >= 0")
)

// knownEventTypes are the types SensorService appends.
var knownEventTypes = map[string]struct{}{
	models.EventEnable:      {},
	models.EventDisable:     {},
	models.EventCalibration: {},
	models.EventError:       {},
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeRange converts both bounds to UTC and rejects from > to.
func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = normalizeToUTC(from), normalizeToUTC(to)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, errInvalidTimeRange
	}
	return from, to, nil
}

// eventQuery validates f and maps it onto the repository query.
func eventQuery(f LogFilter) (repository.EventQuery, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return repository.EventQuery{}, err
	}
	typ := normalizeEventType(f.Type)
	if _, ok := knownEventTypes[typ]; typ != "" && !ok {
		return repository.EventQuery{}, fmt.Errorf("%w: %q", ErrUnknownEventType, typ)
	}
	if f.OperatorID < 0 {
		return repository.EventQuery{}, errInvalidOperator
	}
	return repository.EventQuery{From: from, To: to, Type: typ, OperatorID: f.OperatorID}, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.SensorEvent, error) {
	q, err := eventQuery(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, q)
}
