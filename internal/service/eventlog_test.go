package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"lightsensord/internal/models"
	"lightsensord/internal/repository"
)

func sensorEvent(id, typ string, operatorID int, at time.Time) models.SensorEvent {
	return models.SensorEvent{EventID: id, Type: typ, OperatorID: operatorID, OccurredAt: at}
}

func eventIDs(evs []models.SensorEvent) []string {
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.EventID)
	}
	return out
}

func TestEventQuery(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*3600)
	to := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      LogFilter
		want    repository.EventQuery
		wantErr error
	}{
		{
			name: "empty filter lists everything",
			in:   LogFilter{},
			want: repository.EventQuery{},
		},
		{
			name: "bounds move to UTC and type is canonicalised",
			in: LogFilter{
				From:       time.Date(2025, time.September, 10, 10, 0, 0, 0, plus2),
				To:         to,
				Type:       " calibration ",
				OperatorID: 4,
			},
			want: repository.EventQuery{
				From:       time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC),
				To:         to,
				Type:       models.EventCalibration,
				OperatorID: 4,
			},
		},
		{
			name:    "inverted range",
			in:      LogFilter{From: to, To: to.Add(-time.Minute), Type: "enable"},
			wantErr: errInvalidTimeRange,
		},
		{
			name:    "type the sensor never writes",
			in:      LogFilter{Type: "set_mode"},
			wantErr: ErrUnknownEventType,
		},
		{
			name:    "negative operator",
			in:      LogFilter{OperatorID: -1},
			wantErr: errInvalidOperator,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eventQuery(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				return
			}
			if !got.From.Equal(tc.want.From) || !got.To.Equal(tc.want.To) ||
				got.Type != tc.want.Type || got.OperatorID != tc.want.OperatorID {
				t.Fatalf("query = %+v, want %+v", got, tc.want)
			}
			if !got.From.IsZero() && got.From.Location() != time.UTC {
				t.Fatalf("from not in UTC: %v", got.From.Location())
			}
		})
	}
}

func TestEventLogService_List_ByOperatorAndType(t *testing.T) {
	t0 := time.Date(2025, time.March, 3, 6, 0, 0, 0, time.UTC)
	repo := &recordingEventRepo{events: []models.SensorEvent{
		sensorEvent("startup-cal", models.EventCalibration, 0, t0),
		sensorEvent("startup-on", models.EventEnable, 0, t0),
		sensorEvent("op3-off", models.EventDisable, 3, t0.Add(time.Minute)),
		sensorEvent("op7-cal", models.EventCalibration, 7, t0.Add(2*time.Minute)),
		sensorEvent("op7-on", models.EventEnable, 7, t0.Add(3*time.Minute)),
	}}
	svc := NewEventLogService(repo)

	cases := []struct {
		name   string
		filter LogFilter
		want   []string
	}{
		{name: "everything", filter: LogFilter{}, want: []string{"startup-cal", "startup-on", "op3-off", "op7-cal", "op7-on"}},
		{name: "one operator", filter: LogFilter{OperatorID: 7}, want: []string{"op7-cal", "op7-on"}},
		{name: "operator and type", filter: LogFilter{OperatorID: 7, Type: "enable"}, want: []string{"op7-on"}},
		{name: "type across actors", filter: LogFilter{Type: "CALIBRATION"}, want: []string{"startup-cal", "op7-cal"}},
		{name: "time window", filter: LogFilter{From: t0.Add(30 * time.Second), To: t0.Add(90 * time.Second)}, want: []string{"op3-off"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if ids := eventIDs(got); !slices.Equal(ids, tc.want) {
				t.Fatalf("events = %v, want %v", ids, tc.want)
			}
		})
	}
}

func TestEventLogService_List_InvalidFilterSkipsRepo(t *testing.T) {
	repo := &recordingEventRepo{}
	svc := NewEventLogService(repo)

	if _, err := svc.List(context.Background(), LogFilter{Type: "OVERHEAT"}); !errors.Is(err, ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
	if repo.lists != 0 {
		t.Fatalf("repository queried %d times for an invalid filter", repo.lists)
	}
}

func TestEventLogService_List_RepoError(t *testing.T) {
	repo := &recordingEventRepo{listErr: errBoom}
	svc := NewEventLogService(repo)

	if _, err := svc.List(context.Background(), LogFilter{Type: "error"}); !errors.Is(err, errBoom) {
		t.Fatalf("expected repo error, got %v", err)
	}
	if repo.lastQuery.Type != models.EventError {
		t.Fatalf("repo saw type %q", repo.lastQuery.Type)
	}
}
