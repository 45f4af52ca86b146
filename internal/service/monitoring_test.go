package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"lightsensord/internal/models"
)

func TestMonitoringService_GetState(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name       string
		repoResp   models.SensorState
		repoErr    error
		driver     *fakeDriver
		latest     LatestReading
		assertFunc func(t *testing.T, got models.SensorState, err error)
	}

	now := time.Now()

	cases := []testCase{
		{
			name:    "propagates repository error",
			repoErr: errors.New("db down"),
			driver:  &fakeDriver{},
			assertFunc: func(t *testing.T, got models.SensorState, err error) {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if got.ID != 0 {
					t.Errorf("expected zero state ID, got %d", got.ID)
				}
			},
		},
		{
			name:     "returns baseline when no state (ID=0)",
			repoResp: models.SensorState{ID: 0},
			driver:   &fakeDriver{},
			assertFunc: func(t *testing.T, got models.SensorState, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.ID != 1 {
					t.Errorf("baseline ID: want 1, got %d", got.ID)
				}
				if got.CalibrationStatus != models.CalibrationUnknown {
					t.Errorf("baseline CalibrationStatus: want %q, got %q", models.CalibrationUnknown, got.CalibrationStatus)
				}
				if got.Enabled {
					t.Errorf("baseline Enabled: want false")
				}
				if got.LastReading != nil {
					t.Errorf("baseline LastReading: want nil, got %+v", got.LastReading)
				}
				if got.UpdatedAt.Location() != time.UTC {
					t.Errorf("baseline UpdatedAt must be UTC, got %v", got.UpdatedAt.Location())
				}
				assertWithin(t, got.UpdatedAt, time.Since(now)+200*time.Millisecond)
			},
		},
		{
			name: "live enabled flag and latest reading override persisted ones",
			repoResp: models.SensorState{
				ID:                1,
				Enabled:           false,
				CalibrationStatus: models.CalibrationApplied,
				CalibrationFactor: 77,
				UpdatedAt:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -3*3600)), // UTC-3
			},
			driver: &fakeDriver{enabled: true},
			latest: staticLatest{r: lightReading(300, 90, 11), ok: true},
			assertFunc: func(t *testing.T, got models.SensorState, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !got.Enabled {
					t.Errorf("Enabled: want live value true")
				}
				if got.CalibrationFactor != 77 || got.CalibrationStatus != models.CalibrationApplied {
					t.Errorf("unexpected calibration fields: %+v", got)
				}
				if got.LastReading == nil || got.LastReading.Ambient() != 300 || got.LastReading.White() != 90 {
					t.Errorf("LastReading: %+v", got.LastReading)
				}
				wantUTC := time.Date(2025, 1, 2, 6, 4, 5, 0, time.UTC)
				if !got.UpdatedAt.Equal(wantUTC) || got.UpdatedAt.Location() != time.UTC {
					t.Errorf("UpdatedAt: want %v, got %v", wantUTC, got.UpdatedAt)
				}
			},
		},
		{
			name: "persisted reading kept when poller has none",
			repoResp: models.SensorState{
				ID:          1,
				LastReading: &models.Reading{TimestampNs: 5},
			},
			driver: &fakeDriver{},
			latest: staticLatest{},
			assertFunc: func(t *testing.T, got models.SensorState, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.LastReading == nil || got.LastReading.TimestampNs != 5 {
					t.Errorf("LastReading: %+v", got.LastReading)
				}
				if !got.UpdatedAt.IsZero() {
					t.Errorf("UpdatedAt: want zero, got %v", got.UpdatedAt)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			repo := &memStateRepo{state: tc.repoResp, loadErr: tc.repoErr}
			svc := NewMonitoringService(repo, tc.driver, tc.latest)

			got, err := svc.GetState(ctx)
			tc.assertFunc(t, got, err)
		})
	}
}

func TestToUTC(t *testing.T) {
	t.Parallel()

	t.Run("zero time is preserved", func(t *testing.T) {
		t.Parallel()
		var z time.Time
		if got := toUTC(z); !got.IsZero() {
			t.Fatalf("expected zero time, got %v", got)
		}
	})

	t.Run("non-zero converted to UTC", func(t *testing.T) {
		t.Parallel()
		local := time.Date(2025, 2, 3, 10, 0, 0, 0, time.FixedZone("Z+2", 2*3600))
		got := toUTC(local)
		want := time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)
		if got.Location() != time.UTC {
			t.Fatalf("expected UTC location, got %v", got.Location())
		}
		if !got.Equal(want) {
			t.Fatalf("want %v, got %v", want, got)
		}
	})
}

// assertWithin checks that got is within dur of now.
func assertWithin(t *testing.T, got time.Time, dur time.Duration) {
	t.Helper()
	if got.IsZero() {
		t.Fatalf("time is zero")
	}
	diff := time.Since(got)
	if diff < 0 {
		diff = -diff
	}
	if diff > dur {
		t.Fatalf("time %v not within %v of now; diff=%v", got, dur, diff)
	}
}
