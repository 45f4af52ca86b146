package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lightsensord/internal/models"
	"lightsensord/internal/repository"
	"lightsensord/internal/sensor"
)

var errBoom = errors.New("boom")

// fakeDriver is an in-memory SensorDriver.
type fakeDriver struct {
	mu sync.Mutex

	enabled    bool
	enableErr  error
	setCalls   []bool
	cal        sensor.Calibration
	calErr     error
	recalCalls int

	pending bool
	batches [][]models.Reading
	pollErr error
	polls   int
	maxSeen int
	stats   sensor.Stats
}

func (d *fakeDriver) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

func (d *fakeDriver) SetEnabled(on bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setCalls = append(d.setCalls, on)
	if d.enableErr != nil {
		return false, d.enableErr
	}
	changed := d.enabled != on
	d.enabled = on
	return changed, nil
}

func (d *fakeDriver) Recalibrate() (sensor.Calibration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recalCalls++
	return d.cal, d.calErr
}

func (d *fakeDriver) Calibration() (sensor.Calibration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cal, d.calErr
}

func (d *fakeDriver) Poll(maxCount int) ([]models.Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polls++
	d.maxSeen = maxCount
	d.pending = false
	if d.pollErr != nil {
		return nil, d.pollErr
	}
	if len(d.batches) == 0 {
		return nil, nil
	}
	out := d.batches[0]
	d.batches = d.batches[1:]
	d.stats.Emitted += uint64(len(out))
	return out, nil
}

func (d *fakeDriver) HasPendingEvents() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *fakeDriver) Stats() sensor.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *fakeDriver) pollCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.polls
}

// memStateRepo keeps the single state row in memory.
type memStateRepo struct {
	mu      sync.Mutex
	state   models.SensorState
	loadErr error
	saveErr error
	saves   []models.SensorState
}

func (r *memStateRepo) Load(ctx context.Context) (models.SensorState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.loadErr
}

func (r *memStateRepo) Save(ctx context.Context, s models.SensorState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, s)
	if r.saveErr != nil {
		return r.saveErr
	}
	r.state = s
	return nil
}

// recordingEventRepo stores appended events and filters them like the
// SQLite repository does.
type recordingEventRepo struct {
	mu        sync.Mutex
	events    []models.SensorEvent
	appendErr error
	listErr   error
	lastQuery repository.EventQuery
	lists     int
}

func (r *recordingEventRepo) Append(ctx context.Context, e models.SensorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEventRepo) List(ctx context.Context, q repository.EventQuery) ([]models.SensorEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	r.lastQuery = q
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.SensorEvent
	for _, e := range r.events {
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		if q.OperatorID != 0 && e.OperatorID != q.OperatorID {
			continue
		}
		if !q.From.IsZero() && e.OccurredAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && e.OccurredAt.After(q.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *recordingEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// memReadingRepo stores appended readings and records List arguments.
type memReadingRepo struct {
	mu        sync.Mutex
	readings  []models.Reading
	appendErr error

	gotFrom  time.Time
	gotTo    time.Time
	gotLimit int
	listErr  error
}

func (r *memReadingRepo) Append(ctx context.Context, readings ...models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.readings = append(r.readings, readings...)
	return nil
}

func (r *memReadingRepo) List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotFrom, r.gotTo, r.gotLimit = from, to, limit
	return r.readings, r.listErr
}

func (r *memReadingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.readings)
}

// fakeWaiter reports readiness from a script, then ready forever.
type fakeWaiter struct {
	mu     sync.Mutex
	script []waitResult
	calls  int
}

type waitResult struct {
	ready bool
	err   error
}

func (w *fakeWaiter) WaitReadable(timeout time.Duration) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if len(w.script) == 0 {
		return true, nil
	}
	r := w.script[0]
	w.script = w.script[1:]
	return r.ready, r.err
}

// staticLatest is a fixed LatestReading.
type staticLatest struct {
	r  models.Reading
	ok bool
}

func (s staticLatest) Latest() (models.Reading, bool) { return s.r, s.ok }

func lightReading(ambient, white float32, ts int64) models.Reading {
	r := models.NewLightReading()
	r.Data[0], r.Data[1], r.Data[2] = ambient, ambient, white
	r.TimestampNs = ts
	return r
}
