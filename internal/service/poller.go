package service

import (
	"context"
	"sync"
	"time"

	"lightsensord/internal/logger"
	"lightsensord/internal/metrics"
	"lightsensord/internal/models"
	"lightsensord/internal/repository"
)

const (
	defaultPollBatch   = 16
	defaultPollTimeout = 500 * time.Millisecond
)

// PollerService drains the input device into the reading store.
type PollerService struct {
	driver      SensorDriver
	waiter      Waiter
	readingRepo repository.ReadingRepo
	metrics     *metrics.Metrics
	log         *logger.Logger
	batch       int
	timeout     time.Duration

	mu     sync.RWMutex
	latest *models.Reading
}

func NewPollerService(driver SensorDriver, waiter Waiter, readingRepo repository.ReadingRepo, m *metrics.Metrics, log *logger.Logger, batch int, timeout time.Duration) *PollerService {
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	if batch < 1 {
		batch = defaultPollBatch
	}
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &PollerService{
		driver:      driver,
		waiter:      waiter,
		readingRepo: readingRepo,
		metrics:     m,
		log:         log,
		batch:       batch,
		timeout:     timeout,
	}
}

// Run polls until ctx is canceled. Device and store errors are logged and the
// loop backs off for one timeout before retrying.
func (p *PollerService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !p.driver.HasPendingEvents() {
			ready, err := p.waiter.WaitReadable(p.timeout)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				p.metrics.ReadError()
				p.log.Errorw("poll_wait_failed", "err", err)
				p.backoff(ctx)
				continue
			}
			if !ready {
				continue
			}
		}

		if err := p.pollOnce(ctx); err != nil {
			p.backoff(ctx)
		}
	}
}

// Start runs Run on its own goroutine. The returned channel is closed once Run
// has returned; the driver and the reading store must outlive it.
func (p *PollerService) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	return done
}

// pollOnce drains up to one batch of readings and stores them.
func (p *PollerService) pollOnce(ctx context.Context) error {
	readings, err := p.driver.Poll(p.batch)
	p.metrics.ObserveStats(p.driver.Stats())
	if err != nil {
		p.metrics.ReadError()
		p.log.Errorw("poll_read_failed", "err", err)
		return err
	}
	if len(readings) == 0 {
		return nil
	}

	last := readings[len(readings)-1]
	p.metrics.ObserveReading(last)
	p.setLatest(last)

	if err := p.readingRepo.Append(ctx, readings...); err != nil {
		p.log.Errorw("reading_store_failed", "count", len(readings), "err", err)
		return err
	}
	p.log.Debugw("readings_stored", "count", len(readings), "ambient", last.Ambient(), "white", last.White())
	return nil
}

func (p *PollerService) backoff(ctx context.Context) {
	t := time.NewTimer(p.timeout)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (p *PollerService) setLatest(r models.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = &r
}

// Latest returns the most recent reading, if any was emitted yet.
func (p *PollerService) Latest() (models.Reading, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return models.Reading{}, false
	}
	return *p.latest, true
}
