package sensor

import (
	"lightsensord/internal/logger"
	"lightsensord/internal/models"
)

type aggregatorState int

const (
	// statePendingInitial: the next Poll emits the synthetic baseline reading.
	statePendingInitial aggregatorState = iota
	// stateNormal: readings come only from sync boundaries. Never left.
	stateNormal
)

// EnabledFlag reports whether completed readings should be delivered.
type EnabledFlag interface {
	Enabled() bool
}

// Stats counts what the aggregator did since construction.
type Stats struct {
	Emitted   uint64 // readings returned to callers
	Dropped   uint64 // boundaries consumed while disabled
	Anomalies uint64 // unknown event types or channel codes
}

// Aggregator folds relative-axis events into a pending reading and emits a
// snapshot at every EV_SYN while the sensor is enabled.
type Aggregator struct {
	source   EventSource
	clock    Clock
	enabled  EnabledFlag
	channels ChannelMap
	table    channelTable
	log      *logger.Logger

	state   aggregatorState
	pending models.Reading
	stats   Stats
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithInitialReading queues one all-zero reading for the first Poll.
func WithInitialReading() AggregatorOption {
	return func(a *Aggregator) { a.state = statePendingInitial }
}

// WithChannels overrides DefaultChannels.
func WithChannels(m ChannelMap) AggregatorOption {
	return func(a *Aggregator) { a.channels = m }
}

// WithAggregatorLogger sets the logger used for protocol anomalies.
func WithAggregatorLogger(l *logger.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAggregator builds an aggregator over source. It fails only on a
// conflicting channel map.
func NewAggregator(source EventSource, clock Clock, enabled EnabledFlag, opts ...AggregatorOption) (*Aggregator, error) {
	a := &Aggregator{
		source:   source,
		clock:    clock,
		enabled:  enabled,
		channels: DefaultChannels,
		log:      logger.NewNop(),
		state:    stateNormal,
		pending:  models.NewLightReading(),
	}
	for _, opt := range opts {
		opt(a)
	}
	table, err := a.channels.table()
	if err != nil {
		return nil, err
	}
	a.table = table
	return a, nil
}

// Poll returns up to maxCount completed readings. Events past the budget stay
// in the source for the next call. Source errors are returned as-is with no
// readings.
func (a *Aggregator) Poll(maxCount int) ([]models.Reading, error) {
	if maxCount < 1 {
		return nil, ErrInvalidArgument
	}

	if a.state == statePendingInitial {
		a.state = stateNormal
		a.pending.TimestampNs = a.clock.Now()
		if !a.enabled.Enabled() {
			a.stats.Dropped++
			return nil, nil
		}
		a.stats.Emitted++
		return []models.Reading{a.pending}, nil
	}

	if _, err := a.source.Fill(); err != nil {
		return nil, err
	}

	var out []models.Reading
	for len(out) < maxCount {
		ev, ok := a.source.ReadEvent()
		if !ok {
			break
		}
		switch ev.Type {
		case EvRel:
			a.apply(ev)
		case EvSyn:
			a.pending.TimestampNs = a.clock.FromTimeval(ev.Time)
			if a.enabled.Enabled() {
				out = append(out, a.pending)
				a.stats.Emitted++
			} else {
				a.stats.Dropped++
			}
		default:
			a.stats.Anomalies++
			a.log.Warnw("unknown_input_event", "type", ev.Type, "code", ev.Code)
		}
		a.source.Next()
	}
	return out, nil
}

func (a *Aggregator) apply(ev RawInputEvent) {
	slots, ok := a.table[ev.Code]
	if !ok {
		a.stats.Anomalies++
		a.log.Debugw("unknown_rel_channel", "code", ev.Code, "value", ev.Value)
		return
	}
	for _, slot := range slots {
		a.pending.Data[slot] = float32(ev.Value)
	}
}

// HasPendingInitial reports whether the synthetic reading is still queued.
func (a *Aggregator) HasPendingInitial() bool {
	return a.state == statePendingInitial
}

// Pending returns a copy of the in-progress reading.
func (a *Aggregator) Pending() models.Reading { return a.pending }

// Stats returns the running counters.
func (a *Aggregator) Stats() Stats { return a.stats }
