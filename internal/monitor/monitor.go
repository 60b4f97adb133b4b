package monitor

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/pulsemon/internal/buffer"
	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/pulse"
	"github.com/google/uuid"
)

// Monitor owns the sample window and the tick state. Only the goroutine
// running Run (or calling Tick) mutates them; Latest may be called from
// anywhere.
type Monitor struct {
	source       Source
	params       pulse.Params
	buf          *buffer.Rolling
	state        State
	publishers   []Publisher
	publishEvery int
	ticks        uint64
	session      string
	log          logger.Logger
	now          func() time.Time

	mu     sync.RWMutex
	latest Snapshot
}

// Option configures a Monitor
type Option func(*Monitor)

// WithPublisher adds a snapshot sink
func WithPublisher(p Publisher) Option {
	return func(m *Monitor) {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
}

// WithPublishEvery publishes every nth tick. Values below 1 mean every tick.
func WithPublishEvery(n int) Option {
	return func(m *Monitor) {
		m.publishEvery = max(1, n)
	}
}

// WithLogger sets the logger, logger.Default() otherwise
func WithLogger(log logger.Logger) Option {
	return func(m *Monitor) {
		m.log = log
	}
}

// WithSession overrides the generated session identifier
func WithSession(id string) Option {
	return func(m *Monitor) {
		m.session = id
	}
}

// WithClock overrides time.Now for snapshot timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

func New(source Source, params pulse.Params, opts ...Option) (*Monitor, error) {
	errFactory := errors.New()

	if source == nil {
		return nil, errFactory.New(ErrNilSource)
	}
	if params.SamplingRate <= 0 {
		return nil, errFactory.WithData(ErrInvalidSamplingRate, params.SamplingRate)
	}

	m := &Monitor{
		source:       source,
		params:       params,
		buf:          buffer.NewRolling(params.WindowSize()),
		publishEvery: 1,
		log:          logger.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.session == "" {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		m.session = id.String()
	}

	m.latest = Snapshot{
		Status:    pulse.StatusUndetected,
		Timestamp: m.now(),
		Session:   m.session,
	}

	return m, nil
}

// Session identifies this monitor run in published snapshots
func (m *Monitor) Session() string {
	return m.session
}

// Latest returns the snapshot of the most recent tick
func (m *Monitor) Latest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// Run ticks at the sampling rate until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) error {
	period := time.Second / time.Duration(m.params.SamplingRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	m.log.Info().
		Int("sampling_rate", m.params.SamplingRate).
		Int("window", m.params.WindowSize()).
		Str("session", m.session).
		Msg("Sampling started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Uint64("ticks", m.ticks).Msg("Sampling stopped")
			return nil
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick reads one sample, runs it through Step and publishes the result.
// A failed read counts as a no-contact sample.
func (m *Monitor) Tick(ctx context.Context) Snapshot {
	raw, err := m.source.Read(ctx)
	if err != nil {
		m.log.Warn().Err(errors.New().Wrap(ErrSourceRead, err)).Msg("Sample read failed")
		raw = 0
	}

	var snap Snapshot
	m.state, snap = Step(m.buf, m.state, raw, m.params)
	snap.Timestamp = m.now()
	snap.Session = m.session

	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()

	m.ticks++
	m.logSnapshot(snap)

	if m.ticks%uint64(m.publishEvery) == 0 {
		m.publish(ctx, snap)
	}

	return snap
}

func (m *Monitor) publish(ctx context.Context, snap Snapshot) {
	for _, p := range m.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			m.log.Warn().
				Str("publisher", p.Name()).
				Err(errors.New().Wrap(ErrPublish, err)).
				Msg("Publish failed")
		}
	}
}

func (m *Monitor) logSnapshot(snap Snapshot) {
	m.log.Debug().
		Int("value", snap.RawValue).
		Int("amplitude", snap.Amplitude).
		Bool("contact", snap.Contact).
		Str("bpm", snap.BPM.String()).
		Str("status", string(snap.Status)).
		Int("peaks", snap.Peaks).
		Int("window", m.buf.Len()).
		Msg("")
}
