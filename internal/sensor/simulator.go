package sensor

import (
	"context"
	"math"
	"math/rand"
	"sync"
)

// Simulator generates a PPG-like waveform in raw ADC units: a systolic
// upstroke followed by a small dicrotic wave on a constant baseline.
type Simulator struct {
	rate      float64
	bpm       float64
	baseline  float64
	amplitude float64
	noise     float64
	phase     float64
	rng       *rand.Rand
	mu        sync.Mutex
}

func NewSimulator(cfg Config) *Simulator {
	return &Simulator{
		rate:      float64(cfg.SamplingRate),
		bpm:       cfg.BPM,
		baseline:  cfg.Baseline,
		amplitude: cfg.Amplitude,
		noise:     cfg.Noise,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}
}

// SetBPM changes the simulated heart rate from the next sample on
func (s *Simulator) SetBPM(bpm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bpm = bpm
}

func (s *Simulator) Read(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase += s.bpm / 60 / s.rate
	if s.phase >= 1 {
		s.phase--
	}

	v := s.baseline + s.amplitude*(gauss(s.phase, 0.25, 0.12)+0.15*gauss(s.phase, 0.6, 0.1))
	if s.noise > 0 {
		v += s.rng.NormFloat64() * s.noise
	}

	return max(0, int(math.Round(v))), nil
}

func (*Simulator) Close() error {
	return nil
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}
