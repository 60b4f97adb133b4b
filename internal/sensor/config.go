package sensor

import (
	"path/filepath"

	"codeberg.org/mutker/pulsemon/internal/errors"
)

const (
	defaultBus       = "/dev/i2c-1"
	defaultAddress   = 0x48
	defaultSimBPM    = 72
	defaultBaseline  = 6000
	defaultAmplitude = 4000
)

type Config struct {
	Kind Kind

	// ADS1115
	Bus     string
	Address int

	// Simulator
	SamplingRate int
	BPM          float64
	Baseline     float64
	Amplitude    float64
	Noise        float64
	Seed         int64

	// Replay
	ReplayPath string

	// CapturePath, when set, records every sample read into a capture file
	CapturePath string
}

func DefaultConfig() Config {
	return Config{
		Kind:         KindSimulator,
		Bus:          defaultBus,
		Address:      defaultAddress,
		SamplingRate: 50,
		BPM:          defaultSimBPM,
		Baseline:     defaultBaseline,
		Amplitude:    defaultAmplitude,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Kind.IsValid() {
		return errFactory.WithData(ErrUnknownSource, string(c.Kind))
	}

	switch c.Kind {
	case KindADS1115:
		if c.Bus == "" {
			return errFactory.WithMessage(ErrInvalidConfig, "i2c bus path is required")
		}
		if c.Address <= 0 || c.Address > 0x7f {
			return errFactory.WithData(ErrInvalidConfig, c.Address)
		}
	case KindSimulator:
		if c.SamplingRate <= 0 || c.BPM <= 0 {
			return errFactory.WithMessage(ErrInvalidConfig, "simulator needs a positive sampling rate and bpm")
		}
	case KindReplay:
		if c.ReplayPath == "" {
			return errFactory.WithMessage(ErrInvalidConfig, "replay database path is required")
		}
		if c.CapturePath != "" && filepath.Clean(c.CapturePath) == filepath.Clean(c.ReplayPath) {
			return errFactory.WithMessage(ErrInvalidConfig, "cannot capture into the replayed file")
		}
	}

	return nil
}
