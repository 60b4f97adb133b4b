package sensor

import (
	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
)

// Open validates cfg and opens the configured source
func Open(cfg Config, log logger.Logger) (Source, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		src Source
		err error
	)

	switch cfg.Kind {
	case KindADS1115:
		src, err = OpenADS1115(cfg.Bus, cfg.Address)
	case KindSimulator:
		src = NewSimulator(cfg)
	case KindReplay:
		src, err = OpenReplay(cfg.ReplayPath, log)
	default:
		return nil, errFactory.WithData(ErrUnknownSource, string(cfg.Kind))
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("source", string(cfg.Kind)).Msg("Sample source opened")

	if cfg.CapturePath != "" {
		rec, err := NewRecorder(src, cfg.CapturePath, log)
		if err != nil {
			_ = src.Close()
			return nil, err
		}
		return rec, nil
	}

	return src, nil
}
