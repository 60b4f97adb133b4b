package publish

import (
	"context"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"github.com/nats-io/nats.go"
)

const defaultNATSSubject = "pulse.reading"

type NATSConfig struct {
	URL     string
	Subject string
	Name    string
}

func (c NATSConfig) Validate() error {
	if c.URL == "" {
		return errors.New().WithMessage(ErrInvalidConfig, "nats url is required")
	}
	return nil
}

// NATS publishes snapshots as JSON on a single subject
type NATS struct {
	nc      *nats.Conn
	subject string
	log     logger.Logger
}

func NewNATS(cfg NATSConfig, log logger.Logger) (*NATS, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultNATSSubject
	}
	if cfg.Name == "" {
		cfg.Name = "pulsemon"
	}

	nc, err := nats.Connect(
		cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, errFactory.WithData(ErrConnect, struct {
			URL   string
			Error string
		}{
			URL:   cfg.URL,
			Error: err.Error(),
		})
	}

	log.Info().
		Str("url", cfg.URL).
		Str("subject", cfg.Subject).
		Msg("NATS publisher connected")

	return &NATS{nc: nc, subject: cfg.Subject, log: log}, nil
}

func (*NATS) Name() string {
	return "nats"
}

func (n *NATS) Publish(_ context.Context, snapshot monitor.Snapshot) error {
	b, err := encode(snapshot)
	if err != nil {
		return err
	}

	if err := n.nc.Publish(n.subject, b); err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}

	return nil
}

// Close flushes pending messages and closes the connection
func (n *NATS) Close() error {
	if err := n.nc.Drain(); err != nil {
		return errors.New().Wrap(ErrClose, err)
	}

	return nil
}
