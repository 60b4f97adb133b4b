package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/pulsemon/internal/config"
	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"codeberg.org/mutker/pulsemon/internal/pid"
	"codeberg.org/mutker/pulsemon/internal/publish"
	"codeberg.org/mutker/pulsemon/internal/sensor"
	"codeberg.org/mutker/pulsemon/internal/server"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	shutdownTimeout = 5 * time.Second
	connectTimeout  = 5 * time.Second
)

type closer interface {
	Close() error
}

type app struct {
	cfg     *config.Config
	session string
	source  sensor.Source
	monitor *monitor.Monitor
	server  *server.Server
	closers map[string]closer
}

func main() {
	cfg, err := config.Load(config.WithArgs(os.Args[1:]))
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Str("pid_file", pid.Path()).Msg("Refusing to start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	a, err := initApp(ctx, cfg)
	if err != nil {
		_ = pid.Remove()
		logger.FatalWithCode(errors.New().Wrap(errors.ErrInitApp, err)).Send()
	}

	if err := a.monitor.Run(ctx); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrMainLoop, err)).Send()
	}

	a.cleanup()
}

func initApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.Default()
	a := &app{cfg: cfg, session: newSession(), closers: make(map[string]closer)}

	source, err := sensor.Open(cfg.SensorConfig(), log)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrOpenSource, err)
	}
	a.source = source

	opts := []monitor.Option{
		monitor.WithSession(a.session),
		monitor.WithLogger(log),
		monitor.WithPublishEvery(cfg.PublishEvery),
	}

	publishers, err := a.initPublishers(ctx)
	if err != nil {
		a.cleanup()
		return nil, err
	}
	for _, p := range publishers {
		opts = append(opts, monitor.WithPublisher(p))
	}

	var hub *server.Hub
	if cfg.Listen != "" {
		hub = server.NewHub(log)
		opts = append(opts, monitor.WithPublisher(hub))
	}

	a.monitor, err = monitor.New(source, cfg.Params(), opts...)
	if err != nil {
		a.cleanup()
		return nil, err
	}

	if cfg.Listen != "" {
		a.server = server.New(cfg.Listen, a.monitor, hub, log)
		if err := a.server.Start(); err != nil {
			a.server = nil
			a.cleanup()
			return nil, err
		}
	}

	logger.Info().
		Str("source", cfg.Source).
		Str("session", a.monitor.Session()).
		Int("publishers", len(publishers)).
		Msg("Pulse monitor ready")

	return a, nil
}

func (a *app) initPublishers(ctx context.Context) ([]monitor.Publisher, error) {
	var publishers []monitor.Publisher
	log := logger.Default()

	if a.cfg.NATSURL != "" {
		nc, err := publish.NewNATS(publish.NATSConfig{
			URL:     a.cfg.NATSURL,
			Subject: a.cfg.NATSSubject,
			Name:    "pulsemon",
		}, log)
		if err != nil {
			return nil, errors.New().Wrap(errors.ErrInitPublish, err)
		}
		a.closers[nc.Name()] = nc
		publishers = append(publishers, nc)
	}

	if a.cfg.MQTTBroker != "" {
		dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		mc, err := publish.NewMQTT(dialCtx, publish.MQTTConfig{
			Broker:   a.cfg.MQTTBroker,
			Topic:    a.cfg.MQTTTopic,
			ClientID: "pulsemon-" + a.session,
		}, log)
		if err != nil {
			return nil, errors.New().Wrap(errors.ErrInitPublish, err)
		}
		a.closers[mc.Name()] = mc
		publishers = append(publishers, mc)
	}

	return publishers, nil
}

// newSession returns a time-ordered identifier for this run
func newSession() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func (a *app) cleanup() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to stop HTTP server")
		}
		cancel()
	}

	for name, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Error().Err(errors.New().Wrap(errors.ErrClosePublish, err)).Str("publisher", name).Msg("")
		}
	}

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			logger.Error().Err(errors.New().Wrap(errors.ErrCloseSource, err)).Msg("")
		}
	}

	if err := pid.Remove(); err != nil {
		logger.Error().Err(err).Msg("failed to remove PID file")
	}

	logger.Info().Msg("Exiting...")
}
