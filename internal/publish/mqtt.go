package publish

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"github.com/eclipse/paho.golang/paho"
)

const (
	defaultMQTTTopic = "pulsemon/reading"
	mqttKeepAlive    = 30
	mqttDialTimeout  = 5 * time.Second
)

type MQTTConfig struct {
	// Broker is host:port, optionally prefixed with tcp:// or mqtt://
	Broker   string
	Topic    string
	ClientID string
}

func (c MQTTConfig) Validate() error {
	errFactory := errors.New()

	if c.Broker == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "mqtt broker is required")
	}
	if c.ClientID == "" {
		return errFactory.WithMessage(ErrInvalidConfig, "mqtt client id is required")
	}
	return nil
}

// MQTT publishes snapshots as JSON over MQTT v5 at QoS 0
type MQTT struct {
	client *paho.Client
	topic  string
	log    logger.Logger
}

func NewMQTT(ctx context.Context, cfg MQTTConfig, log logger.Logger) (*MQTT, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Topic == "" {
		cfg.Topic = defaultMQTTTopic
	}

	d := net.Dialer{Timeout: mqttDialTimeout}
	conn, err := d.DialContext(ctx, "tcp", brokerAddress(cfg.Broker))
	if err != nil {
		return nil, errFactory.WithData(ErrConnect, struct {
			Broker string
			Error  string
		}{
			Broker: cfg.Broker,
			Error:  err.Error(),
		})
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID: cfg.ClientID,
		Conn:     conn,
		OnClientError: func(err error) {
			log.Warn().Err(err).Msg("MQTT client error")
		},
	})

	ack, err := client.Connect(ctx, &paho.Connect{
		ClientID:   cfg.ClientID,
		KeepAlive:  mqttKeepAlive,
		CleanStart: true,
	})
	if err != nil {
		_ = conn.Close()
		return nil, errFactory.Wrap(ErrConnect, err)
	}
	if ack.ReasonCode != 0 {
		_ = conn.Close()
		return nil, errFactory.WithData(ErrConnect, struct {
			Broker     string
			ReasonCode byte
		}{
			Broker:     cfg.Broker,
			ReasonCode: ack.ReasonCode,
		})
	}

	log.Info().
		Str("broker", cfg.Broker).
		Str("topic", cfg.Topic).
		Str("client_id", cfg.ClientID).
		Msg("MQTT publisher connected")

	return &MQTT{client: client, topic: cfg.Topic, log: log}, nil
}

func (*MQTT) Name() string {
	return "mqtt"
}

func (m *MQTT) Publish(ctx context.Context, snapshot monitor.Snapshot) error {
	b, err := encode(snapshot)
	if err != nil {
		return err
	}

	if _, err := m.client.Publish(ctx, &paho.Publish{
		QoS:     0,
		Topic:   m.topic,
		Payload: b,
		Properties: &paho.PublishProperties{
			ContentType: contentType,
		},
	}); err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}

	return nil
}

func (m *MQTT) Close() error {
	if err := m.client.Disconnect(&paho.Disconnect{ReasonCode: 0}); err != nil {
		return errors.New().Wrap(ErrClose, err)
	}

	return nil
}

// brokerAddress strips an optional URL scheme from the broker setting
func brokerAddress(broker string) string {
	if !strings.Contains(broker, "://") {
		return broker
	}

	u, err := url.Parse(broker)
	if err != nil || u.Host == "" {
		return broker
	}

	return u.Host
}
