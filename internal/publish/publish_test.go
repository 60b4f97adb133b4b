package publish_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"codeberg.org/mutker/pulsemon/internal/publish"
	"codeberg.org/mutker/pulsemon/internal/pulse"
	"github.com/eclipse/paho.golang/paho"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// startBroker spins up an in-process MQTT broker
func startBroker(t *testing.T) string {
	t.Helper()
	addr := freeAddress(t)

	broker := mochi.New(nil)
	require.NoError(t, broker.AddHook(&auth.AllowHook{}, nil))
	require.NoError(t, broker.AddListener(listeners.NewTCP(listeners.Config{
		ID:      "test",
		Type:    "tcp",
		Address: addr,
	})))
	require.NoError(t, broker.Serve())
	t.Cleanup(func() { _ = broker.Close() })

	return addr
}

func subscribe(ctx context.Context, t *testing.T, addr, topic string) <-chan *paho.Publish {
	t.Helper()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	require.NoError(t, err)

	received := make(chan *paho.Publish, 8)
	client := paho.NewClient(paho.ClientConfig{
		ClientID: "subscriber",
		Conn:     conn,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(pr paho.PublishReceived) (bool, error) {
				received <- pr.Packet
				return true, nil
			},
		},
	})

	_, err = client.Connect(ctx, &paho.Connect{ClientID: "subscriber", KeepAlive: 5, CleanStart: true})
	require.NoError(t, err)
	_, err = client.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 0}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(&paho.Disconnect{}) })

	return received
}

func TestMQTTPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := startBroker(t)
	received := subscribe(ctx, t, addr, "pulsemon/test")

	pub, err := publish.NewMQTT(ctx, publish.MQTTConfig{
		Broker:   "tcp://" + addr,
		Topic:    "pulsemon/test",
		ClientID: "pulsemon-test",
	}, logger.Nop())
	require.NoError(t, err)
	defer pub.Close()
	assert.Equal(t, "mqtt", pub.Name())

	snap := monitor.Snapshot{
		RawValue:  7400,
		BPM:       pulse.Some(72),
		Status:    pulse.StatusNormal,
		Contact:   true,
		Amplitude: 6000,
		Session:   "s1",
	}
	require.NoError(t, pub.Publish(ctx, snap))

	select {
	case p := <-received:
		assert.Equal(t, "pulsemon/test", p.Topic)
		assert.Equal(t, "application/json", p.Properties.ContentType)

		var got map[string]any
		require.NoError(t, json.Unmarshal(p.Payload, &got))
		assert.EqualValues(t, 72, got["bpm"])
		assert.Equal(t, "normal", got["status"])
		assert.Equal(t, true, got["contact"])
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestMQTTConfigValidate(t *testing.T) {
	err := publish.MQTTConfig{ClientID: "x"}.Validate()
	assert.True(t, errors.HasCode(err, publish.ErrInvalidConfig))

	err = publish.MQTTConfig{Broker: "localhost:1883"}.Validate()
	assert.Error(t, err)
}

func TestMQTTConnectRefused(t *testing.T) {
	_, err := publish.NewMQTT(context.Background(), publish.MQTTConfig{
		Broker:   freeAddress(t),
		ClientID: "x",
	}, logger.Nop())
	assert.True(t, errors.HasCode(err, publish.ErrConnect))
}

func TestNATSConfigValidate(t *testing.T) {
	assert.Error(t, publish.NATSConfig{}.Validate())
	assert.NoError(t, publish.NATSConfig{URL: "nats://127.0.0.1:4222"}.Validate())
}

func TestNATSConnectRefused(t *testing.T) {
	_, err := publish.NewNATS(publish.NATSConfig{URL: "nats://" + freeAddress(t)}, logger.Nop())
	assert.True(t, errors.HasCode(err, publish.ErrConnect))
}
