package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/pulsemon/internal/logger"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"codeberg.org/mutker/pulsemon/internal/pulse"
	"codeberg.org/mutker/pulsemon/internal/server"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProvider struct {
	snap monitor.Snapshot
}

func (f fixedProvider) Latest() monitor.Snapshot { return f.snap }

var detected = monitor.Snapshot{
	RawValue:  8123,
	BPM:       pulse.Some(58),
	Status:    pulse.StatusLow,
	Contact:   true,
	Amplitude: 11874,
	Peaks:     4,
	Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	Session:   "abc",
}

func get(t *testing.T, h http.Handler, path string) map[string]any {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestReading(t *testing.T) {
	srv := server.New(":0", fixedProvider{detected}, nil, logger.Nop())
	body := get(t, srv.Handler(), "/api/v1/reading")

	assert.EqualValues(t, 8123, body["raw_value"])
	assert.EqualValues(t, 58, body["bpm"])
	assert.Equal(t, "low", body["status"])
	assert.Equal(t, true, body["contact"])
	assert.EqualValues(t, 11874, body["amplitude"])
	assert.EqualValues(t, 4, body["peaks"])
	assert.Equal(t, "abc", body["session"])
}

func TestLegacyReading(t *testing.T) {
	tests := []struct {
		name    string
		snap    monitor.Snapshot
		bpm     any
		status  string
		contact string
	}{
		{
			name:    "low",
			snap:    detected,
			bpm:     float64(58),
			status:  "rendah",
			contact: "Ya",
		},
		{
			name: "high",
			snap: monitor.Snapshot{
				RawValue: 9000, BPM: pulse.Some(120), Status: pulse.StatusHigh, Contact: true, Amplitude: 9000,
			},
			bpm:     float64(120),
			status:  "tinggi",
			contact: "Ya",
		},
		{
			name: "normal",
			snap: monitor.Snapshot{
				RawValue: 9000, BPM: pulse.Some(72), Status: pulse.StatusNormal, Contact: true,
			},
			bpm:     float64(72),
			status:  "normal",
			contact: "Ya",
		},
		{
			name:    "no contact",
			snap:    monitor.Snapshot{RawValue: 50, Status: pulse.StatusUndetected},
			bpm:     "Tidak terdeteksi",
			status:  "tidak terdeteksi",
			contact: "Tidak",
		},
		{
			name: "contact without estimate",
			snap: monitor.Snapshot{
				RawValue: 7000, Status: pulse.StatusUndetected, Contact: true, Amplitude: 4000,
			},
			bpm:     "Tidak terdeteksi",
			status:  "tidak terdeteksi",
			contact: "Ya",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := server.New(":0", fixedProvider{tt.snap}, nil, logger.Nop())
			body := get(t, srv.Handler(), "/get_bpm")

			assert.EqualValues(t, tt.snap.RawValue, body["value"])
			assert.Equal(t, tt.bpm, body["bpm"])
			assert.Equal(t, tt.status, body["status"])
			assert.Equal(t, tt.contact, body["kontak"])
			assert.EqualValues(t, tt.snap.Amplitude, body["amplitude"])
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := server.New(":0", fixedProvider{}, nil, logger.Nop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(b))
}

func TestWebSocketBroadcast(t *testing.T) {
	hub := server.NewHub(logger.Nop())
	srv := server.New(":0", fixedProvider{}, hub, logger.Nop())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "websocket", hub.Name())

	require.NoError(t, hub.Publish(context.Background(), detected))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)

	var got monitor.Snapshot
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, detected.BPM, got.BPM)
	assert.Equal(t, detected.Status, got.Status)
	assert.True(t, got.Timestamp.Equal(detected.Timestamp))
}

func TestWebSocketClientLeaves(t *testing.T) {
	hub := server.NewHub(logger.Nop())
	srv := server.New(":0", fixedProvider{}, hub, logger.Nop())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	hub := server.NewHub(logger.Nop())
	assert.NoError(t, hub.Publish(context.Background(), detected))
}

func TestStartShutdown(t *testing.T) {
	hub := server.NewHub(logger.Nop())
	srv := server.New("127.0.0.1:0", fixedProvider{detected}, hub, logger.Nop())
	require.NoError(t, srv.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestStartBindError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv := server.New(l.Addr().String(), fixedProvider{}, nil, logger.Nop())
	assert.Error(t, srv.Start())
}
