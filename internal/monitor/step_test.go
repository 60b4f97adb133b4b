package monitor_test

import (
	"testing"

	"codeberg.org/mutker/pulsemon/internal/buffer"
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"codeberg.org/mutker/pulsemon/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = pulse.DefaultParams(50)

func squareWave(n, period, high, low int) []int {
	out := make([]int, n)
	for i := range out {
		if i%period < period/2 {
			out[i] = high
		} else {
			out[i] = low
		}
	}

	return out
}

func repeat(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func feed(buf *buffer.Rolling, state monitor.State, samples []int) (monitor.State, monitor.Snapshot) {
	var snap monitor.Snapshot
	for _, v := range samples {
		state, snap = monitor.Step(buf, state, v, params)
	}

	return state, snap
}

func TestStepPulsatileWindow(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	state, snap := feed(buf, monitor.State{}, squareWave(200, 50, 8000, 500))

	require.True(t, snap.BPM.Valid)
	assert.InDelta(t, 60, snap.BPM.Value, 2)
	assert.Equal(t, pulse.StatusNormal, snap.Status)
	assert.True(t, snap.Contact)
	assert.Equal(t, 12000, snap.Amplitude)
	assert.Equal(t, snap.BPM, state.LastValidBPM)
	assert.Equal(t, 200, buf.Len())
}

func TestStepFlatWindow(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	state, snap := feed(buf, monitor.State{}, repeat(200, 5000))

	assert.False(t, snap.BPM.Valid)
	assert.Equal(t, pulse.StatusUndetected, snap.Status)
	assert.False(t, snap.Contact)
	assert.Zero(t, snap.Amplitude)
	assert.False(t, state.LastValidBPM.Valid)
}

func TestStepOutOfRangeResets(t *testing.T) {
	for _, raw := range []int{0, 50, 99, 20001, 65535} {
		buf := buffer.NewRolling(params.WindowSize())
		state, snap := feed(buf, monitor.State{}, squareWave(200, 50, 8000, 500))
		require.True(t, snap.BPM.Valid)

		state, snap = monitor.Step(buf, state, raw, params)

		assert.Zero(t, buf.Len(), "raw %d", raw)
		assert.False(t, state.LastValidBPM.Valid)
		assert.Equal(t, monitor.Snapshot{RawValue: raw, Status: pulse.StatusUndetected}, snap)
	}
}

func TestStepSinglePeakKeepsLastGood(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	window := append(repeat(100, 500), repeat(99, 8000)...)
	for _, v := range window {
		buf.Append(v)
	}

	state, snap := monitor.Step(buf, monitor.State{LastValidBPM: pulse.Some(72)}, 8000, params)

	assert.True(t, snap.Contact)
	assert.Equal(t, 1, snap.Peaks)
	assert.Equal(t, pulse.Some(72), snap.BPM)
	assert.Equal(t, pulse.StatusNormal, snap.Status)
	assert.Equal(t, pulse.Some(72), state.LastValidBPM)
}

func TestStepSinglePeakWithoutHistory(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	_, snap := feed(buf, monitor.State{}, append(repeat(100, 500), repeat(100, 8000)...))

	assert.True(t, snap.Contact)
	assert.Equal(t, 1, snap.Peaks)
	assert.False(t, snap.BPM.Valid)
	assert.Equal(t, pulse.StatusUndetected, snap.Status)
}

func TestStepInvalidWindowClearsLastGood(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	for _, v := range repeat(199, 5000) {
		buf.Append(v)
	}

	state, snap := monitor.Step(buf, monitor.State{LastValidBPM: pulse.Some(72)}, 5000, params)

	assert.False(t, snap.Contact)
	assert.False(t, snap.BPM.Valid)
	assert.Equal(t, pulse.StatusUndetected, snap.Status)
	assert.False(t, state.LastValidBPM.Valid)
}

func TestStepInvalidReportsRawAmplitude(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	_, snap := feed(buf, monitor.State{}, []int{300, 400, 19500})

	assert.False(t, snap.Contact)
	assert.Equal(t, 19200, snap.Amplitude)
}

func TestStepWindowNeverExceedsCapacity(t *testing.T) {
	buf := buffer.NewRolling(params.WindowSize())
	feed(buf, monitor.State{}, squareWave(1000, 42, 9000, 1500))

	assert.Equal(t, params.WindowSize(), buf.Len())
}
