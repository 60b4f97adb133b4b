package monitor

import (
	"math"
	"time"

	"codeberg.org/mutker/pulsemon/internal/buffer"
	"codeberg.org/mutker/pulsemon/internal/pulse"
)

// State is carried from one tick to the next
type State struct {
	// LastValidBPM is the last accepted estimate. Any invalid window or
	// out-of-range sample clears it.
	LastValidBPM pulse.NullBPM
}

// Snapshot is what clients see after each tick
type Snapshot struct {
	RawValue  int           `json:"raw_value"`
	BPM       pulse.NullBPM `json:"bpm"`
	Status    pulse.Status  `json:"status"`
	Contact   bool          `json:"contact"`
	Amplitude int           `json:"amplitude"`
	Peaks     int           `json:"peaks"`
	Timestamp time.Time     `json:"timestamp"`
	Session   string        `json:"session,omitempty"`
}

// Step processes one raw sample against the window and the previous state.
// It mutates buf and returns the next state with the resulting snapshot.
func Step(buf *buffer.Rolling, state State, raw int, p pulse.Params) (State, Snapshot) {
	if !p.InRawRange(raw) {
		buf.Clear()
		return State{}, Snapshot{
			RawValue: raw,
			Status:   pulse.StatusUndetected,
		}
	}

	buf.Append(raw)
	window := buf.Values()

	var (
		amplitude float64
		peaks     int
	)

	contact := pulse.Valid(window, p)
	if contact {
		est := pulse.EstimateBPM(window, p)
		if est.BPM.Valid {
			state.LastValidBPM = est.BPM
		}
		amplitude = est.Amplitude
		peaks = est.Peaks
	} else {
		state.LastValidBPM = pulse.NullBPM{}
		amplitude = pulse.Summarize(window).PeakToPeak
	}

	return state, Snapshot{
		RawValue:  raw,
		BPM:       state.LastValidBPM,
		Status:    pulse.Classify(state.LastValidBPM),
		Contact:   contact,
		Amplitude: int(math.RoundToEven(amplitude)),
		Peaks:     peaks,
	}
}
