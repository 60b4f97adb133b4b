package server

import (
	"codeberg.org/mutker/pulsemon/internal/monitor"
	"codeberg.org/mutker/pulsemon/internal/pulse"
)

// Labels served by the /get_bpm endpoint older dashboards poll
const (
	legacyBPMUndetected = "Tidak terdeteksi"
	legacyContactYes    = "Ya"
	legacyContactNo     = "Tidak"
)

var legacyStatus = map[pulse.Status]string{
	pulse.StatusUndetected: "tidak terdeteksi",
	pulse.StatusLow:        "rendah",
	pulse.StatusNormal:     "normal",
	pulse.StatusHigh:       "tinggi",
}

// legacyReading keeps the field names and labels existing dashboards poll
type legacyReading struct {
	Value     int    `json:"value"`
	BPM       any    `json:"bpm"`
	Status    string `json:"status"`
	Kontak    string `json:"kontak"`
	Amplitude int    `json:"amplitude"`
}

func newLegacyReading(s monitor.Snapshot) legacyReading {
	r := legacyReading{
		Value:     s.RawValue,
		BPM:       legacyBPMUndetected,
		Status:    legacyStatus[pulse.StatusUndetected],
		Kontak:    legacyContactNo,
		Amplitude: s.Amplitude,
	}

	if s.BPM.Valid {
		r.BPM = s.BPM.Value
	}
	if label, ok := legacyStatus[s.Status]; ok {
		r.Status = label
	}
	if s.Contact {
		r.Kontak = legacyContactYes
	}

	return r
}
