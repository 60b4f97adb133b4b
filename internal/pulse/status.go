package pulse

// Status is the coarse heart-rate category reported to clients
type Status string

const (
	StatusUndetected Status = "undetected"
	StatusLow        Status = "low"
	StatusNormal     Status = "normal"
	StatusHigh       Status = "high"
)

const (
	lowBPM  = 60
	highBPM = 100
)

// Classify maps a BPM, or its absence, to a Status
func Classify(bpm NullBPM) Status {
	switch {
	case !bpm.Valid:
		return StatusUndetected
	case bpm.Value < lowBPM:
		return StatusLow
	case bpm.Value > highBPM:
		return StatusHigh
	default:
		return StatusNormal
	}
}
