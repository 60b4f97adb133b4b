// Package sensor provides the raw sample sources polled by the monitor:
// an ADS1115 ADC on a Linux I2C bus, a synthetic pulse generator and a
// replay of a recorded capture file.
package sensor

import "context"

// Source yields one unsigned raw sample per Read. A missing or misread
// sensor shows up as an out-of-range value, not as an error; errors are
// reserved for transport failures.
type Source interface {
	Read(ctx context.Context) (int, error)
	Close() error
}

// Kind names a Source implementation in configuration
type Kind string

const (
	KindADS1115   Kind = "ads1115"
	KindSimulator Kind = "simulator"
	KindReplay    Kind = "replay"
)

// IsValid returns whether the kind names a known source
func (k Kind) IsValid() bool {
	switch k {
	case KindADS1115, KindSimulator, KindReplay:
		return true
	default:
		return false
	}
}
