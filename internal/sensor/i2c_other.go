//go:build !linux

package sensor

import "codeberg.org/mutker/pulsemon/internal/errors"

func openI2C(bus string, _ int) (i2cDevice, error) {
	return nil, errors.New().WithData(ErrUnsupported, bus)
}
