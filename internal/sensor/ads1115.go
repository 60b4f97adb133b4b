package sensor

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
)

// ADS1115 register pointers and single-shot configuration
const (
	ads1115PointerConversion = 0x00
	ads1115PointerConfig     = 0x01

	ads1115ConfigOSSingle  = 0x8000
	ads1115ConfigMUXAIN0   = 0x4000
	ads1115ConfigPGA4V096  = 0x0200
	ads1115ConfigModeShot  = 0x0100
	ads1115ConfigDR128SPS  = 0x0080
	ads1115ConfigCompTrad  = 0x0000
	ads1115ConfigCQueNone  = 0x0003
	ads1115ConversionDelay = 8 * time.Millisecond
)

const ads1115Config = ads1115ConfigOSSingle |
	ads1115ConfigMUXAIN0 |
	ads1115ConfigPGA4V096 |
	ads1115ConfigModeShot |
	ads1115ConfigDR128SPS |
	ads1115ConfigCompTrad |
	ads1115ConfigCQueNone

// i2cDevice is a bus handle already bound to a slave address
type i2cDevice interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}

// ADS1115 reads channel AIN0 of a TI ADS1115 in single-shot mode
type ADS1115 struct {
	dev    i2cDevice
	delay  time.Duration
	closed bool
	mu     sync.Mutex
}

func newADS1115(dev i2cDevice) *ADS1115 {
	return &ADS1115{dev: dev, delay: ads1115ConversionDelay}
}

// OpenADS1115 opens the I2C bus device and binds it to address
func OpenADS1115(bus string, address int) (*ADS1115, error) {
	dev, err := openI2C(bus, address)
	if err != nil {
		return nil, err
	}

	return newADS1115(dev), nil
}

// Read triggers a conversion and returns the raw 16-bit result as an
// unsigned value. Negative differential readings therefore land above the
// plausible range.
func (a *ADS1115) Read(ctx context.Context) (int, error) {
	errFactory := errors.New()
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, errFactory.New(ErrSourceClosed)
	}

	cfg := []byte{ads1115PointerConfig, byte(ads1115Config >> 8), byte(ads1115Config & 0xff)}
	if _, err := a.dev.Write(cfg); err != nil {
		return 0, errFactory.Wrap(ErrBusWrite, err)
	}

	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	case <-timer.C:
	}

	if _, err := a.dev.Write([]byte{ads1115PointerConversion}); err != nil {
		return 0, errFactory.Wrap(ErrBusWrite, err)
	}

	buf := make([]byte, 2)
	n, err := a.dev.Read(buf)
	if err != nil {
		return 0, errFactory.Wrap(ErrBusRead, err)
	}
	if n != len(buf) {
		return 0, errFactory.WithData(ErrShortRead, n)
	}

	return int(buf[0])<<8 | int(buf[1]), nil
}

func (a *ADS1115) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if err := a.dev.Close(); err != nil {
		return errors.New().Wrap(ErrBusClose, err)
	}

	return nil
}
