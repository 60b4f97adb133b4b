//go:build linux

package sensor

import (
	"codeberg.org/mutker/pulsemon/internal/errors"
	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl request from linux/i2c-dev.h
const i2cSlave = 0x0703

type linuxI2C struct {
	fd int
}

func openI2C(bus string, address int) (i2cDevice, error) {
	errFactory := errors.New()

	fd, err := unix.Open(bus, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errFactory.WithData(ErrBusOpen, struct {
			Bus   string
			Error string
		}{
			Bus:   bus,
			Error: err.Error(),
		})
	}

	if err := unix.IoctlSetInt(fd, i2cSlave, address); err != nil {
		_ = unix.Close(fd)
		return nil, errFactory.WithData(ErrBusAddress, struct {
			Bus     string
			Address int
			Error   string
		}{
			Bus:     bus,
			Address: address,
			Error:   err.Error(),
		})
	}

	return &linuxI2C{fd: fd}, nil
}

func (d *linuxI2C) Write(p []byte) (int, error) {
	return unix.Write(d.fd, p)
}

func (d *linuxI2C) Read(p []byte) (int, error) {
	return unix.Read(d.fd, p)
}

func (d *linuxI2C) Close() error {
	return unix.Close(d.fd)
}
