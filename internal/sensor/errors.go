package sensor

import "codeberg.org/mutker/pulsemon/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrUnknownSource = errors.ErrInvalidSource

	// Bus Errors
	ErrBusOpen      = errors.ErrorCode("sensor_bus_open_failed")
	ErrBusAddress   = errors.ErrorCode("sensor_bus_address_failed")
	ErrBusWrite     = errors.ErrorCode("sensor_bus_write_failed")
	ErrBusRead      = errors.ErrorCode("sensor_bus_read_failed")
	ErrShortRead    = errors.ErrorCode("sensor_short_read")
	ErrBusClose     = errors.ErrorCode("sensor_bus_close_failed")
	ErrUnsupported  = errors.ErrorCode("sensor_unsupported_platform")
	ErrSourceClosed = errors.ErrorCode("sensor_source_closed")

	// Replay Errors
	ErrReplayOpen             = errors.ErrorCode("sensor_replay_open_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("sensor_replay_schema_validation_failed")
	ErrSchemaVersionMismatch  = errors.ErrorCode("sensor_replay_schema_version_mismatch")
	ErrReplayEmpty            = errors.ErrorCode("sensor_replay_empty")

	// Capture Errors
	ErrCaptureInit       = errors.ErrInitFailed
	ErrCaptureClose      = errors.ErrShutdownFailed
	ErrTransactionFailed = errors.ErrorCode("sensor_capture_transaction_failed")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
