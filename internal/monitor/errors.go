package monitor

import "codeberg.org/mutker/pulsemon/internal/errors"

const (
	ErrInvalidSamplingRate = errors.ErrInvalidSamplingRate
	ErrNilSource           = errors.ErrorCode("monitor_nil_source")
	ErrSourceRead          = errors.ErrorCode("monitor_source_read_failed")
	ErrPublish             = errors.ErrorCode("monitor_publish_failed")
)
