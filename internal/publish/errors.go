package publish

import "codeberg.org/mutker/pulsemon/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrConnect       = errors.ErrorCode("publish_connect_failed")
	ErrEncode        = errors.ErrorCode("publish_encode_failed")
	ErrPublish       = errors.ErrorCode("publish_failed")
	ErrClose         = errors.ErrClosePublish
)
