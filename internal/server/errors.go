package server

import "codeberg.org/mutker/pulsemon/internal/errors"

const (
	ErrEncode = errors.ErrorCode("server_encode_failed")
	ErrListen = errors.ErrStartServer
	ErrStop   = errors.ErrStopServer
)
