// Package publish forwards monitor snapshots to message brokers.
package publish

import (
	"encoding/json"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/monitor"
)

const contentType = "application/json"

func encode(snapshot monitor.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.New().Wrap(ErrEncode, err)
	}

	return b, nil
}
