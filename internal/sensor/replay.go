package sensor

import (
	"context"
	"database/sql"
	"sync"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

// Replay plays back a recorded capture file in a loop
type Replay struct {
	samples []int
	pos     int
	mu      sync.Mutex
}

// OpenReplay loads every sample of a capture file into memory. The file is
// opened read-only and closed before returning.
func OpenReplay(path string, log logger.Logger) (*Replay, error) {
	errFactory := errors.New()

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errFactory.Wrap(ErrReplayOpen, err)
	}
	defer db.Close()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return nil, errFactory.Wrap(ErrReplayOpen, err)
	}
	if version != SchemaVersion {
		return nil, errFactory.WithData(ErrSchemaVersionMismatch, struct {
			Path     string
			Version  int
			Expected int
		}{
			Path:     path,
			Version:  version,
			Expected: SchemaVersion,
		})
	}

	rows, err := db.Query(selectSamplesSQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrReplayOpen, err)
	}
	defer rows.Close()

	var samples []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, errFactory.Wrap(ErrReplayOpen, err)
		}
		samples = append(samples, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrReplayOpen, err)
	}

	if len(samples) == 0 {
		return nil, errFactory.WithData(ErrReplayEmpty, path)
	}

	log.Debug().
		Str("path", path).
		Int("samples", len(samples)).
		Msg("Capture loaded")

	return &Replay{samples: samples}, nil
}

func (r *Replay) Read(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.samples[r.pos]
	r.pos = (r.pos + 1) % len(r.samples)

	return v, nil
}

// Len returns the number of samples in one pass of the capture
func (r *Replay) Len() int {
	return len(r.samples)
}

func (*Replay) Close() error {
	return nil
}
