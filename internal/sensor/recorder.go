package sensor

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"codeberg.org/mutker/pulsemon/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultDirPerm       = 0o755
	defaultBatchSize     = 250
	defaultFlushInterval = time.Second
)

// Recorder passes samples through from another Source and appends each one
// to a capture file that Replay can play back. Writes are batched; a failed
// write is logged and never fails the read.
type Recorder struct {
	src           Source
	db            *sql.DB
	log           logger.Logger
	path          string
	batchSize     int
	mu            sync.Mutex
	buffer        []int
	recorded      int
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
	closeOnce     sync.Once
}

// NewRecorder opens or creates the capture file at path. An existing file
// must carry the current schema version; new samples are appended to it.
func NewRecorder(src Source, path string, log logger.Logger) (*Recorder, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.WithMessage(ErrInvalidConfig, "capture path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrCaptureInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  path,
			Error: err.Error(),
		})
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.WithData(ErrCaptureInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := prepareCapture(db, path, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().
		Str("path", path).
		Int("schema_version", SchemaVersion).
		Int("batch_size", defaultBatchSize).
		Msg("Capture recording started")

	r := &Recorder{
		src:           src,
		db:            db,
		log:           log,
		path:          path,
		batchSize:     defaultBatchSize,
		buffer:        make([]int, 0, defaultBatchSize),
		flushTicker:   time.NewTicker(defaultFlushInterval),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go r.flusher()

	return r, nil
}

func prepareCapture(db *sql.DB, path string, log logger.Logger) error {
	errFactory := errors.New()

	version, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}

	switch version {
	case 0:
		return InitSchema(db, log)
	case SchemaVersion:
		return nil
	default:
		return errFactory.WithData(ErrSchemaVersionMismatch, struct {
			Path     string
			Version  int
			Expected int
		}{
			Path:     path,
			Version:  version,
			Expected: SchemaVersion,
		})
	}
}

func (r *Recorder) Read(ctx context.Context) (int, error) {
	v, err := r.src.Read(ctx)
	if err != nil {
		return v, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, v)
	if len(r.buffer) >= r.batchSize {
		if err := r.flush(); err != nil {
			r.log.Warn().Err(err).Msg("Capture write failed")
		}
	}

	return v, nil
}

// Recorded returns the number of samples written to the capture file so far
func (r *Recorder) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded
}

// Close flushes pending samples, closes the capture file and then the
// wrapped source.
func (r *Recorder) Close() error {
	var closeErr error

	r.closeOnce.Do(func() {
		close(r.shutdownChan)
		r.flushTicker.Stop()
		<-r.flushDoneChan

		if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			closeErr = errors.New().WithData(ErrCaptureClose, struct {
				Phase string
				Error string
			}{
				Phase: "checkpoint_wal",
				Error: err.Error(),
			})
		}

		if err := r.db.Close(); err != nil && closeErr == nil {
			closeErr = errors.New().WithData(ErrCaptureClose, struct {
				Phase string
				Error string
			}{
				Phase: "close_database",
				Error: err.Error(),
			})
		}

		r.log.Info().Str("path", r.path).Int("samples", r.recorded).Msg("Capture recording stopped")

		if err := r.src.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	})

	return closeErr
}

func (r *Recorder) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.log.Warn().Err(err).Msg("Capture write failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.log.Warn().Err(err).Msg("Capture write failed")
			}
			r.mu.Unlock()
			return
		}
	}
}

// flush must be called with r.mu held. On failure the batch is dropped so a
// broken file cannot grow the buffer without bound.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()
	defer func() { r.buffer = r.buffer[:0] }()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				r.log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	stmt, err := tx.Prepare(insertSampleSQL)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, v := range r.buffer {
		if _, err := stmt.Exec(int64(v)); err != nil {
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	committed = true

	r.recorded += len(r.buffer)
	r.log.Debug().Int("samples", len(r.buffer)).Msg("Flushed capture batch")

	return nil
}
