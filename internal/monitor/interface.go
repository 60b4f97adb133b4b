package monitor

import "context"

// Source yields one raw sample per call
type Source interface {
	Read(ctx context.Context) (int, error)
}

// Publisher receives snapshots from the sampling loop
type Publisher interface {
	Name() string
	Publish(ctx context.Context, snapshot Snapshot) error
}
