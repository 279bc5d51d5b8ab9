// Package record implements the record store: each repository keeps
// its full collection in memory and rewrites a whole snapshot to a
// pluggable backend after every mutation. The in-memory copy is the
// source of truth while the process runs; backends only see complete
// snapshots.
package record

import "context"

// Backend persists an opaque snapshot of a collection.
type Backend interface {
	// Load returns the last saved snapshot, or (nil, nil) when no
	// snapshot exists yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the snapshot wholesale.
	Save(ctx context.Context, data []byte) error
}
