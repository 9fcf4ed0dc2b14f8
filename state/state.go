// Package state holds the host's persistent data: per-program key/value
// storage and the published program binaries.
package state

import (
	"context"

	"github.com/wippyai/wasm-programs/handle"
)

// Backend is host-side storage. Keys are scoped by owner; two programs never
// see each other's keys. Get returns an errors.KindNotFound error for a
// missing key, and Program does the same for an unknown handle.
type Backend interface {
	Get(ctx context.Context, owner handle.Handle, key []byte) ([]byte, error)
	Put(ctx context.Context, owner handle.Handle, key, value []byte) error

	// PutProgram stores a program binary and assigns it the next handle.
	// Handles start at 1.
	PutProgram(ctx context.Context, wasm []byte) (handle.Handle, error)
	Program(ctx context.Context, id handle.Handle) ([]byte, error)
	Programs(ctx context.Context) ([]handle.Handle, error)

	Close() error
}
