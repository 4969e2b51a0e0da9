// Package store persists attempt snapshots so an in-progress mock test can
// be resumed after a process or page restart. Keys are scoped per
// (user, test); concurrent writers to the same key are last-write-wins.
package store

import (
	"context"
	"errors"

	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// ErrNotFound is returned by Load when no snapshot exists for the key.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is the durable store contract: save on every mutation while
// an attempt is active, load on recovery, clear on submit or reset.
type SnapshotStore interface {
	Save(ctx context.Context, key string, snap *model.Snapshot) error
	Load(ctx context.Context, key string) (*model.Snapshot, error)
	Clear(ctx context.Context, key string) error
}
