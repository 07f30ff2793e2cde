// Package metadata stores small local key/value settings, such as the active
// family code, in the client's SQLite database. Values never leave the device.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value for key or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
