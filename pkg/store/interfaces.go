package store

import (
	"context"
)

// StateStore handles persistent application state.
// A missing key is reported as ("", false), never as an error.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
