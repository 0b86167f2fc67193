// Package store provides the per-location planning state store. The store is
// injected wherever state is needed; there is no process-wide singleton.
// Each location key is independent with read-your-writes consistency.
package store

import (
	"context"
	"errors"

	"mise/internal/domain/location"
)

// ErrNotFound is returned when a location has no stored state.
var ErrNotFound = errors.New("location state not found")

// Store reads and writes a location's full planning state by location id.
type Store interface {
	Get(ctx context.Context, locationID string) (*location.State, error)
	Set(ctx context.Context, locationID string, state location.State) error
}
