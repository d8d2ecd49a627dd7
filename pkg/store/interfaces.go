package store

import "context"

// StateStore handles persistent application state.
type StateStore interface {
	// GetState returns the stored value for key. The second return is
	// false when no record exists or the read fails.
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// TerrainStore persists land/ocean answers per H3 cell.
type TerrainStore interface {
	GetTerrainCell(cell string) (isLand bool, ok bool, err error)
	PutTerrainCell(cell string, isLand bool) error
}

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	StateStore
	TerrainStore

	// Close closes the store connection.
	Close() error
}
