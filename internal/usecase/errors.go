package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrNoDataTable means a fetch succeeded at the transport level but the
	// expected schedule table was absent. Treated as fatal for the unit, not
	// as an empty result.
	ErrNoDataTable = errors.New("no data table found")

	// ErrStoreCorrupt means the persisted store could not be decoded against
	// the declared schema. The run aborts without committing a partial write.
	ErrStoreCorrupt = errors.New("persisted store is corrupt")
)
