package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/toy-robot/game/engine"
)

var (
	ErrNoUnit        = errors.New("no unit placed")
	ErrUnknownDriver = errors.New("unknown store driver")
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store defines the interface for holding the single unit record
type Store interface {
	// Place replaces any existing record
	Place(ctx context.Context, state engine.UnitState) error

	// Get returns the current record, or Unplaced when there is none
	Get(ctx context.Context) (engine.Placement, error)

	// SetPosition overwrites the stored position only
	SetPosition(ctx context.Context, pos engine.Position) error

	// SetOrientation overwrites the stored orientation only
	SetOrientation(ctx context.Context, o engine.Orientation) error

	// Remove deletes the record if present
	Remove(ctx context.Context) error

	// Close releases any underlying resources
	Close() error
}

// Open creates a store for the named driver. dsn is only used by sqlite.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		st, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
