package service

import (
	"context"

	"github.com/wricardo/toy-robot/game/engine"
)

// UnitService defines all operations on the board's single unit
type UnitService interface {
	// Commands
	Place(ctx context.Context, cmd PlaceCommand) (*CommandResult, error)
	Rotate(ctx context.Context, dir engine.Direction) (*CommandResult, error)
	Move(ctx context.Context) (*CommandResult, error)
	Report(ctx context.Context) (*CommandResult, error)
	Remove(ctx context.Context) (*CommandResult, error)

	// State returns the current placement without the placed precondition
	State(ctx context.Context) (*StateInfo, error)
}

// StateStore is the storage the service reads and writes
type StateStore interface {
	Place(ctx context.Context, state engine.UnitState) error
	Get(ctx context.Context) (engine.Placement, error)
	SetPosition(ctx context.Context, pos engine.Position) error
	SetOrientation(ctx context.Context, o engine.Orientation) error
	Remove(ctx context.Context) error
}

// Observer is told about every committed change to the placement
type Observer interface {
	StateChanged(info *StateInfo)
}
