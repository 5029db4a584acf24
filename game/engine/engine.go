package engine

import (
	"errors"
	"fmt"
)

// ErrNotPlaced is returned by commands that need a unit on the board
var ErrNotPlaced = errors.New("toy model not placed")

// NotPlacedMessage is the user-facing text for ErrNotPlaced
const NotPlacedMessage = "Toy model not placed yet."

// Action names a command
type Action string

const (
	ActionPlace  Action = "place"
	ActionRotate Action = "rotate"
	ActionMove   Action = "move"
	ActionReport Action = "report"
	ActionRemove Action = "remove"
)

// Outcome is the observable result of a successful command
type Outcome string

const (
	OutcomePlaced       Outcome = "placed"
	OutcomeRotatedLeft  Outcome = "rotated_left"
	OutcomeRotatedRight Outcome = "rotated_right"
	OutcomeMoved        Outcome = "moved"
	OutcomeBlocked      Outcome = "blocked"
	OutcomeReported     Outcome = "reported"
	OutcomeRemoved      Outcome = "removed"
)

// Command is a single instruction for Apply
type Command struct {
	Action    Action
	State     UnitState // place only
	Direction Direction // rotate only
}

// Transition describes the effect of one command
type Transition struct {
	Action  Action
	Outcome Outcome
	Before  Placement
	After   Placement
}

// Changed reports whether the command mutated the placement
func (t Transition) Changed() bool {
	return t.Before != t.After
}

// Message returns the human-readable status line for the transition
func (t Transition) Message() string {
	switch t.Outcome {
	case OutcomePlaced:
		return "Toy model placed."
	case OutcomeRotatedLeft:
		return "Toy model rotated 90deg to the left."
	case OutcomeRotatedRight:
		return "Toy model rotated 90deg to the right."
	case OutcomeMoved:
		return "Toy model moved one unit forward."
	case OutcomeBlocked:
		return "Toy model did not move."
	case OutcomeReported:
		return "Toy model " + FormatReport(t.After) + "."
	case OutcomeRemoved:
		return "Toy model instance removed."
	default:
		return string(t.Outcome)
	}
}

// FormatReport renders a placement as "placed at (x, y) facing ORIENTATION"
func FormatReport(p Placement) string {
	s, ok := p.State()
	if !ok {
		return "not placed"
	}
	return fmt.Sprintf("placed at (%d, %d) facing %s", s.Position.X, s.Position.Y, s.Orientation)
}

// Place puts the unit on the board, replacing any previous placement
func Place(state UnitState) Transition {
	return Transition{
		Action:  ActionPlace,
		Outcome: OutcomePlaced,
		After:   Placed(state),
	}
}

// PlaceOver is Place with the previous placement recorded in Before
func PlaceOver(cur Placement, state UnitState) Transition {
	t := Place(state)
	t.Before = cur
	return t
}

// Rotate turns a placed unit 90 degrees
func Rotate(cur Placement, d Direction) (Transition, error) {
	s, ok := cur.State()
	if !ok {
		return Transition{}, ErrNotPlaced
	}
	if d != Left && d != Right {
		return Transition{}, fmt.Errorf("rotate: %v", d)
	}

	outcome := OutcomeRotatedRight
	if d == Left {
		outcome = OutcomeRotatedLeft
	}
	s.Orientation = s.Orientation.Rotate(d)

	return Transition{
		Action:  ActionRotate,
		Outcome: outcome,
		Before:  cur,
		After:   Placed(s),
	}, nil
}

// MoveForward advances a placed unit one cell, unless that would leave the grid
func MoveForward(cur Placement) (Transition, error) {
	s, ok := cur.State()
	if !ok {
		return Transition{}, ErrNotPlaced
	}

	t := Transition{Action: ActionMove, Before: cur}
	next := s.Ahead()
	if !next.InBounds() {
		t.Outcome = OutcomeBlocked
		t.After = cur
		return t, nil
	}

	s.Position = next
	t.Outcome = OutcomeMoved
	t.After = Placed(s)
	return t, nil
}

// Report returns the current placement without changing it
func Report(cur Placement) (Transition, error) {
	if !cur.IsPlaced() {
		return Transition{}, ErrNotPlaced
	}
	return Transition{
		Action:  ActionReport,
		Outcome: OutcomeReported,
		Before:  cur,
		After:   cur,
	}, nil
}

// Remove takes the unit off the board. Removing nothing is not an error.
func Remove(cur Placement) Transition {
	return Transition{
		Action:  ActionRemove,
		Outcome: OutcomeRemoved,
		Before:  cur,
		After:   Unplaced(),
	}
}

// Apply dispatches cmd against the current placement
func Apply(cur Placement, cmd Command) (Transition, error) {
	switch cmd.Action {
	case ActionPlace:
		if !cmd.State.Valid() {
			return Transition{}, fmt.Errorf("place: invalid state %+v", cmd.State)
		}
		return PlaceOver(cur, cmd.State), nil
	case ActionRotate:
		return Rotate(cur, cmd.Direction)
	case ActionMove:
		return MoveForward(cur)
	case ActionReport:
		return Report(cur)
	case ActionRemove:
		return Remove(cur), nil
	default:
		return Transition{}, fmt.Errorf("unknown action %q", cmd.Action)
	}
}
