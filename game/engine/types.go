package engine

import (
	"fmt"
	"strings"
)

const (
	// Grid bounds, inclusive on both ends.
	GridMin  = 0
	GridMax  = 5
	GridSize = GridMax - GridMin + 1

	WebSocketBufferSize = 256
)

// Orientation is the facing direction of the unit
type Orientation int

const (
	North Orientation = iota
	East
	South
	West
)

// Orientations lists every orientation in rotation order
var Orientations = [...]Orientation{North, East, South, West}

var orientationNames = [...]string{"NORTH", "EAST", "SOUTH", "WEST"}

// String returns the upper-case symbol, e.g. "NORTH"
func (o Orientation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// Valid reports whether o is one of the four orientations
func (o Orientation) Valid() bool {
	return o >= North && o <= West
}

// MarshalText encodes the orientation as its symbol
func (o Orientation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid orientation %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes a symbol produced by MarshalText
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrientation parses an exact orientation symbol
func ParseOrientation(s string) (Orientation, error) {
	for i, name := range orientationNames {
		if name == s {
			return Orientation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// Direction is a rotation direction
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// String returns "LEFT" or "RIGHT"
func (d Direction) String() string {
	switch d {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses LEFT or RIGHT, ignoring case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether both coordinates are inside the grid
func (p Position) InBounds() bool {
	return p.X >= GridMin && p.X <= GridMax && p.Y >= GridMin && p.Y <= GridMax
}

// UnitState is the position and orientation of a placed unit
type UnitState struct {
	Position    Position    `json:"position"`
	Orientation Orientation `json:"face"`
}

// Valid reports whether the state satisfies the board invariant
func (s UnitState) Valid() bool {
	return s.Position.InBounds() && s.Orientation.Valid()
}

// Placement is either a placed unit or nothing. The zero value is Unplaced.
type Placement struct {
	state  UnitState
	placed bool
}

// Placed wraps a unit state
func Placed(state UnitState) Placement {
	return Placement{state: state, placed: true}
}

// Unplaced returns the empty placement
func Unplaced() Placement {
	return Placement{}
}

// State returns the unit state and whether a unit is placed
func (p Placement) State() (UnitState, bool) {
	return p.state, p.placed
}

// IsPlaced reports whether a unit is on the board
func (p Placement) IsPlaced() bool {
	return p.placed
}

// String renders the placement for logs
func (p Placement) String() string {
	if !p.placed {
		return "unplaced"
	}
	return fmt.Sprintf("(%d, %d) %s", p.state.Position.X, p.state.Position.Y, p.state.Orientation)
}
