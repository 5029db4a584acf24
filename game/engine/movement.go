package engine

type axis int

const (
	axisX axis = iota
	axisY
)

// step is the single-axis, single-unit delta of a forward move
type step struct {
	axis  axis
	delta int
}

// forward maps each orientation to the delta a forward move applies.
// Keep this table as the only source of movement rules.
var forward = map[Orientation]step{
	North: {axis: axisY, delta: 1},
	South: {axis: axisY, delta: -1},
	East:  {axis: axisX, delta: 1},
	West:  {axis: axisX, delta: -1},
}

// Rotate returns the orientation after a 90 degree turn
func (o Orientation) Rotate(d Direction) Orientation {
	n := len(Orientations)
	return Orientations[((int(o)+int(d))%n+n)%n]
}

// Ahead returns the position one unit forward of s, which may be out of bounds
func (s UnitState) Ahead() Position {
	next := s.Position
	st, ok := forward[s.Orientation]
	if !ok {
		return next
	}
	switch st.axis {
	case axisX:
		next.X += st.delta
	case axisY:
		next.Y += st.delta
	}
	return next
}

// CanMoveForward reports whether a forward move stays on the grid
func (s UnitState) CanMoveForward() bool {
	return s.Ahead().InBounds()
}
