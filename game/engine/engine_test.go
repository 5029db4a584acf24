package engine

import (
	"errors"
	"testing"
)

func placedAt(x, y int, o Orientation) Placement {
	return Placed(UnitState{Position: Position{X: x, Y: y}, Orientation: o})
}

func mustState(t *testing.T, p Placement) UnitState {
	t.Helper()
	s, ok := p.State()
	if !ok {
		t.Fatal("Expected unit to be placed")
	}
	return s
}

func TestPlace(t *testing.T) {
	state := UnitState{Position: Position{X: 0, Y: 3}, Orientation: South}
	tr := Place(state)

	if tr.Outcome != OutcomePlaced {
		t.Errorf("Expected outcome %s, got %s", OutcomePlaced, tr.Outcome)
	}
	if got := mustState(t, tr.After); got != state {
		t.Errorf("Expected %+v, got %+v", state, got)
	}
	if tr.Message() != "Toy model placed." {
		t.Errorf("Unexpected message %q", tr.Message())
	}
}

func TestPlace_ReplacesPreviousPlacement(t *testing.T) {
	first := placedAt(1, 1, North)
	tr := PlaceOver(first, UnitState{Position: Position{X: 4, Y: 2}, Orientation: West})

	got := mustState(t, tr.After)
	if got.Position != (Position{X: 4, Y: 2}) || got.Orientation != West {
		t.Errorf("Second placement not applied verbatim: %+v", got)
	}
	if tr.Before != first {
		t.Errorf("Expected Before to record first placement")
	}
}

func TestMoveForward(t *testing.T) {
	tests := []struct {
		name            string
		start           Placement
		expectedOutcome Outcome
		expectedPos     Position
		expectedMessage string
	}{
		{
			name:            "south from center decrements y",
			start:           placedAt(3, 3, South),
			expectedOutcome: OutcomeMoved,
			expectedPos:     Position{X: 3, Y: 2},
			expectedMessage: "Toy model moved one unit forward.",
		},
		{
			name:            "north from center increments y",
			start:           placedAt(3, 3, North),
			expectedOutcome: OutcomeMoved,
			expectedPos:     Position{X: 3, Y: 4},
			expectedMessage: "Toy model moved one unit forward.",
		},
		{
			name:            "east from center increments x",
			start:           placedAt(3, 3, East),
			expectedOutcome: OutcomeMoved,
			expectedPos:     Position{X: 4, Y: 3},
			expectedMessage: "Toy model moved one unit forward.",
		},
		{
			name:            "west from center decrements x",
			start:           placedAt(3, 3, West),
			expectedOutcome: OutcomeMoved,
			expectedPos:     Position{X: 2, Y: 3},
			expectedMessage: "Toy model moved one unit forward.",
		},
		{
			name:            "south at origin is blocked",
			start:           placedAt(0, 0, South),
			expectedOutcome: OutcomeBlocked,
			expectedPos:     Position{X: 0, Y: 0},
			expectedMessage: "Toy model did not move.",
		},
		{
			name:            "east at right edge is blocked",
			start:           placedAt(5, 4, East),
			expectedOutcome: OutcomeBlocked,
			expectedPos:     Position{X: 5, Y: 4},
			expectedMessage: "Toy model did not move.",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr, err := MoveForward(test.start)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tr.Outcome != test.expectedOutcome {
				t.Errorf("Expected outcome %s, got %s", test.expectedOutcome, tr.Outcome)
			}
			got := mustState(t, tr.After)
			if got.Position != test.expectedPos {
				t.Errorf("Expected position %+v, got %+v", test.expectedPos, got.Position)
			}
			if got.Orientation != mustState(t, test.start).Orientation {
				t.Error("Move changed orientation")
			}
			if tr.Message() != test.expectedMessage {
				t.Errorf("Expected message %q, got %q", test.expectedMessage, tr.Message())
			}
			if tr.Changed() != (test.expectedOutcome == OutcomeMoved) {
				t.Errorf("Changed() = %v for outcome %s", tr.Changed(), tr.Outcome)
			}
		})
	}
}

func TestRotateCommand(t *testing.T) {
	tr, err := Rotate(placedAt(3, 3, South), Left)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tr.Outcome != OutcomeRotatedLeft {
		t.Errorf("Expected %s, got %s", OutcomeRotatedLeft, tr.Outcome)
	}
	if got := mustState(t, tr.After); got.Orientation != East || got.Position != (Position{3, 3}) {
		t.Errorf("Unexpected state after LEFT: %+v", got)
	}
	if tr.Message() != "Toy model rotated 90deg to the left." {
		t.Errorf("Unexpected message %q", tr.Message())
	}

	tr, err = Rotate(placedAt(3, 3, South), Right)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := mustState(t, tr.After); got.Orientation != West {
		t.Errorf("Expected WEST after RIGHT, got %v", got.Orientation)
	}
	if tr.Message() != "Toy model rotated 90deg to the right." {
		t.Errorf("Unexpected message %q", tr.Message())
	}

	if _, err := Rotate(placedAt(3, 3, South), Direction(2)); err == nil {
		t.Error("Expected error for invalid direction")
	}
}

func TestReport(t *testing.T) {
	start := placedAt(3, 3, South)
	tr, err := Report(start)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tr.After != start || tr.Changed() {
		t.Error("Report must not mutate the placement")
	}
	expected := "Toy model placed at (3, 3) facing SOUTH."
	if tr.Message() != expected {
		t.Errorf("Expected %q, got %q", expected, tr.Message())
	}
}

func TestRemove_Idempotent(t *testing.T) {
	tr := Remove(placedAt(2, 2, North))
	if tr.After.IsPlaced() {
		t.Error("Expected unplaced after remove")
	}
	tr = Remove(tr.After)
	if tr.After.IsPlaced() {
		t.Error("Expected unplaced after second remove")
	}
	if tr.Outcome != OutcomeRemoved || tr.Message() != "Toy model instance removed." {
		t.Errorf("Unexpected removal result %s %q", tr.Outcome, tr.Message())
	}
	if tr.Changed() {
		t.Error("Removing nothing should not change the placement")
	}
}

func TestPreconditionEnforcement(t *testing.T) {
	commands := []struct {
		name string
		run  func(Placement) (Transition, error)
	}{
		{"rotate", func(p Placement) (Transition, error) { return Rotate(p, Left) }},
		{"move", MoveForward},
		{"report", Report},
	}

	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			_, err := cmd.run(Unplaced())
			if !errors.Is(err, ErrNotPlaced) {
				t.Errorf("Expected ErrNotPlaced, got %v", err)
			}

			after := Remove(placedAt(1, 1, North)).After
			_, err = cmd.run(after)
			if !errors.Is(err, ErrNotPlaced) {
				t.Errorf("Expected ErrNotPlaced after remove, got %v", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	script := []struct {
		cmd             Command
		expectedOutcome Outcome
	}{
		{Command{Action: ActionPlace, State: UnitState{Position{3, 3}, South}}, OutcomePlaced},
		{Command{Action: ActionRotate, Direction: Left}, OutcomeRotatedLeft},
		{Command{Action: ActionMove}, OutcomeMoved},
		{Command{Action: ActionMove}, OutcomeMoved},
		{Command{Action: ActionMove}, OutcomeBlocked},
		{Command{Action: ActionReport}, OutcomeReported},
		{Command{Action: ActionRemove}, OutcomeRemoved},
		{Command{Action: ActionRemove}, OutcomeRemoved},
	}

	cur := Unplaced()
	for i, step := range script {
		tr, err := Apply(cur, step.cmd)
		if err != nil {
			t.Fatalf("step %d (%s): unexpected error: %v", i, step.cmd.Action, err)
		}
		if tr.Outcome != step.expectedOutcome {
			t.Errorf("step %d: expected %s, got %s", i, step.expectedOutcome, tr.Outcome)
		}
		if tr.Outcome == OutcomeReported {
			if msg := tr.Message(); msg != "Toy model placed at (5, 3) facing EAST." {
				t.Errorf("Unexpected report %q", msg)
			}
		}
		cur = tr.After
	}
	if cur.IsPlaced() {
		t.Error("Expected unplaced at end of script")
	}

	if _, err := Apply(Unplaced(), Command{Action: ActionPlace, State: UnitState{Position{6, 0}, North}}); err == nil {
		t.Error("Expected error placing out of bounds")
	}
	if _, err := Apply(Unplaced(), Command{Action: "jump"}); err == nil {
		t.Error("Expected error for unknown action")
	}
}

// TestInvariantHoldsForAllReachableStates walks every state reachable from
// every valid placement and checks the board invariant after each command.
func TestInvariantHoldsForAllReachableStates(t *testing.T) {
	commands := []Command{
		{Action: ActionRotate, Direction: Left},
		{Action: ActionRotate, Direction: Right},
		{Action: ActionMove},
		{Action: ActionReport},
	}

	seen := map[Placement]bool{}
	var queue []Placement
	for x := GridMin; x <= GridMax; x++ {
		for y := GridMin; y <= GridMax; y++ {
			for _, o := range Orientations {
				p := placedAt(x, y, o)
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, cmd := range commands {
			tr, err := Apply(cur, cmd)
			if err != nil {
				t.Fatalf("Unexpected error from %s at %v: %v", cmd.Action, cur, err)
			}
			s := mustState(t, tr.After)
			if !s.Valid() {
				t.Fatalf("Invariant violated: %s from %v produced %+v", cmd.Action, cur, s)
			}
			if !seen[tr.After] {
				seen[tr.After] = true
				queue = append(queue, tr.After)
			}
		}
	}

	if len(seen) != GridSize*GridSize*len(Orientations) {
		t.Errorf("Expected %d reachable states, got %d", GridSize*GridSize*len(Orientations), len(seen))
	}
}
