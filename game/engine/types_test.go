package engine

import (
	"encoding/json"
	"testing"
)

func TestGridConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"GridMin", GridMin, 0},
		{"GridMax", GridMax, 5},
		{"GridSize", GridSize, 6},
		{"WebSocketBufferSize", WebSocketBufferSize, 256},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("%s: expected %d, got %d", test.name, test.expected, test.actual)
		}
	}
}

func TestOrientationString(t *testing.T) {
	tests := []struct {
		orientation Orientation
		expected    string
	}{
		{North, "NORTH"},
		{East, "EAST"},
		{South, "SOUTH"},
		{West, "WEST"},
		{Orientation(7), "Orientation(7)"},
	}

	for _, test := range tests {
		if got := test.orientation.String(); got != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, got)
		}
	}
}

func TestParseOrientation(t *testing.T) {
	for _, o := range Orientations {
		parsed, err := ParseOrientation(o.String())
		if err != nil {
			t.Fatalf("ParseOrientation(%q) failed: %v", o.String(), err)
		}
		if parsed != o {
			t.Errorf("Expected %v, got %v", o, parsed)
		}
	}

	for _, bad := range []string{"", "north", "test", "NORTHEAST"} {
		if _, err := ParseOrientation(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"LEFT", Left, false},
		{"left", Left, false},
		{" Right ", Right, false},
		{"UP", 0, true},
		{"", 0, true},
	}

	for _, test := range tests {
		got, err := ParseDirection(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseDirection(%q): unexpected error state %v", test.input, err)
			continue
		}
		if got != test.expected {
			t.Errorf("ParseDirection(%q): expected %v, got %v", test.input, test.expected, got)
		}
	}
}

func TestPositionInBounds(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		expected bool
	}{
		{"origin", Position{0, 0}, true},
		{"far corner", Position{5, 5}, true},
		{"center", Position{3, 2}, true},
		{"negative x", Position{-1, 0}, false},
		{"negative y", Position{0, -1}, false},
		{"x past edge", Position{6, 0}, false},
		{"y past edge", Position{2, 10}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.pos.InBounds(); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestUnitStateJSONMarshaling(t *testing.T) {
	state := UnitState{Position: Position{X: 3, Y: 1}, Orientation: West}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	expected := `{"position":{"x":3,"y":1},"face":"WEST"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}

	var decoded UnitState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}
	if decoded != state {
		t.Errorf("Expected %+v, got %+v", state, decoded)
	}

	if err := json.Unmarshal([]byte(`{"position":{"x":0,"y":0},"face":"UP"}`), &decoded); err == nil {
		t.Error("Expected error for unknown face")
	}
}

func TestPlacement(t *testing.T) {
	var zero Placement
	if zero.IsPlaced() {
		t.Error("Zero placement should be unplaced")
	}
	if zero != Unplaced() {
		t.Error("Zero placement should equal Unplaced()")
	}

	state := UnitState{Position: Position{X: 1, Y: 2}, Orientation: East}
	p := Placed(state)
	got, ok := p.State()
	if !ok {
		t.Fatal("Expected placed")
	}
	if got != state {
		t.Errorf("Expected %+v, got %+v", state, got)
	}
	if p.String() != "(1, 2) EAST" {
		t.Errorf("Unexpected string %q", p.String())
	}
	if Unplaced().String() != "unplaced" {
		t.Errorf("Unexpected string %q", Unplaced().String())
	}
}
