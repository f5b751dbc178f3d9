package game

import (
	"encoding/json"
	"testing"
)

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		d, want Direction
	}{
		{Up, Down},
		{Down, Up},
		{Left, Right},
		{Right, Left},
	}
	for _, tt := range tests {
		if got := tt.d.Opposite(); got != tt.want {
			t.Errorf("%s.Opposite() = %s, want %s", tt.d, got, tt.want)
		}
		dx, dy := tt.d.Delta()
		ox, oy := tt.want.Delta()
		if dx+ox != 0 || dy+oy != 0 {
			t.Errorf("%s and %s deltas do not cancel", tt.d, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "DOWN", " Left ", "right"} {
		if _, ok := ParseDirection(s); !ok {
			t.Errorf("ParseDirection(%q) failed", s)
		}
	}
	if _, ok := ParseDirection("north"); ok {
		t.Error("ParseDirection accepted north")
	}
}

func TestCellKindJSON(t *testing.T) {
	b, err := json.Marshal(map[string]CellKind{"k": CellObstacle})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"k":"obstacle"}` {
		t.Fatalf("got %s", b)
	}
	var k CellKind
	if err := k.UnmarshalText([]byte("apple")); err != nil || k != CellApple {
		t.Fatalf("UnmarshalText: %v %s", err, k)
	}
	if err := k.UnmarshalText([]byte("lava")); err == nil {
		t.Fatal("unknown kind accepted")
	}
}
