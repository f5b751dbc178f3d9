// internal/game/types.go
//
// Core type definitions for the Snake game engine.
// Defines:
//   - Position: a grid cell coordinate.
//   - CellKind: what occupies a cell (empty/snake/apple/obstacle).
//   - Direction: the snake's facing direction.
//   - State: whether a round is being played or has ended.

package game

import (
	"fmt"
	"strings"
)

// Position is a cell on the grid. X grows to the right, Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// CellKind is the single occupant of a grid cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellSnake
	CellApple
	CellObstacle
)

var cellKindNames = [...]string{
	CellEmpty:    "empty",
	CellSnake:    "snake",
	CellApple:    "apple",
	CellObstacle: "obstacle",
}

func (k CellKind) String() string {
	if int(k) < len(cellKindNames) {
		return cellKindNames[k]
	}
	return "unknown"
}

// MarshalText lets CellKind travel as "empty"/"snake"/"apple"/"obstacle" in JSON.
func (k CellKind) MarshalText() ([]byte, error) {
	if int(k) >= len(cellKindNames) {
		return nil, fmt.Errorf("game: unknown cell kind %d", k)
	}
	return []byte(cellKindNames[k]), nil
}

func (k *CellKind) UnmarshalText(b []byte) error {
	for i, name := range cellKindNames {
		if name == string(b) {
			*k = CellKind(i)
			return nil
		}
	}
	return fmt.Errorf("game: unknown cell kind %q", b)
}

// Direction is where the snake heads on the next tick.
// The zero value is not a valid direction.
type Direction uint8

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*d = 0
		return nil
	}
	v, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("game: unknown direction %q", b)
	}
	*d = v
	return nil
}

// Opposite returns the reverse direction; the zero value maps to itself.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Delta returns the unit step for d in screen coordinates (Up decreases Y).
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool { return d >= Up && d <= Right }

// ParseDirection accepts "up", "down", "left", "right" (any case).
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return 0, false
}

// State is the coarse lifecycle of a board.
type State uint8

const (
	StatePlaying State = iota
	StateGameOver
)

func (s State) String() string {
	if s == StateGameOver {
		return "game_over"
	}
	return "playing"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "playing":
		*s = StatePlaying
	case "game_over":
		*s = StateGameOver
	default:
		return fmt.Errorf("game: unknown state %q", b)
	}
	return nil
}
