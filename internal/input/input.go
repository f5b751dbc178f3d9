// internal/input/input.go
//
// Keyboard adapter between the browser and the game core.
// Responsibilities:
//   - Map raw key codes (classic virtual keys) and KeyboardEvent key/code
//     names onto a small set of actions.
//   - Dispatch actions to a Controller, honoring game-over rules:
//     only Confirm (retry) is accepted once a round has ended.

package input

import (
	"strings"

	"github.com/robalobadob/snake/internal/game"
)

// Action is a player intent decoded from a key.
type Action uint8

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionConfirm
)

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionConfirm:
		return "confirm"
	default:
		return "none"
	}
}

// Virtual key codes sent by browsers in KeyboardEvent.keyCode.
const (
	KeyLeft  = 37
	KeyUp    = 38
	KeyRight = 39
	KeyDown  = 40
	KeyA     = 65
	KeyD     = 68
	KeyS     = 83
	KeyW     = 87
	KeySpace = 32
)

// FromKeyCode maps arrows, WASD and Space to actions.
func FromKeyCode(code int) Action {
	switch code {
	case KeyUp, KeyW:
		return ActionUp
	case KeyDown, KeyS:
		return ActionDown
	case KeyLeft, KeyA:
		return ActionLeft
	case KeyRight, KeyD:
		return ActionRight
	case KeySpace:
		return ActionConfirm
	}
	return ActionNone
}

// FromKey maps KeyboardEvent.key or KeyboardEvent.code values.
func FromKey(key string) Action {
	if key == " " {
		return ActionConfirm
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "arrowup", "up", "w", "keyw":
		return ActionUp
	case "arrowdown", "down", "s", "keys":
		return ActionDown
	case "arrowleft", "left", "a", "keya":
		return ActionLeft
	case "arrowright", "right", "d", "keyd":
		return ActionRight
	case "space", "spacebar":
		return ActionConfirm
	}
	return ActionNone
}

// Direction returns the game direction for a movement action.
func (a Action) Direction() (game.Direction, bool) {
	switch a {
	case ActionUp:
		return game.Up, true
	case ActionDown:
		return game.Down, true
	case ActionLeft:
		return game.Left, true
	case ActionRight:
		return game.Right, true
	}
	return 0, false
}

// Controller is the subset of *game.Board the adapter drives.
type Controller interface {
	ChangeDirection(d game.Direction) bool
	Retry() error
	IsOver() bool
}

var _ Controller = (*game.Board)(nil)

// Dispatch applies a to c and reports whether it changed anything.
// While a round is over every movement key is ignored; while playing,
// Confirm is ignored. A failed retry returns the board's error with
// handled false.
func Dispatch(c Controller, a Action) (bool, error) {
	if c.IsOver() {
		if a != ActionConfirm {
			return false, nil
		}
		if err := c.Retry(); err != nil {
			return false, err
		}
		return true, nil
	}
	d, ok := a.Direction()
	if !ok {
		return false, nil
	}
	return c.ChangeDirection(d), nil
}
