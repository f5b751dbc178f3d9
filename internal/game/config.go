// internal/game/config.go
//
// Immutable configuration for one Board.
// DefaultConfig mirrors the classic 20x20 game: 100ms ticks, an obstacle
// ring on the edges, a handful of static walls, a 3-cell snake that spawns
// with 3 free cells below it.

package game

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultWidth             = 20
	defaultHeight            = 20
	defaultTick              = 100 * time.Millisecond
	defaultSnakeLength       = 3
	defaultNoObstacleRadius  = 3
	defaultPlacementAttempts = 1000
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoSpawn       = errors.New("no room to spawn snake")
	ErrNotOver       = errors.New("round still in progress")
)

// ClassicObstacles is the static wall layout of the classic 20x20 game.
var ClassicObstacles = []Position{
	{10, 10}, {10, 9}, {10, 8}, {9, 10},
	{8, 10}, {5, 5}, {6, 5}, {7, 5},
	{15, 15}, {15, 16}, {15, 17},
}

// Config is passed by value into NewBoard and never mutated afterwards.
type Config struct {
	Width             int
	Height            int
	Tick              time.Duration
	EdgeObstacles     bool
	StaticObstacles   []Position
	SnakeLength       int
	NoObstacleRadius  int
	PlacementAttempts int // random samples before falling back to a scan
}

// DefaultConfig returns the classic setup.
func DefaultConfig() Config {
	return Config{
		Width:             defaultWidth,
		Height:            defaultHeight,
		Tick:              defaultTick,
		EdgeObstacles:     true,
		StaticObstacles:   append([]Position(nil), ClassicObstacles...),
		SnakeLength:       defaultSnakeLength,
		NoObstacleRadius:  defaultNoObstacleRadius,
		PlacementAttempts: defaultPlacementAttempts,
	}
}

// Validate checks that a snake can be spawned at all and that every static
// obstacle lies on the grid.
func (c Config) Validate() error {
	if c.Width < 3 {
		return fmt.Errorf("%w: width %d < 3", ErrInvalidConfig, c.Width)
	}
	if c.SnakeLength < 1 {
		return fmt.Errorf("%w: snake length %d < 1", ErrInvalidConfig, c.SnakeLength)
	}
	if c.NoObstacleRadius < 0 {
		return fmt.Errorf("%w: negative obstacle radius", ErrInvalidConfig)
	}
	if c.spawnRowLimit() <= 1 {
		return fmt.Errorf("%w: height %d too small for snake of %d plus radius %d",
			ErrInvalidConfig, c.Height, c.SnakeLength, c.NoObstacleRadius)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive", ErrInvalidConfig)
	}
	for _, p := range c.StaticObstacles {
		if !c.inBounds(p) {
			return fmt.Errorf("%w: obstacle %s out of bounds", ErrInvalidConfig, p)
		}
	}
	return nil
}

func (c Config) inBounds(p Position) bool {
	return p.X >= 0 && p.X < c.Width && p.Y >= 0 && p.Y < c.Height
}

// spawnRowLimit is the exclusive upper bound for a snake anchor row.
func (c Config) spawnRowLimit() int {
	return c.Height - c.NoObstacleRadius - c.SnakeLength - 1
}

func (c Config) attempts() int {
	if c.PlacementAttempts <= 0 {
		return defaultPlacementAttempts
	}
	return c.PlacementAttempts
}

// isEdge reports whether p lies on the outer ring of the grid.
func (c Config) isEdge(p Position) bool {
	return p.X%(c.Width-1) == 0 || p.Y%(c.Height-1) == 0
}
