// internal/game/board.go
//
// Board is the root of one Snake game.
// Responsibilities:
//   - Own the occupancy map (one CellKind per cell) and keep it in sync with
//     the snake body, the apple and the static/edge obstacles.
//   - Apply scoring and game-over policy for whatever the snake ran into.
//   - Start/stop the movement clock so exactly one timer drives a round.
//   - Tell the View about every cell, score and state change.
//
// Notes:
//   - Board is not safe for concurrent use; a single goroutine (see
//     internal/session) must own it.
//   - Snake and Apple live for one round; they are dropped on game over and
//     rebuilt by Retry.

package game

import (
	"math/rand"
	"time"
)

// View is the render-side collaborator. Implementations must not call back
// into the Board.
type View interface {
	MarkCell(pos Position, kind CellKind)
	SetScore(n int)
	ShowGameOver()
}

// Clock drives Board.Tick at a fixed interval. Start is always preceded by
// Stop when a timer is already running.
type Clock interface {
	Start(interval time.Duration)
	Stop()
}

type nopView struct{}

func (nopView) MarkCell(Position, CellKind) {}
func (nopView) SetScore(int)                {}
func (nopView) ShowGameOver()               {}

type nopClock struct{}

func (nopClock) Start(time.Duration) {}
func (nopClock) Stop()               {}

// Option customizes a Board at construction.
type Option func(*Board)

func WithView(v View) Option {
	return func(b *Board) {
		if v != nil {
			b.view = v
		}
	}
}

func WithClock(c Clock) Option {
	return func(b *Board) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithRand fixes the random source used for snake and apple placement.
func WithRand(r *rand.Rand) Option {
	return func(b *Board) {
		if r != nil {
			b.rng = r
		}
	}
}

// Board holds the state of a single game.
type Board struct {
	cfg   Config
	view  View
	clock Clock
	rng   *rand.Rand

	cells   []CellKind // row-major occupancy map, len = Width*Height
	running bool       // clock started and not yet stopped

	state State
	score int
	best  int
	round int

	snake *Snake
	apple *Apple
}

// NewBoard validates cfg, lays out the first round and starts the clock.
func NewBoard(cfg Config, opts ...Option) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.StaticObstacles = append([]Position(nil), cfg.StaticObstacles...)

	b := &Board{
		cfg:   cfg,
		view:  nopView{},
		clock: nopClock{},
		cells: make([]CellKind, cfg.Width*cfg.Height),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if err := b.startRound(); err != nil {
		return nil, err
	}
	return b, nil
}

// startRound resets score and layout, then spawns the apple before the
// snake.
func (b *Board) startRound() error {
	b.score = 0
	b.view.SetScore(0)
	b.layout()

	b.apple = newApple(b)
	s, err := newSnake(b)
	if err != nil {
		if pos, ok := b.apple.Position(); ok {
			b.set(pos, CellEmpty)
		}
		b.apple = nil
		b.state = StateGameOver
		return err
	}
	b.snake = s
	b.state = StatePlaying
	b.round++
	b.startClock()
	return nil
}

// layout clears every cell to its static kind and repaints the whole grid.
func (b *Board) layout() {
	for y := 0; y < b.cfg.Height; y++ {
		for x := 0; x < b.cfg.Width; x++ {
			p := Position{x, y}
			kind := CellEmpty
			if b.cfg.EdgeObstacles && b.cfg.isEdge(p) {
				kind = CellObstacle
			}
			b.cells[b.index(p)] = kind
		}
	}
	for _, p := range b.cfg.StaticObstacles {
		b.cells[b.index(p)] = CellObstacle
	}
	for y := 0; y < b.cfg.Height; y++ {
		for x := 0; x < b.cfg.Width; x++ {
			p := Position{x, y}
			b.view.MarkCell(p, b.cells[b.index(p)])
		}
	}
}

func (b *Board) startClock() {
	if b.running {
		b.clock.Stop()
	}
	b.clock.Start(b.cfg.Tick)
	b.running = true
}

func (b *Board) stopClock() {
	if b.running {
		b.clock.Stop()
		b.running = false
	}
}

func (b *Board) index(p Position) int { return p.Y*b.cfg.Width + p.X }

// set updates the occupancy map and the view together.
func (b *Board) set(p Position, kind CellKind) {
	b.cells[b.index(p)] = kind
	b.view.MarkCell(p, kind)
}

// wrap maps any coordinate onto the torus.
func (b *Board) wrap(p Position) Position {
	p.X = ((p.X % b.cfg.Width) + b.cfg.Width) % b.cfg.Width
	p.Y = ((p.Y % b.cfg.Height) + b.cfg.Height) % b.cfg.Height
	return p
}

// IsEmpty is true iff no obstacle, snake segment or apple occupies pos.
// Positions off the grid are never empty.
func (b *Board) IsEmpty(pos Position) bool {
	return b.cfg.inBounds(pos) && b.cells[b.index(pos)] == CellEmpty
}

// Classify returns the occupant of pos. Writes to the occupancy map follow
// the precedence snake > obstacle > apple > empty, so a single lookup is
// enough. Off-grid positions classify as Obstacle.
func (b *Board) Classify(pos Position) CellKind {
	if !b.cfg.inBounds(pos) {
		return CellObstacle
	}
	return b.cells[b.index(pos)]
}

// ChangeDirection buffers a turn for the next tick. It reports whether the
// request was accepted.
func (b *Board) ChangeDirection(d Direction) bool {
	if b.state != StatePlaying || b.snake == nil {
		return false
	}
	return b.snake.changeDirection(d)
}

// Tick advances the snake one cell and applies the outcome. It returns the
// kind of cell the head landed on; a finished round returns CellEmpty.
func (b *Board) Tick() CellKind {
	if b.state != StatePlaying || b.snake == nil {
		return CellEmpty
	}
	kind := b.snake.move()
	b.resolveOutcome(kind)
	return kind
}

func (b *Board) resolveOutcome(kind CellKind) {
	switch kind {
	case CellApple:
		b.score++
		if b.score > b.best {
			b.best = b.score
		}
		b.view.SetScore(b.score)
		b.apple.generate()
	case CellObstacle, CellSnake:
		b.gameOver()
	}
}

// gameOver freezes the round until Retry.
func (b *Board) gameOver() {
	b.stopClock()
	b.state = StateGameOver
	b.snake = nil
	b.apple = nil
	b.view.ShowGameOver()
}

// Retry starts a fresh round after a game over.
func (b *Board) Retry() error {
	if b.state != StateGameOver {
		return ErrNotOver
	}
	return b.startRound()
}

// Stop halts the clock without ending the round. Used when the owning
// session shuts down.
func (b *Board) Stop() { b.stopClock() }

// Config returns the board's configuration. The obstacle slice is a copy.
func (b *Board) Config() Config {
	cfg := b.cfg
	cfg.StaticObstacles = append([]Position(nil), b.cfg.StaticObstacles...)
	return cfg
}

func (b *Board) Score() int   { return b.score }
func (b *Board) Best() int    { return b.best }
func (b *Board) Round() int   { return b.round }
func (b *Board) State() State { return b.state }
func (b *Board) IsOver() bool { return b.state == StateGameOver }

// Running reports whether the movement clock is active.
func (b *Board) Running() bool { return b.running }

// Direction is the live snake's heading; zero after game over.
func (b *Board) Direction() Direction {
	if b.snake == nil {
		return 0
	}
	return b.snake.dir
}

// Snake returns the live snake, or nil after game over.
func (b *Board) Snake() *Snake { return b.snake }

// Apple returns the live apple, or nil after game over.
func (b *Board) Apple() *Apple { return b.apple }
