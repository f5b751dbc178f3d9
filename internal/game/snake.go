// internal/game/snake.go
//
// Snake movement and spawn placement.
//
// The body is stored head-first. A direction change is buffered until the
// next move: at most one change is accepted per tick and a reversal is
// always refused, so the head can never fold back onto the neck.

package game

// Snake is the player-controlled body for one round.
type Snake struct {
	board  *Board
	body   []Position // body[0] is the head
	dir    Direction
	turned bool // a change was accepted since the last move
}

// newSnake places a fresh snake on b and paints it.
func newSnake(b *Board) (*Snake, error) {
	body, err := spawnBody(b)
	if err != nil {
		return nil, err
	}
	s := &Snake{board: b, body: body, dir: Down}
	for _, p := range s.body {
		b.set(p, CellSnake)
	}
	return s, nil
}

// spawnBody picks a random column/row anchor whose vertical run, plus
// NoObstacleRadius cells below it, is empty. After PlacementAttempts misses
// it scans anchors in order and takes the first that fits.
func spawnBody(b *Board) ([]Position, error) {
	cfg := b.cfg
	rows := cfg.spawnRowLimit()
	for i := 0; i < cfg.attempts(); i++ {
		anchor := Position{
			X: 1 + b.rng.Intn(cfg.Width-2),
			Y: 1 + b.rng.Intn(rows-1),
		}
		if body, ok := runAt(b, anchor); ok {
			return body, nil
		}
	}
	for y := 1; y < rows; y++ {
		for x := 1; x < cfg.Width-1; x++ {
			if body, ok := runAt(b, Position{x, y}); ok {
				return body, nil
			}
		}
	}
	return nil, ErrNoSpawn
}

// runAt checks the run starting at anchor and returns it bottom-first, so
// the lowest cell becomes the head of a snake heading down.
func runAt(b *Board, anchor Position) ([]Position, bool) {
	n := b.cfg.SnakeLength
	run := make([]Position, 0, n)
	for i := 0; i < n+b.cfg.NoObstacleRadius; i++ {
		p := Position{anchor.X, anchor.Y + i}
		if !b.IsEmpty(p) {
			return nil, false
		}
		if i < n {
			run = append(run, p)
		}
	}
	for i, j := 0, len(run)-1; i < j; i, j = i+1, j-1 {
		run[i], run[j] = run[j], run[i]
	}
	return run, true
}

// changeDirection accepts d unless it is invalid, the current heading, its
// reverse, or a second change within the same tick.
func (s *Snake) changeDirection(d Direction) bool {
	if s.turned || !d.Valid() || d == s.dir || d == s.dir.Opposite() {
		return false
	}
	s.dir = d
	s.turned = true
	return true
}

// move advances the head one cell on the torus and reports what it hit.
// The target is classified before the body changes; the tail cell that is
// about to be vacated counts as empty.
func (s *Snake) move() CellKind {
	s.turned = false
	b := s.board

	dx, dy := s.dir.Delta()
	head := b.wrap(Position{X: s.body[0].X + dx, Y: s.body[0].Y + dy})
	tail := s.body[len(s.body)-1]

	kind := b.Classify(head)
	if kind == CellSnake && head == tail {
		kind = CellEmpty
	}

	s.body = append(s.body, Position{})
	copy(s.body[1:], s.body)
	s.body[0] = head

	if kind != CellApple {
		s.body = s.body[:len(s.body)-1]
		if tail != head {
			b.set(tail, CellEmpty)
		}
	}
	b.set(head, CellSnake)
	return kind
}

// Body returns a head-first copy of the snake.
func (s *Snake) Body() []Position { return append([]Position(nil), s.body...) }

func (s *Snake) Head() Position       { return s.body[0] }
func (s *Snake) Len() int             { return len(s.body) }
func (s *Snake) Direction() Direction { return s.dir }

// Turned reports whether a direction change is already buffered for the
// next tick.
func (s *Snake) Turned() bool { return s.turned }
