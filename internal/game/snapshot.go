package game

// Snapshot is a read-only copy of a board, safe to hand to other goroutines
// and to encode as JSON.
type Snapshot struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	State     State      `json:"state"`
	Score     int        `json:"score"`
	Best      int        `json:"best"`
	Round     int        `json:"round"`
	Direction Direction  `json:"direction"`
	Snake     []Position `json:"snake"`
	Apple     *Position  `json:"apple,omitempty"`
	Rows      []string   `json:"rows"` // one glyph per cell, see Glyph
}

// Glyph is the single-character form of a cell used in Snapshot.Rows.
func (k CellKind) Glyph() byte {
	switch k {
	case CellSnake:
		return 's'
	case CellApple:
		return '@'
	case CellObstacle:
		return '#'
	default:
		return '.'
	}
}

// Snapshot copies the current board state.
func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{
		Width:  b.cfg.Width,
		Height: b.cfg.Height,
		State:  b.state,
		Score:  b.score,
		Best:   b.best,
		Round:  b.round,
		Snake:  []Position{},
		Rows:   make([]string, b.cfg.Height),
	}
	if b.snake != nil {
		snap.Direction = b.snake.dir
		snap.Snake = b.snake.Body()
	}
	if b.apple != nil {
		if p, ok := b.apple.Position(); ok {
			snap.Apple = &p
		}
	}
	row := make([]byte, b.cfg.Width)
	for y := 0; y < b.cfg.Height; y++ {
		for x := 0; x < b.cfg.Width; x++ {
			row[x] = b.cells[y*b.cfg.Width+x].Glyph()
		}
		snap.Rows[y] = string(row)
	}
	return snap
}
