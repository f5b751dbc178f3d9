package game

// Apple is the single piece of food on the board.
type Apple struct {
	board  *Board
	pos    Position
	placed bool
}

func newApple(b *Board) *Apple {
	a := &Apple{board: b}
	a.generate()
	return a
}

// generate samples the grid uniformly until it finds an empty cell. After
// PlacementAttempts misses it takes the first empty cell in row-major order.
// A completely full board leaves the apple unplaced.
func (a *Apple) generate() {
	b := a.board
	a.placed = false
	for i := 0; i < b.cfg.attempts(); i++ {
		p := Position{X: b.rng.Intn(b.cfg.Width), Y: b.rng.Intn(b.cfg.Height)}
		if b.IsEmpty(p) {
			a.place(p)
			return
		}
	}
	for y := 0; y < b.cfg.Height; y++ {
		for x := 0; x < b.cfg.Width; x++ {
			if p := (Position{x, y}); b.IsEmpty(p) {
				a.place(p)
				return
			}
		}
	}
}

func (a *Apple) place(p Position) {
	a.pos = p
	a.placed = true
	a.board.set(p, CellApple)
}

// Position returns where the apple sits; ok is false when there was no room.
func (a *Apple) Position() (pos Position, ok bool) {
	return a.pos, a.placed
}
