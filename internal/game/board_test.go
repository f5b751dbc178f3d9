package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	starts, stops int
	active        int
	maxActive     int
	interval      time.Duration
}

func (c *fakeClock) Start(d time.Duration) {
	c.starts++
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.interval = d
}

func (c *fakeClock) Stop() {
	c.stops++
	c.active--
}

type fakeView struct {
	marks    map[Position]CellKind
	score    int
	gameOver int
}

func newFakeView() *fakeView { return &fakeView{marks: map[Position]CellKind{}} }

func (v *fakeView) MarkCell(p Position, k CellKind) { v.marks[p] = k }
func (v *fakeView) SetScore(n int)                  { v.score = n }
func (v *fakeView) ShowGameOver()                   { v.gameOver++ }

// zeroSource makes every Intn return 0.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func openConfig(w, h int) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = w, h
	cfg.EdgeObstacles = false
	cfg.StaticObstacles = nil
	return cfg
}

func mustBoard(t *testing.T, cfg Config, opts ...Option) *Board {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(42)))}, opts...)
	b, err := NewBoard(cfg, opts...)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return b
}

// placeSnake replaces the spawned snake with body (head first) heading dir.
func placeSnake(t *testing.T, b *Board, dir Direction, body ...Position) {
	t.Helper()
	for _, p := range b.snake.body {
		b.set(p, CellEmpty)
	}
	for _, p := range body {
		if b.Classify(p) == CellApple {
			b.set(p, CellEmpty)
			b.apple.placed = false
		}
		if !b.IsEmpty(p) {
			t.Fatalf("placeSnake: %s is %s", p, b.Classify(p))
		}
		b.set(p, CellSnake)
	}
	b.snake.body = append([]Position(nil), body...)
	b.snake.dir = dir
	b.snake.turned = false
}

// placeApple moves the apple to p.
func placeApple(t *testing.T, b *Board, p Position) {
	t.Helper()
	if old, ok := b.apple.Position(); ok {
		b.set(old, CellEmpty)
	}
	if !b.IsEmpty(p) {
		t.Fatalf("placeApple: %s is %s", p, b.Classify(p))
	}
	b.apple.place(p)
}

func TestNewBoardPaintsEveryCell(t *testing.T) {
	v := newFakeView()
	clock := &fakeClock{}
	b := mustBoard(t, DefaultConfig(), WithView(v), WithClock(clock))

	if len(v.marks) != 20*20 {
		t.Fatalf("expected all 400 cells painted, got %d", len(v.marks))
	}
	if clock.starts != 1 || clock.interval != 100*time.Millisecond {
		t.Fatalf("clock starts=%d interval=%v", clock.starts, clock.interval)
	}
	if b.State() != StatePlaying || b.Round() != 1 || b.Score() != 0 {
		t.Fatalf("unexpected start state: %s round=%d score=%d", b.State(), b.Round(), b.Score())
	}
	if b.Snake().Len() != 3 || b.Snake().Direction() != Down {
		t.Fatalf("snake len=%d dir=%s", b.Snake().Len(), b.Snake().Direction())
	}
	for _, p := range b.Snake().Body() {
		if v.marks[p] != CellSnake {
			t.Fatalf("snake cell %s painted %s", p, v.marks[p])
		}
	}
	if p, ok := b.Apple().Position(); !ok || v.marks[p] != CellApple {
		t.Fatalf("apple not painted at %s", p)
	}
}

func TestEdgeRingIsObstacle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StaticObstacles = nil
	b := mustBoard(t, cfg)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := Position{x, y}
			edge := x == 0 || y == 0 || x == cfg.Width-1 || y == cfg.Height-1
			if edge && b.Classify(p) != CellObstacle {
				t.Fatalf("edge %s classified %s", p, b.Classify(p))
			}
			if !edge && b.Classify(p) == CellObstacle {
				t.Fatalf("inner %s classified obstacle", p)
			}
		}
	}
}

func TestStaticObstaclesAndIsEmpty(t *testing.T) {
	b := mustBoard(t, DefaultConfig())
	for _, p := range ClassicObstacles {
		if b.IsEmpty(p) || b.Classify(p) != CellObstacle {
			t.Fatalf("%s should be an obstacle", p)
		}
	}
	if b.IsEmpty(Position{-1, 3}) || b.Classify(Position{20, 3}) != CellObstacle {
		t.Fatal("off-grid cells must be occupied")
	}
}

func TestReverseDirectionRejected(t *testing.T) {
	for _, d := range []Direction{Up, Down, Left, Right} {
		t.Run(d.String(), func(t *testing.T) {
			b := mustBoard(t, openConfig(20, 20))
			placeSnake(t, b, d, Position{10, 10}, Position{10, 11}, Position{10, 12})

			if b.ChangeDirection(d.Opposite()) {
				t.Fatalf("reverse of %s accepted", d)
			}
			if b.Snake().Direction() != d {
				t.Fatalf("direction changed to %s", b.Snake().Direction())
			}
		})
	}
}

func TestOneDirectionChangePerTick(t *testing.T) {
	b := mustBoard(t, openConfig(20, 20))
	placeSnake(t, b, Down, Position{10, 10}, Position{10, 9}, Position{10, 8})

	if b.ChangeDirection(Down) {
		t.Fatal("same direction should be a no-op")
	}
	if !b.ChangeDirection(Left) {
		t.Fatal("first turn rejected")
	}
	if b.ChangeDirection(Up) {
		t.Fatal("second turn in the same tick accepted")
	}
	b.Tick()
	if got := b.Snake().Head(); got != (Position{9, 10}) {
		t.Fatalf("head = %s, want (9,10)", got)
	}
	if !b.ChangeDirection(Up) {
		t.Fatal("turn after tick rejected")
	}
}

func TestEatAppleGrowsAndScores(t *testing.T) {
	v := newFakeView()
	b := mustBoard(t, DefaultConfig(), WithView(v))
	placeSnake(t, b, Down, Position{3, 3}, Position{3, 2}, Position{3, 1})
	placeApple(t, b, Position{3, 4})

	if kind := b.Tick(); kind != CellApple {
		t.Fatalf("tick hit %s, want apple", kind)
	}
	if b.Snake().Len() != 4 {
		t.Fatalf("len = %d, want 4", b.Snake().Len())
	}
	if b.Score() != 1 || v.score != 1 || b.Best() != 1 {
		t.Fatalf("score=%d view=%d best=%d", b.Score(), v.score, b.Best())
	}
	p, ok := b.Apple().Position()
	if !ok || p == (Position{3, 4}) {
		t.Fatalf("apple not respawned: %s ok=%v", p, ok)
	}
	if b.Classify(p) != CellApple {
		t.Fatalf("new apple cell is %s", b.Classify(p))
	}
	for _, s := range b.Snake().Body() {
		if s == p {
			t.Fatalf("apple respawned on snake at %s", p)
		}
	}
}

func TestRightEdgeEndsGame(t *testing.T) {
	v := newFakeView()
	clock := &fakeClock{}
	b := mustBoard(t, DefaultConfig(), WithView(v), WithClock(clock))
	placeSnake(t, b, Right, Position{17, 3}, Position{16, 3}, Position{15, 3})
	if p, _ := b.Apple().Position(); p.Y == 3 {
		placeApple(t, b, Position{2, 17})
	}

	if kind := b.Tick(); kind != CellEmpty {
		t.Fatalf("first tick hit %s", kind)
	}
	if kind := b.Tick(); kind != CellObstacle {
		t.Fatalf("second tick hit %s, want obstacle", kind)
	}
	if !b.IsOver() || b.Snake() != nil || b.Apple() != nil {
		t.Fatal("round not released on game over")
	}
	if clock.stops != 1 || clock.active != 0 || b.Running() {
		t.Fatalf("clock still active: stops=%d active=%d", clock.stops, clock.active)
	}
	if v.gameOver != 1 {
		t.Fatalf("ShowGameOver called %d times", v.gameOver)
	}
	if kind := b.Tick(); kind != CellEmpty || clock.starts != 1 {
		t.Fatal("tick after game over must do nothing")
	}
	if b.ChangeDirection(Up) {
		t.Fatal("direction change accepted after game over")
	}
}

func TestSelfCollisionEndsGame(t *testing.T) {
	b := mustBoard(t, openConfig(20, 20))
	placeSnake(t, b, Left,
		Position{5, 5}, Position{6, 5}, Position{6, 6}, Position{5, 6}, Position{4, 6})
	placeApple(t, b, Position{15, 15})

	if !b.ChangeDirection(Down) {
		t.Fatal("turn rejected")
	}
	if kind := b.Tick(); kind != CellSnake {
		t.Fatalf("hit %s, want snake", kind)
	}
	if !b.IsOver() {
		t.Fatal("self collision did not end the game")
	}
}

func TestChasingVacatedTailIsAllowed(t *testing.T) {
	b := mustBoard(t, openConfig(20, 20))
	placeSnake(t, b, Left, Position{5, 5}, Position{6, 5}, Position{6, 6}, Position{5, 6})
	placeApple(t, b, Position{15, 15})

	b.ChangeDirection(Down)
	if kind := b.Tick(); kind != CellEmpty {
		t.Fatalf("hit %s, want empty", kind)
	}
	if b.IsOver() {
		t.Fatal("moving into the vacated tail ended the game")
	}
	if b.Snake().Len() != 4 || b.Snake().Head() != (Position{5, 6}) {
		t.Fatalf("snake = %v", b.Snake().Body())
	}
	if b.Classify(Position{5, 6}) != CellSnake {
		t.Fatal("head cell lost its snake mark")
	}
}

func TestToroidalWrap(t *testing.T) {
	tests := []struct {
		name string
		dir  Direction
		body []Position
		want Position
	}{
		{"right edge", Right, []Position{{19, 5}, {18, 5}, {17, 5}}, Position{0, 5}},
		{"left edge", Left, []Position{{0, 5}, {1, 5}, {2, 5}}, Position{19, 5}},
		{"top edge", Up, []Position{{7, 0}, {7, 1}, {7, 2}}, Position{7, 19}},
		{"bottom edge", Down, []Position{{7, 19}, {7, 18}, {7, 17}}, Position{7, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, openConfig(20, 20))
			placeSnake(t, b, tt.dir, tt.body...)
			placeApple(t, b, Position{10, 10})

			b.Tick()
			if b.IsOver() {
				t.Fatal("wrap ended the game without edge obstacles")
			}
			if got := b.Snake().Head(); got != tt.want {
				t.Fatalf("head = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGrowthOnlyOnAppleAndHeadInBounds(t *testing.T) {
	cfg := openConfig(12, 12)
	b := mustBoard(t, cfg)
	rng := rand.New(rand.NewSource(7))
	dirs := []Direction{Up, Down, Left, Right}

	for i := 0; i < 2000 && !b.IsOver(); i++ {
		b.ChangeDirection(dirs[rng.Intn(len(dirs))])
		before := b.Snake().Len()
		kind := b.Tick()
		if b.IsOver() {
			if kind != CellSnake {
				t.Fatalf("game ended on %s without edges or obstacles", kind)
			}
			break
		}
		after := b.Snake().Len()
		if (after == before+1) != (kind == CellApple) {
			t.Fatalf("tick %d: len %d -> %d on %s", i, before, after, kind)
		}
		if after != before && after != before+1 {
			t.Fatalf("tick %d: len %d -> %d", i, before, after)
		}
		h := b.Snake().Head()
		if h.X < 0 || h.X >= cfg.Width || h.Y < 0 || h.Y >= cfg.Height {
			t.Fatalf("tick %d: head %s out of bounds", i, h)
		}
	}
}

func TestRetryStartsFreshRound(t *testing.T) {
	v := newFakeView()
	clock := &fakeClock{}
	b := mustBoard(t, DefaultConfig(), WithView(v), WithClock(clock))

	if err := b.Retry(); !errors.Is(err, ErrNotOver) {
		t.Fatalf("retry while playing: %v", err)
	}

	placeSnake(t, b, Right, Position{17, 3}, Position{16, 3}, Position{15, 3})
	placeApple(t, b, Position{17, 2})
	b.ChangeDirection(Up)
	b.Tick() // eats the apple
	b.ChangeDirection(Right)
	for !b.IsOver() {
		b.Tick()
	}
	scored := b.Score()
	if scored < 1 {
		t.Fatalf("score before retry = %d", scored)
	}

	if err := b.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if b.Score() != 0 || v.score != 0 || b.Best() != scored || b.Round() != 2 {
		t.Fatalf("score=%d view=%d best=%d round=%d", b.Score(), v.score, b.Best(), b.Round())
	}
	if b.State() != StatePlaying || b.Snake() == nil || b.Apple() == nil {
		t.Fatal("retry did not create a new snake and apple")
	}
	if clock.starts != 2 || clock.maxActive != 1 {
		t.Fatalf("clock starts=%d maxActive=%d", clock.starts, clock.maxActive)
	}

	snap := b.Snapshot()
	var snakeCells int
	for _, row := range snap.Rows {
		snakeCells += strings.Count(row, "s")
	}
	if snakeCells != b.Snake().Len() {
		t.Fatalf("%d snake cells on a board with a %d-cell snake", snakeCells, b.Snake().Len())
	}
	for p, k := range v.marks {
		if k == CellSnake && b.Classify(p) != CellSnake {
			t.Fatalf("view still shows old snake at %s", p)
		}
	}
}

func TestPlacementFallsBackToScan(t *testing.T) {
	cfg := openConfig(10, 12)
	cfg.PlacementAttempts = 3
	b, err := NewBoard(cfg, WithRand(rand.New(zeroSource{})))
	if err != nil {
		t.Fatal(err)
	}
	// Every random sample lands on (0,0) for the apple and (1,1) for the
	// snake anchor; the apple takes (0,0), the snake gets the first anchor.
	if p, _ := b.Apple().Position(); p != (Position{0, 0}) {
		t.Fatalf("apple at %s", p)
	}
	want := []Position{{1, 3}, {1, 2}, {1, 1}}
	got := b.Snake().Body()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snake = %v, want %v", got, want)
		}
	}

	cfg.EdgeObstacles = true
	b, err = NewBoard(cfg, WithRand(rand.New(zeroSource{})))
	if err != nil {
		t.Fatal(err)
	}
	// With the edge ring the random sample (0,0) is a wall, so the apple
	// falls back to the first inner cell and blocks the first anchor.
	if p, _ := b.Apple().Position(); p != (Position{1, 1}) {
		t.Fatalf("apple at %s", p)
	}
	if head := b.Snake().Head(); head != (Position{2, 3}) {
		t.Fatalf("head at %s", head)
	}
}

func TestNoSpawnRoom(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 3, 10
	cfg.StaticObstacles = nil
	for y := 1; y < 9; y += 2 {
		cfg.StaticObstacles = append(cfg.StaticObstacles, Position{1, y})
	}
	_, err := NewBoard(cfg)
	if !errors.Is(err, ErrNoSpawn) {
		t.Fatalf("err = %v, want ErrNoSpawn", err)
	}
}

func TestFailedRetryClearsApple(t *testing.T) {
	v := newFakeView()
	b := mustBoard(t, DefaultConfig(), WithView(v))
	for !b.IsOver() {
		b.Tick()
	}

	// Wall off every other row so no vertical run fits a snake while the
	// apple still has room.
	b.cfg.StaticObstacles = nil
	for y := 1; y < b.cfg.Height-1; y += 2 {
		for x := 1; x < b.cfg.Width-1; x++ {
			b.cfg.StaticObstacles = append(b.cfg.StaticObstacles, Position{x, y})
		}
	}
	if err := b.Retry(); !errors.Is(err, ErrNoSpawn) {
		t.Fatalf("retry: err = %v, want ErrNoSpawn", err)
	}
	if !b.IsOver() || b.Apple() != nil || b.Snake() != nil || b.Round() != 1 {
		t.Fatalf("state=%s apple=%v snake=%v round=%d", b.State(), b.Apple(), b.Snake(), b.Round())
	}
	for i, k := range b.cells {
		if k == CellApple {
			t.Fatalf("cell %d still holds an apple", i)
		}
	}
	for p, k := range v.marks {
		if k == CellApple {
			t.Fatalf("view still shows an apple at %s", p)
		}
	}

	b.cfg.StaticObstacles = nil
	if err := b.Retry(); err != nil {
		t.Fatalf("retry with room: %v", err)
	}
	if b.Round() != 2 || b.State() != StatePlaying {
		t.Fatalf("round=%d state=%s", b.Round(), b.State())
	}
}

func TestFullBoardLeavesAppleUnplaced(t *testing.T) {
	v := newFakeView()
	b := mustBoard(t, openConfig(10, 12), WithView(v))
	placeSnake(t, b, Right, Position{2, 5}, Position{1, 5}, Position{0, 5})
	placeApple(t, b, Position{3, 5})
	for y := 0; y < 12; y++ {
		for x := 0; x < 10; x++ {
			if p := (Position{x, y}); b.IsEmpty(p) {
				b.set(p, CellObstacle)
			}
		}
	}

	if got := b.Tick(); got != CellApple {
		t.Fatalf("tick landed on %s, want apple", got)
	}
	if _, ok := b.Apple().Position(); ok {
		t.Fatal("apple placed on a full board")
	}
	if b.State() != StatePlaying || !b.Running() || b.Score() != 1 {
		t.Fatalf("state=%s running=%v score=%d", b.State(), b.Running(), b.Score())
	}
	if b.Snake().Len() != 4 {
		t.Fatalf("snake length = %d, want 4", b.Snake().Len())
	}
	if snap := b.Snapshot(); snap.Apple != nil {
		t.Fatalf("snapshot apple = %v", *snap.Apple)
	}
	for i, k := range b.cells {
		if k == CellApple {
			t.Fatalf("cell %d still holds an apple", i)
		}
	}
}

func TestConfigReturnsCopy(t *testing.T) {
	b := mustBoard(t, DefaultConfig())
	cfg := b.Config()
	cfg.StaticObstacles[0] = Position{1, 1}
	cfg.StaticObstacles = append(cfg.StaticObstacles, Position{2, 2})

	got := b.Config().StaticObstacles
	if len(got) != len(ClassicObstacles) || got[0] != ClassicObstacles[0] {
		t.Fatalf("board obstacles changed through Config: %v", got)
	}
	for !b.IsOver() {
		b.Tick()
	}
	if err := b.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if b.Classify(ClassicObstacles[0]) != CellObstacle {
		t.Fatalf("%s lost its obstacle after retry", ClassicObstacles[0])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"narrow", func(c *Config) { c.Width = 2 }, false},
		{"short", func(c *Config) { c.Height = 7 }, false},
		{"just tall enough", func(c *Config) { c.Height = 9; c.StaticObstacles = nil }, true},
		{"zero tick", func(c *Config) { c.Tick = 0 }, false},
		{"obstacle off grid", func(c *Config) { c.StaticObstacles = []Position{{25, 1}} }, false},
		{"no snake", func(c *Config) { c.SnakeLength = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
