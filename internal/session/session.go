// internal/session/session.go
//
// A Session runs one Board on its own goroutine.
// Responsibilities:
//   - Own the Board exclusively: ticks, key presses and snapshot queries are
//     all executed by the session loop, one at a time.
//   - Drive Board.Tick from a time.Ticker that the Board starts and stops.
//   - Collect view events and fan them out as Frames to subscribers.
//
// Notes:
//   - A slow subscriber is dropped (its channel closed) instead of delaying
//     the next tick.
//   - Close stops the loop and the ticker; it is safe to call more than once.

package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/game"
	"github.com/robalobadob/snake/internal/input"
)

// ErrClosed is returned by calls on a session whose loop has exited.
var ErrClosed = errors.New("session closed")

const subscriberBuffer = 64

// Session is a single-player game bound to one goroutine.
type Session struct {
	ID        string
	Seed      int64
	CreatedAt time.Time

	board *game.Board
	clock *tickerClock
	rec   *recorder
	log   zerolog.Logger

	cmds     chan func()
	subs     map[int]chan Frame
	nextSub  int
	seq      uint64
	lastSeen atomic.Int64
	watchers atomic.Int32

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New builds the board for cfg with a random source seeded by seed and
// starts the session loop. The loop ends when ctx is cancelled or Close is
// called.
func New(ctx context.Context, id string, cfg game.Config, seed int64) (*Session, error) {
	s := &Session{
		ID:        id,
		Seed:      seed,
		CreatedAt: time.Now(),
		clock:     &tickerClock{},
		rec:       &recorder{},
		log:       log.With().Str("gameId", id).Logger(),
		cmds:      make(chan func()),
		subs:      make(map[int]chan Frame),
		done:      make(chan struct{}),
	}
	b, err := game.NewBoard(cfg,
		game.WithView(s.rec),
		game.WithClock(s.clock),
		game.WithRand(rand.New(rand.NewSource(seed))),
	)
	if err != nil {
		return nil, err
	}
	s.board = b
	s.rec.take() // the initial paint is served by Snapshot
	s.touch()

	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)

	s.log.Info().Int64("seed", seed).Int("width", cfg.Width).Int("height", cfg.Height).Msg("round started")
	return s, nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.cmds:
			fn()
			s.flush()
		case <-s.clock.C():
			s.tick()
			s.flush()
		}
	}
}

func (s *Session) tick() {
	kind := s.board.Tick()
	if s.board.IsOver() {
		s.log.Info().
			Str("hit", kind.String()).
			Int("score", s.board.Score()).
			Int("round", s.board.Round()).
			Msg("game over")
	}
}

// flush sends buffered view events as one frame.
func (s *Session) flush() {
	events := s.rec.take()
	if len(events) == 0 {
		return
	}
	s.seq++
	f := Frame{
		Seq:    s.seq,
		Round:  s.board.Round(),
		State:  s.board.State(),
		Score:  s.board.Score(),
		Events: events,
	}
	for id, ch := range s.subs {
		select {
		case ch <- f:
		default:
			s.log.Warn().Int("subscriber", id).Msg("dropping slow subscriber")
			s.unsubscribe(id)
		}
	}
}

func (s *Session) unsubscribe(id int) {
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
		s.watchers.Add(-1)
	}
}

func (s *Session) shutdown() {
	s.board.Stop()
	for id := range s.subs {
		s.unsubscribe(id)
	}
	s.log.Debug().Msg("session stopped")
}

// exec runs fn on the session loop and waits for it to finish.
func (s *Session) exec(fn func()) error {
	finished := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrClosed
	}
	<-finished
	return nil
}

func (s *Session) touch() { s.lastSeen.Store(time.Now().UnixNano()) }

// Press dispatches a mapped key action to the board and reports whether it
// was accepted. A retry that cannot start a round returns the board's error;
// ErrClosed means the session has stopped.
func (s *Session) Press(a input.Action) (bool, error) {
	s.touch()
	var (
		handled bool
		perr    error
	)
	err := s.exec(func() {
		wasOver := s.board.IsOver()
		handled, perr = input.Dispatch(s.board, a)
		switch {
		case perr != nil:
			s.log.Warn().Err(perr).Int("round", s.board.Round()).Msg("retry failed")
		case wasOver && handled:
			s.log.Info().Int("round", s.board.Round()).Msg("retry")
		}
	})
	if err != nil {
		return false, err
	}
	return handled, perr
}

// Snapshot returns a copy of the board.
func (s *Session) Snapshot() (game.Snapshot, error) {
	s.touch()
	var snap game.Snapshot
	err := s.exec(func() { snap = s.board.Snapshot() })
	return snap, err
}

// Subscribe returns the current snapshot together with a channel of every
// frame produced after it. The channel is closed when the session stops,
// when cancel is called, or when the subscriber falls behind.
func (s *Session) Subscribe() (snap game.Snapshot, frames <-chan Frame, cancel func(), err error) {
	s.touch()
	var (
		id int
		ch = make(chan Frame, subscriberBuffer)
	)
	err = s.exec(func() {
		snap = s.board.Snapshot()
		id = s.nextSub
		s.nextSub++
		s.subs[id] = ch
		s.watchers.Add(1)
	})
	if err != nil {
		return game.Snapshot{}, nil, func() {}, err
	}
	cancel = func() {
		s.touch()
		_ = s.exec(func() { s.unsubscribe(id) })
	}
	return snap, ch, cancel, nil
}

// Expired reports whether nobody has used the session for ttl and no
// subscriber is attached.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if s.watchers.Load() > 0 {
		return false
	}
	return now.Sub(time.Unix(0, s.lastSeen.Load())) > ttl
}

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close stops the loop and waits for it to exit.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
	})
	<-s.done
}
