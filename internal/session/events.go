package session

import "github.com/robalobadob/snake/internal/game"

// EventType names a single view change.
type EventType string

const (
	EventCell     EventType = "cell"
	EventScore    EventType = "score"
	EventGameOver EventType = "game_over"
)

// Event is one view change recorded while the board was mutated.
type Event struct {
	Type  EventType      `json:"type"`
	Pos   *game.Position `json:"pos,omitempty"`
	Kind  string         `json:"kind,omitempty"`
	Score *int           `json:"score,omitempty"`
}

// Frame groups the events produced by one tick or one command.
type Frame struct {
	Seq    uint64     `json:"seq"`
	Round  int        `json:"round"`
	State  game.State `json:"state"`
	Score  int        `json:"score"`
	Events []Event    `json:"events"`
}

// recorder is the game.View of a session: it buffers events until the loop
// flushes them to subscribers.
type recorder struct {
	events []Event
}

var _ game.View = (*recorder)(nil)

func (r *recorder) MarkCell(pos game.Position, kind game.CellKind) {
	p := pos
	r.events = append(r.events, Event{Type: EventCell, Pos: &p, Kind: kind.String()})
}

func (r *recorder) SetScore(n int) {
	r.events = append(r.events, Event{Type: EventScore, Score: &n})
}

func (r *recorder) ShowGameOver() {
	r.events = append(r.events, Event{Type: EventGameOver})
}

// take returns the buffered events and resets the buffer.
func (r *recorder) take() []Event {
	ev := r.events
	r.events = nil
	return ev
}
