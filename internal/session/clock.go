package session

import "time"

// tickerClock is the game.Clock of a session. Its channel is read only by
// the session loop; a nil channel blocks forever, which is how a stopped
// round stops producing ticks.
type tickerClock struct {
	t *time.Ticker
}

func (c *tickerClock) Start(d time.Duration) {
	c.Stop()
	c.t = time.NewTicker(d)
}

func (c *tickerClock) Stop() {
	if c.t != nil {
		c.t.Stop()
		c.t = nil
	}
}

func (c *tickerClock) C() <-chan time.Time {
	if c.t == nil {
		return nil
	}
	return c.t.C
}
