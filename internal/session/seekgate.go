package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// seekGate suppresses periodic progress writes while a user seek is in
// flight. Begin raises the flag before the seek command is issued;
// SettleAfter lowers it once a settle delay has elapsed, absorbing any
// poller tick that raced the seek. A newer Begin invalidates pending
// settles, so overlapping seeks never clear the flag early.
type seekGate struct {
	clock clockwork.Clock

	mu      sync.Mutex
	seeking bool
	gen     uint64
}

func newSeekGate(clock clockwork.Clock) *seekGate {
	return &seekGate{clock: clock}
}

// Begin raises the seeking flag
func (g *seekGate) Begin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seeking = true
	g.gen++
}

// Seeking reports whether a seek is currently in flight
func (g *seekGate) Seeking() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seeking
}

// SettleAfter schedules the flag to clear once d has elapsed, unless a
// newer seek began in the meantime
func (g *seekGate) SettleAfter(d time.Duration) {
	g.mu.Lock()
	gen := g.gen
	g.mu.Unlock()

	g.clock.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.gen == gen {
			g.seeking = false
		}
	})
}
