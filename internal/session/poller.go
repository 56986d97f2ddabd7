package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

// timeDisplay holds the end-label display mode shared between the
// poller and the user's click handler
type timeDisplay struct {
	mu   sync.Mutex
	mode domain.TimeDisplayMode
}

// Cycle advances to the next display mode and returns it
func (t *timeDisplay) Cycle() domain.TimeDisplayMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = t.mode.Next()
	return t.mode
}

// Current returns the active display mode
func (t *timeDisplay) Current() domain.TimeDisplayMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// positionPoller periodically reads position/duration from the player
// and renders the time/progress display. Progress writes are suppressed
// while the seek gate is raised; the position label is always published.
type positionPoller struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	guard    *guardedPlayer
	surface  domain.ControlSurface
	gate     *seekGate
	display  *timeDisplay
	interval time.Duration
}

// Run ticks until ctx is cancelled
func (p *positionPoller) Run(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug("Position poller started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Position poller stopped")
			return
		case <-ticker.Chan():
			p.tick(ctx)
		}
	}
}

func (p *positionPoller) tick(ctx context.Context) {
	seeking := p.gate.Seeking()

	position, okPos := p.guard.Position(ctx)
	duration, okDur := p.guard.Duration(ctx)
	if !okPos || !okDur || duration <= 0 {
		return
	}

	// The progress bar belongs to the user while they drag it
	if !seeking {
		p.surface.SetProgress(position.Seconds() / duration.Seconds() * 100)
	}

	p.surface.SetPositionLabel(FormatDuration(position))
	p.surface.SetEndLabel(endLabel(p.display.Current(), position, duration, p.clock.Now()))
}
