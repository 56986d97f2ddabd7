package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

// completionMonitor supervises one loaded item until playback reaches a
// terminal state. On Stopped it applies the watched-threshold heuristic
// and notifies the backend at most once; on Error it just exits.
type completionMonitor struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	guard    *guardedPlayer
	backend  domain.Backend
	mediaID  string
	title    string
	grace    time.Duration
	interval time.Duration
}

// Run blocks until a terminal state is observed or ctx is cancelled
func (m *completionMonitor) Run(ctx context.Context) {
	// Give playback a moment to actually start
	select {
	case <-ctx.Done():
		return
	case <-m.clock.After(m.grace):
	}

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Completion monitor cancelled", zap.String("mediaID", m.mediaID))
			return
		case <-ticker.Chan():
			switch m.guard.State(ctx) {
			case domain.StateStopped:
				m.reportIfWatched(ctx)
				return
			case domain.StateError:
				m.logger.Debug("Completion monitor exiting on player error",
					zap.String("mediaID", m.mediaID))
				return
			}
		}
	}
}

func (m *completionMonitor) reportIfWatched(ctx context.Context) {
	position, okPos := m.guard.Position(ctx)
	duration, okDur := m.guard.Duration(ctx)
	if !okPos || !okDur || duration <= 0 {
		return
	}

	watched := position.Seconds() / duration.Seconds()
	if watched <= domain.WatchedThreshold {
		return
	}

	m.logger.Info("Marking item as watched",
		zap.String("title", m.title),
		zap.Int("percent", int(watched*100)))

	if err := m.backend.MarkWatched(ctx, m.mediaID); err != nil {
		m.logger.Error("Failed to mark as watched",
			zap.String("mediaID", m.mediaID),
			zap.Error(err))
	}
}
