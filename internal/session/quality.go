package session

import (
	"context"
	"fmt"

	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

// qualitySwitcher swaps the active stream URL while preserving the
// playback position and the play/pause intent
type qualitySwitcher struct {
	logger *zap.Logger
	guard  *guardedPlayer
}

// SwitchTo loads option's URL into the player, seeks back to the
// position held before the switch, and resumes playback if the player
// was playing. A failed load aborts the switch without rollback; a
// failed seek falls back to resuming from the start.
func (q *qualitySwitcher) SwitchTo(ctx context.Context, option domain.QualityOption) error {
	wasPlaying := q.guard.State(ctx) == domain.StatePlaying
	position, havePosition := q.guard.Position(ctx)

	if err := q.guard.LoadMedia(ctx, option.URL); err != nil {
		return fmt.Errorf("player load failed for %q: %w", option.Label(), err)
	}

	if havePosition {
		if err := q.guard.Seek(ctx, position); err != nil {
			q.logger.Warn("Failed to seek after quality switch, resuming from start",
				zap.Duration("position", position),
				zap.Error(err))
		}
	}

	if wasPlaying {
		if err := q.guard.Play(ctx); err != nil {
			q.logger.Error("Failed to resume playback after quality switch", zap.Error(err))
		}
	}

	q.logger.Info("Quality switched",
		zap.String("option", option.Label()),
		zap.Bool("resumed", wasPlaying))
	return nil
}
