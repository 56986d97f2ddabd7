package session

import (
	"context"
	"sync"

	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

type trackCommand func(ctx context.Context) error

// trackCatalog enumerates the player's audio/subtitle tracks and keeps
// one registered command per track index. Each Populate rebuilds the
// command maps wholesale, so re-population is idempotent. Populating
// before the player reaches a playing-capable state yields an empty,
// disabled catalog, which is a correct outcome.
type trackCatalog struct {
	logger  *zap.Logger
	guard   *guardedPlayer
	surface domain.ControlSurface

	mu        sync.RWMutex
	audio     map[int]trackCommand
	subtitles map[int]trackCommand
}

func newTrackCatalog(logger *zap.Logger, guard *guardedPlayer, surface domain.ControlSurface) *trackCatalog {
	return &trackCatalog{
		logger:    logger,
		guard:     guard,
		surface:   surface,
		audio:     make(map[int]trackCommand),
		subtitles: make(map[int]trackCommand),
	}
}

// Populate reads both track lists from the player, registers a command
// per entry, and publishes the selector contents
func (c *trackCatalog) Populate(ctx context.Context) {
	audioTracks := c.guard.AudioTracks(ctx)
	subtitleTracks := c.guard.SubtitleTracks(ctx)

	audioCommands := make(map[int]trackCommand, len(audioTracks))
	for _, track := range audioTracks {
		index := track.Index
		audioCommands[index] = func(ctx context.Context) error {
			return c.guard.SetAudioTrack(ctx, index)
		}
	}

	// A catalog holding only the disabled sentinel has nothing to offer
	subtitlesUsable := len(subtitleTracks) > 0 &&
		!(len(subtitleTracks) == 1 && subtitleTracks[0].Index == domain.TrackDisabled)
	if !subtitlesUsable {
		subtitleTracks = nil
	}

	subtitleCommands := make(map[int]trackCommand, len(subtitleTracks))
	for _, track := range subtitleTracks {
		index := track.Index
		subtitleCommands[index] = func(ctx context.Context) error {
			return c.guard.SetSubtitleTrack(ctx, index)
		}
	}

	c.mu.Lock()
	c.audio = audioCommands
	c.subtitles = subtitleCommands
	c.mu.Unlock()

	c.surface.SetAudioTracks(audioTracks, len(audioTracks) > 0)
	c.surface.SetSubtitleTracks(subtitleTracks, subtitlesUsable)

	c.logger.Debug("Track catalog populated",
		zap.Int("audioTracks", len(audioTracks)),
		zap.Int("subtitleTracks", len(subtitleTracks)))
}

// SelectAudio dispatches the registered command for the given audio
// track index. Failures are logged, never propagated.
func (c *trackCatalog) SelectAudio(ctx context.Context, index int) {
	c.mu.RLock()
	cmd, ok := c.audio[index]
	c.mu.RUnlock()

	if !ok {
		c.logger.Warn("No audio track registered for index", zap.Int("index", index))
		return
	}
	if err := cmd(ctx); err != nil {
		c.logger.Error("Failed to set audio track", zap.Int("index", index), zap.Error(err))
	}
}

// SelectSubtitle dispatches the registered command for the given
// subtitle track index; domain.TrackDisabled turns subtitles off
func (c *trackCatalog) SelectSubtitle(ctx context.Context, index int) {
	c.mu.RLock()
	cmd, ok := c.subtitles[index]
	c.mu.RUnlock()

	if !ok {
		c.logger.Warn("No subtitle track registered for index", zap.Int("index", index))
		return
	}
	if err := cmd(ctx); err != nil {
		c.logger.Error("Failed to set subtitle track", zap.Int("index", index), zap.Error(err))
	}
}
