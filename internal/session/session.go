package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reverie-player/reverie/internal/backend"
	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	pollInterval       = 500 * time.Millisecond
	seekSettleDelay    = 100 * time.Millisecond
	catalogGraceDelay  = 500 * time.Millisecond
	completionGrace    = 2 * time.Second
	completionInterval = 1 * time.Second

	inhibitReason = "Playing video"
)

// PlaybackSession owns the player handle and the current media/stream
// metadata, orchestrates load/play/stop, and runs the position poller,
// completion monitor and track catalog for each loaded item.
//
// All user actions besides Load and Stop are fire-and-forget: player
// command failures are logged and the visible state is left as it was.
type PlaybackSession struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	guard    *guardedPlayer
	backends *backend.Manager
	surface  domain.ControlSurface
	inhibit  domain.Inhibitor

	gate     *seekGate
	display  *timeDisplay
	catalog  *trackCatalog
	switcher *qualitySwitcher

	mu         sync.Mutex
	item       *domain.MediaItem
	info       *domain.StreamInfo
	currentURL string
	cancelTask context.CancelFunc
}

// NewPlaybackSession creates the session controller. A nil clock
// defaults to the real clock.
func NewPlaybackSession(
	logger *zap.Logger,
	clock clockwork.Clock,
	player domain.Player,
	backends *backend.Manager,
	surface domain.ControlSurface,
	inhibit domain.Inhibitor,
) *PlaybackSession {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	guard := newGuardedPlayer(player)
	return &PlaybackSession{
		logger:   logger,
		clock:    clock,
		guard:    guard,
		backends: backends,
		surface:  surface,
		inhibit:  inhibit,
		gate:     newSeekGate(clock),
		display:  &timeDisplay{},
		catalog:  newTrackCatalog(logger, guard, surface),
		switcher: &qualitySwitcher{logger: logger, guard: guard},
	}
}

// Load resolves a stream for the item, starts playback and spawns the
// session's supervisory tasks. On a backend failure no player state is
// mutated and the session keeps whatever it was playing before.
func (s *PlaybackSession) Load(ctx context.Context, item domain.MediaItem) error {
	s.logger.Info("Loading media", zap.String("id", item.ID), zap.String("title", item.Title))

	backendID, be := s.backends.Active()
	if be == nil {
		return domain.ErrBackendUnavailable
	}

	info, err := be.ResolveStream(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStreamResolutionFailed, err)
	}
	s.logger.Debug("Stream resolved",
		zap.String("backend", backendID),
		zap.String("codec", info.VideoCodec),
		zap.Int("width", info.Resolution.Width),
		zap.Int("height", info.Resolution.Height),
		zap.Int64("bitrate", info.Bitrate))

	// The previous load's tasks must not keep polling the handle we are
	// about to repoint
	s.stopTasks()

	s.surface.ClearVideo()
	s.surface.AttachVideo(s.guard.CreateRenderTarget())

	if err := s.guard.LoadMedia(ctx, info.URL); err != nil {
		return fmt.Errorf("player load failed: %w", err)
	}

	s.mu.Lock()
	itemCopy := item
	s.item = &itemCopy
	s.info = info
	s.currentURL = info.URL
	s.mu.Unlock()

	s.surface.SetTitle(item.Title)
	s.publishQualityOptions(info)

	if err := s.guard.Play(ctx); err != nil {
		return fmt.Errorf("player play failed: %w", err)
	}
	s.surface.SetPlaying(true)

	if err := s.inhibit.Acquire(ctx, inhibitReason); err != nil {
		s.logger.Warn("Failed to inhibit system suspend", zap.Error(err))
	} else {
		s.surface.SetInhibited(true)
	}

	taskCtx := s.startTasks()

	// Track discovery needs the player in a playing state; give it a
	// moment before reading the lists
	go s.populateCatalogAfterGrace(taskCtx)

	poller := &positionPoller{
		logger:   s.logger,
		clock:    s.clock,
		guard:    s.guard,
		surface:  s.surface,
		gate:     s.gate,
		display:  s.display,
		interval: pollInterval,
	}
	go poller.Run(taskCtx)

	monitor := &completionMonitor{
		logger:   s.logger,
		clock:    s.clock,
		guard:    s.guard,
		backend:  be,
		mediaID:  item.ID,
		title:    item.Title,
		grace:    completionGrace,
		interval: completionInterval,
	}
	go monitor.Run(taskCtx)

	s.logger.Info("Media loaded", zap.String("title", item.Title))
	return nil
}

// Stop halts playback, releases the suspend inhibition and cancels the
// session's tasks. MediaItem/StreamInfo stay in place so a late
// completion read still has its bookkeeping.
func (s *PlaybackSession) Stop(ctx context.Context) error {
	var errs error

	if err := s.guard.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop player", zap.Error(err))
		errs = multierr.Append(errs, err)
	}
	if err := s.inhibit.Release(ctx); err != nil {
		s.logger.Error("Failed to release suspend inhibition", zap.Error(err))
		errs = multierr.Append(errs, err)
	}

	s.surface.SetInhibited(false)
	s.surface.SetPlaying(false)
	s.stopTasks()

	s.logger.Info("Playback stopped")
	return errs
}

// TogglePlayback flips between playing and paused, moving the suspend
// inhibition with it. On a player failure the visible state is left
// untouched.
func (s *PlaybackSession) TogglePlayback(ctx context.Context) {
	if s.guard.State(ctx) == domain.StatePlaying {
		if err := s.guard.Pause(ctx); err != nil {
			s.logger.Error("Failed to pause", zap.Error(err))
			return
		}
		s.surface.SetPlaying(false)
		if err := s.inhibit.Release(ctx); err != nil {
			s.logger.Warn("Failed to release suspend inhibition", zap.Error(err))
		}
		s.surface.SetInhibited(false)
		return
	}

	if err := s.guard.Play(ctx); err != nil {
		s.logger.Error("Failed to play", zap.Error(err))
		return
	}
	s.surface.SetPlaying(true)
	if err := s.inhibit.Acquire(ctx, inhibitReason); err != nil {
		s.logger.Warn("Failed to inhibit system suspend", zap.Error(err))
		return
	}
	s.surface.SetInhibited(true)
}

// SeekToFraction handles a drag on the progress bar: value is the
// slider position in [0,100]. The seek gate stays raised until the
// settle delay elapses after the seek command returns.
func (s *PlaybackSession) SeekToFraction(ctx context.Context, value float64) {
	s.gate.Begin()
	defer s.gate.SettleAfter(seekSettleDelay)

	duration, ok := s.guard.Duration(ctx)
	if !ok {
		return
	}

	target := time.Duration(value / 100 * duration.Seconds() * float64(time.Second))
	if err := s.guard.Seek(ctx, target); err != nil {
		s.logger.Error("Failed to seek", zap.Duration("target", target), zap.Error(err))
	}
}

// SeekBy jumps relative to the current position (rewind/forward
// buttons and arrow keys), clamping at the start
func (s *PlaybackSession) SeekBy(ctx context.Context, delta time.Duration) {
	position, ok := s.guard.Position(ctx)
	if !ok {
		return
	}

	target := position + delta
	if target < 0 {
		target = 0
	}
	if err := s.guard.Seek(ctx, target); err != nil {
		s.logger.Error("Failed to seek", zap.Duration("target", target), zap.Error(err))
	}
}

// SetVolume forwards the volume slider value in [0,1]
func (s *PlaybackSession) SetVolume(ctx context.Context, volume float64) {
	if err := s.guard.SetVolume(ctx, volume); err != nil {
		s.logger.Error("Failed to set volume", zap.Float64("volume", volume), zap.Error(err))
	}
}

// CycleTimeDisplay advances the end-label display mode
func (s *PlaybackSession) CycleTimeDisplay() domain.TimeDisplayMode {
	mode := s.display.Cycle()
	s.logger.Debug("Time display mode changed", zap.Stringer("mode", mode))
	return mode
}

// PopulateTracks rebuilds the track catalog from the player's current
// lists. Safe to call at any time; before the player is playing it
// yields an empty, disabled catalog.
func (s *PlaybackSession) PopulateTracks(ctx context.Context) {
	s.catalog.Populate(ctx)
}

// SelectAudioTrack activates the registered audio track command
func (s *PlaybackSession) SelectAudioTrack(ctx context.Context, index int) {
	s.catalog.SelectAudio(ctx, index)
}

// SelectSubtitleTrack activates the registered subtitle track command;
// domain.TrackDisabled turns subtitles off
func (s *PlaybackSession) SelectSubtitleTrack(ctx context.Context, index int) {
	s.catalog.SelectSubtitle(ctx, index)
}

// SwitchQuality swaps the active stream to the given option, keeping
// position and play/pause intent. The error is surfaced for the quality
// selector to revert its visible selection; the player is left wherever
// the failed load put it.
func (s *PlaybackSession) SwitchQuality(ctx context.Context, option domain.QualityOption) error {
	if err := s.switcher.SwitchTo(ctx, option); err != nil {
		s.logger.Error("Quality switch failed", zap.String("option", option.Label()), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.currentURL = option.URL
	s.mu.Unlock()
	return nil
}

// VideoDimensions reports the source video size, if the player knows it
func (s *PlaybackSession) VideoDimensions(ctx context.Context) (int, int, bool) {
	return s.guard.VideoDimensions(ctx)
}

// Current returns the loaded item and stream info, or ok=false when
// nothing has been loaded yet
func (s *PlaybackSession) Current() (domain.MediaItem, *domain.StreamInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.item == nil {
		return domain.MediaItem{}, nil, false
	}
	return *s.item, s.info, true
}

// CurrentURL returns the session-local stream URL, which a quality
// switch replaces without touching StreamInfo
func (s *PlaybackSession) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

func (s *PlaybackSession) publishQualityOptions(info *domain.StreamInfo) {
	labels := make([]string, 0, len(info.QualityOptions))
	for _, option := range info.QualityOptions {
		labels = append(labels, option.Label())
	}

	if len(labels) == 0 {
		// Nothing to switch to; show the current quality only
		labels = append(labels, fmt.Sprintf("%dp", info.Resolution.Height))
		s.surface.SetQualityOptions(labels, false)
		return
	}
	s.surface.SetQualityOptions(labels, true)
}

func (s *PlaybackSession) populateCatalogAfterGrace(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-s.clock.After(catalogGraceDelay):
	}
	s.catalog.Populate(ctx)
}

// startTasks replaces the session task context, cancelling the previous
// one, and returns the new context for this load's tasks. Task contexts
// are detached from the Load call's context because the tasks outlive it.
func (s *PlaybackSession) startTasks() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	prev := s.cancelTask
	s.cancelTask = cancel
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return ctx
}

func (s *PlaybackSession) stopTasks() {
	s.mu.Lock()
	cancel := s.cancelTask
	s.cancelTask = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
