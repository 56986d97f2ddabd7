package session

import (
	"context"
	"time"

	"github.com/reverie-player/reverie/internal/domain"
	"github.com/sasha-s/go-deadlock"
)

// guardedPlayer serializes access to the shared player handle. Mutating
// calls take exclusive access; reads run concurrently with each other
// but never overlap an in-flight write, so a poller tick can never
// observe a half-applied seek or load.
type guardedPlayer struct {
	mu     deadlock.RWMutex
	player domain.Player
}

func newGuardedPlayer(p domain.Player) *guardedPlayer {
	return &guardedPlayer{player: p}
}

// --- writes ---

func (g *guardedPlayer) LoadMedia(ctx context.Context, url string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.LoadMedia(ctx, url)
}

func (g *guardedPlayer) Play(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.Play(ctx)
}

func (g *guardedPlayer) Pause(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.Pause(ctx)
}

func (g *guardedPlayer) Stop(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.Stop(ctx)
}

func (g *guardedPlayer) Seek(ctx context.Context, pos time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.Seek(ctx, pos)
}

func (g *guardedPlayer) SetVolume(ctx context.Context, volume float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.SetVolume(ctx, volume)
}

func (g *guardedPlayer) SetAudioTrack(ctx context.Context, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.SetAudioTrack(ctx, index)
}

func (g *guardedPlayer) SetSubtitleTrack(ctx context.Context, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.SetSubtitleTrack(ctx, index)
}

func (g *guardedPlayer) CreateRenderTarget() domain.RenderTarget {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.player.CreateRenderTarget()
}

// --- reads ---

func (g *guardedPlayer) Position(ctx context.Context) (time.Duration, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.Position(ctx)
}

func (g *guardedPlayer) Duration(ctx context.Context) (time.Duration, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.Duration(ctx)
}

func (g *guardedPlayer) State(ctx context.Context) domain.PlaybackState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.State(ctx)
}

func (g *guardedPlayer) AudioTracks(ctx context.Context) []domain.Track {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.AudioTracks(ctx)
}

func (g *guardedPlayer) SubtitleTracks(ctx context.Context) []domain.Track {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.SubtitleTracks(ctx)
}

func (g *guardedPlayer) CurrentAudioTrack(ctx context.Context) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.CurrentAudioTrack(ctx)
}

func (g *guardedPlayer) CurrentSubtitleTrack(ctx context.Context) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.CurrentSubtitleTrack(ctx)
}

func (g *guardedPlayer) VideoDimensions(ctx context.Context) (int, int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.player.VideoDimensions(ctx)
}
