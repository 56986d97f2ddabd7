package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reverie-player/reverie/internal/backend"
	"github.com/reverie-player/reverie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sessionFixture struct {
	session   *PlaybackSession
	clock     *clockwork.FakeClock
	player    *fakePlayer
	surface   *fakeSurface
	inhibitor *fakeInhibitor
	backend   *fakeBackend
	backends  *backend.Manager
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	clk := clockwork.NewFakeClockAt(time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC))
	player := newFakePlayer()
	surface := newFakeSurface()
	inhibitor := &fakeInhibitor{}
	be := &fakeBackend{
		info: &domain.StreamInfo{
			URL:        "http://host/stream",
			Resolution: domain.Resolution{Width: 1920, Height: 1080},
			Bitrate:    8_000_000,
			VideoCodec: "h264",
			QualityOptions: []domain.QualityOption{
				{Name: "1080p", URL: "http://host/stream"},
				{Name: "720p", URL: "http://host/stream-720", RequiresTranscode: true},
			},
		},
	}

	backends := backend.NewManager(zap.NewNop())
	backends.Register("test", be)
	require.NoError(t, backends.SetActive("test"))

	s := NewPlaybackSession(zap.NewNop(), clk, player, backends, surface, inhibitor)
	t.Cleanup(s.stopTasks)

	return &sessionFixture{
		session:   s,
		clock:     clk,
		player:    player,
		surface:   surface,
		inhibitor: inhibitor,
		backend:   be,
		backends:  backends,
	}
}

func TestLoadStartsPlayback(t *testing.T) {
	f := newSessionFixture(t)
	item := domain.MediaItem{ID: "item-1", Title: "Some Film"}

	require.NoError(t, f.session.Load(context.Background(), item))

	assert.Equal(t, []string{"http://host/stream"}, f.player.loadedURLs)
	assert.Contains(t, f.player.recordedCalls(), "play")

	// Video surface is repointed before the load reaches the player
	events := f.surface.recordedEvents()
	clear := indexOf(events, "ClearVideo")
	attach := indexOf(events, "AttachVideo")
	require.GreaterOrEqual(t, clear, 0)
	require.Greater(t, attach, clear)

	assert.Equal(t, []string{"Some Film"}, f.surface.titles)
	assert.Equal(t, []bool{true}, f.surface.playing)
	assert.Equal(t, []string{"1080p", "720p (Transcode)"}, f.surface.quality)
	assert.True(t, f.surface.qualityOn)
	assert.True(t, f.inhibitor.Active())
	assert.Equal(t, []bool{true}, f.surface.inhibited)

	current, info, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, item, current)
	assert.Equal(t, "h264", info.VideoCodec)
	assert.Equal(t, "http://host/stream", f.session.CurrentURL())
}

func TestLoadWithoutActiveBackend(t *testing.T) {
	f := newSessionFixture(t)
	f.session.backends = backend.NewManager(zap.NewNop())

	err := f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"})
	require.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Empty(t, f.player.recordedCalls())
}

func TestLoadResolveFailureLeavesSessionUntouched(t *testing.T) {
	f := newSessionFixture(t)
	f.backend.resolveErr = errors.New("connection refused")

	err := f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"})
	require.ErrorIs(t, err, domain.ErrStreamResolutionFailed)

	assert.Empty(t, f.player.recordedCalls())
	_, _, ok := f.session.Current()
	assert.False(t, ok)
}

func TestLoadPlayerFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.player.loadErr = errors.New("ipc broken")

	err := f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"})
	require.Error(t, err)

	assert.Empty(t, f.surface.playing)
	assert.False(t, f.inhibitor.Active())
	_, _, ok := f.session.Current()
	assert.False(t, ok)
}

func TestStopRetainsCurrentItem(t *testing.T) {
	f := newSessionFixture(t)
	item := domain.MediaItem{ID: "item-1", Title: "Some Film"}
	require.NoError(t, f.session.Load(context.Background(), item))

	require.NoError(t, f.session.Stop(context.Background()))

	assert.Contains(t, f.player.recordedCalls(), "stop")
	assert.False(t, f.inhibitor.Active())
	assert.Equal(t, false, f.surface.playing[len(f.surface.playing)-1])
	assert.Equal(t, false, f.surface.inhibited[len(f.surface.inhibited)-1])

	// Bookkeeping survives the stop so a late completion read still works
	current, _, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, item, current)
}

func TestStopCombinesErrors(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))

	f.player.stopErr = errors.New("stop failed")
	f.inhibitor.err = errors.New("bus gone")

	err := f.session.Stop(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "stop failed")
	assert.ErrorContains(t, err, "bus gone")
}

func TestTogglePlaybackMovesInhibition(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))
	require.True(t, f.inhibitor.Active())

	f.session.TogglePlayback(context.Background())
	assert.Equal(t, domain.StatePaused, f.player.state)
	assert.False(t, f.inhibitor.Active())
	assert.Equal(t, false, f.surface.playing[len(f.surface.playing)-1])

	f.session.TogglePlayback(context.Background())
	assert.Equal(t, domain.StatePlaying, f.player.state)
	assert.True(t, f.inhibitor.Active())
	assert.Equal(t, true, f.surface.playing[len(f.surface.playing)-1])
}

func TestTogglePlaybackPauseFailureLeavesStateUntouched(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))

	f.player.pauseErr = errors.New("no reply")
	playingBefore := len(f.surface.playing)

	f.session.TogglePlayback(context.Background())

	assert.Len(t, f.surface.playing, playingBefore)
	assert.True(t, f.inhibitor.Active())
}

func TestSeekToFraction(t *testing.T) {
	f := newSessionFixture(t)
	f.player.setTimes(0, 200*time.Second)

	f.session.SeekToFraction(context.Background(), 25)

	require.Equal(t, []time.Duration{50 * time.Second}, f.player.seeks)
	assert.True(t, f.session.gate.Seeking())

	f.clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { return !f.session.gate.Seeking() },
		2*time.Second, 10*time.Millisecond)
}

func TestSeekToFractionWithoutDuration(t *testing.T) {
	f := newSessionFixture(t)

	f.session.SeekToFraction(context.Background(), 50)
	assert.Empty(t, f.player.seeks)
}

func TestSeekByClampsAtZero(t *testing.T) {
	f := newSessionFixture(t)
	f.player.setTimes(5*time.Second, 200*time.Second)

	f.session.SeekBy(context.Background(), -10*time.Second)
	require.Equal(t, []time.Duration{0}, f.player.seeks)

	f.session.SeekBy(context.Background(), 30*time.Second)
	require.Equal(t, []time.Duration{0, 30 * time.Second}, f.player.seeks)
}

func TestSwitchQualityUpdatesCurrentURL(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))

	option := domain.QualityOption{Name: "720p", URL: "http://host/stream-720"}
	require.NoError(t, f.session.SwitchQuality(context.Background(), option))
	assert.Equal(t, "http://host/stream-720", f.session.CurrentURL())

	// StreamInfo keeps describing the originally resolved stream
	_, info, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, "http://host/stream", info.URL)
}

func TestSwitchQualityFailureKeepsCurrentURL(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))

	f.player.loadErr = errors.New("ipc broken")
	err := f.session.SwitchQuality(context.Background(), domain.QualityOption{
		Name: "720p", URL: "http://host/stream-720",
	})
	require.Error(t, err)
	assert.Equal(t, "http://host/stream", f.session.CurrentURL())
}

func TestLoadWithoutQualityOptions(t *testing.T) {
	f := newSessionFixture(t)
	f.backend.info.QualityOptions = nil

	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))

	assert.Equal(t, []string{"1080p"}, f.surface.quality)
	assert.False(t, f.surface.qualityOn)
}

func TestLoadReplacesPreviousTasks(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-1"}))
	require.NoError(t, f.session.Load(context.Background(), domain.MediaItem{ID: "item-2"}))

	assert.Equal(t, []string{"http://host/stream", "http://host/stream"}, f.player.loadedURLs)
	assert.Equal(t, 2, f.inhibitor.acquires)
	assert.Equal(t, 2, f.surface.cleared)
	assert.Equal(t, 2, f.surface.attached)

	current, _, ok := f.session.Current()
	require.True(t, ok)
	assert.Equal(t, "item-2", current.ID)
}

func TestCycleTimeDisplay(t *testing.T) {
	f := newSessionFixture(t)

	assert.Equal(t, domain.ModeTimeRemaining, f.session.CycleTimeDisplay())
	assert.Equal(t, domain.ModeEndTime, f.session.CycleTimeDisplay())
	assert.Equal(t, domain.ModeTotalDuration, f.session.CycleTimeDisplay())
}

func indexOf(events []string, name string) int {
	for i, e := range events {
		if e == name {
			return i
		}
	}
	return -1
}
