package domain

import (
	"context"
	"time"
)

// RenderTarget is an opaque handle the presentation layer attaches the
// video output to. The player produces one per load; the previous one is
// torn down first.
type RenderTarget interface {
	// ID identifies the target for the presentation layer (e.g. a
	// window id or socket path)
	ID() string

	// Release frees the target's resources
	Release() error
}

// Player defines the contract with the media decode/render pipeline.
// Every call is a potential suspension point; mutating calls must be
// serialized against each other by the caller (the session guards the
// handle with a reader/writer lock).
type Player interface {
	// LoadMedia loads the given stream URL without starting playback
	LoadMedia(ctx context.Context, url string) error

	// Play starts or resumes playback
	Play(ctx context.Context) error

	// Pause pauses playback
	Pause(ctx context.Context) error

	// Stop stops playback and releases the current media
	Stop(ctx context.Context) error

	// Seek jumps to an absolute position
	Seek(ctx context.Context, pos time.Duration) error

	// Position returns the current playback position, if known
	Position(ctx context.Context) (time.Duration, bool)

	// Duration returns the total media duration, if known
	Duration(ctx context.Context) (time.Duration, bool)

	// State returns the current playback state
	State(ctx context.Context) PlaybackState

	// SetVolume sets the linear volume in [0,1]
	SetVolume(ctx context.Context, volume float64) error

	// AudioTracks lists the audio tracks of the loaded media in player
	// order. Empty until the player reaches a playing-capable state.
	AudioTracks(ctx context.Context) []Track

	// SubtitleTracks lists the subtitle tracks, including the
	// TrackDisabled sentinel entry when subtitles can be switched off
	SubtitleTracks(ctx context.Context) []Track

	// CurrentAudioTrack returns the active audio track index
	CurrentAudioTrack(ctx context.Context) int

	// CurrentSubtitleTrack returns the active subtitle track index, or
	// TrackDisabled
	CurrentSubtitleTrack(ctx context.Context) int

	// SetAudioTrack switches the active audio track
	SetAudioTrack(ctx context.Context, index int) error

	// SetSubtitleTrack switches the active subtitle track; TrackDisabled
	// turns subtitles off
	SetSubtitleTrack(ctx context.Context, index int) error

	// VideoDimensions returns the source video size, if known
	VideoDimensions(ctx context.Context) (width, height int, ok bool)

	// CreateRenderTarget produces a fresh render target for the
	// presentation layer
	CreateRenderTarget() RenderTarget
}

// Backend defines the contract with the remote catalog/streaming service
type Backend interface {
	// ResolveStream resolves the playable stream for a media item
	ResolveStream(ctx context.Context, mediaID string) (*StreamInfo, error)

	// MarkWatched reports the item as watched
	MarkWatched(ctx context.Context, mediaID string) error
}

// Inhibitor manages the system suspend/idle inhibition tied to playback.
// At most one handle is outstanding; Acquire supersedes any live one.
type Inhibitor interface {
	// Acquire requests a suspend+idle inhibition tagged with reason,
	// releasing any existing handle first
	Acquire(ctx context.Context, reason string) error

	// Release drops the current handle; a no-op when none is held
	Release(ctx context.Context) error

	// Active reports whether a handle is currently live
	Active() bool
}

// ControlSurface is what the controller publishes playback state to.
// Implementations are widget toolkits or, for the daemon, a log sink;
// they must not call back into the session from these methods.
type ControlSurface interface {
	// AttachVideo hands the presentation layer a fresh render target
	AttachVideo(target RenderTarget)

	// ClearVideo tears down the current render target, if any
	ClearVideo()

	// SetTitle sets the media display title
	SetTitle(title string)

	// SetProgress publishes the progress value in [0,100]
	SetProgress(percent float64)

	// SetPositionLabel publishes the current-position label text
	SetPositionLabel(text string)

	// SetEndLabel publishes the mode-dependent end label text
	SetEndLabel(text string)

	// SetPlaying publishes the play/pause icon state
	SetPlaying(playing bool)

	// SetAudioTracks publishes the audio selector entries and whether
	// the selector is enabled
	SetAudioTracks(tracks []Track, enabled bool)

	// SetSubtitleTracks publishes the subtitle selector entries and
	// whether the selector is enabled
	SetSubtitleTracks(tracks []Track, enabled bool)

	// SetQualityOptions publishes the quality selector labels and
	// whether the selector is enabled
	SetQualityOptions(labels []string, enabled bool)

	// SetInhibited publishes the suspend-inhibition indicator
	SetInhibited(active bool)
}

// Config defines the application configuration consumed by the daemon
type Config interface {
	// AppName returns the application name used to tag OS-level
	// resources such as the suspend inhibition
	AppName() string

	// BackendURL returns the catalog server base URL
	BackendURL() string

	// APIToken returns the catalog server access token
	APIToken() string

	// PlayerSocket returns the player IPC socket path
	PlayerSocket() string
}
