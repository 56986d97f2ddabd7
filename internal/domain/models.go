package domain

// PlaybackState represents the current lifecycle state of the media player
type PlaybackState string

const (
	// StateIdle indicates no media has been loaded yet
	StateIdle PlaybackState = "Idle"
	// StateLoading indicates media is being loaded or buffered
	StateLoading PlaybackState = "Loading"
	// StatePlaying indicates the media is currently playing
	StatePlaying PlaybackState = "Playing"
	// StatePaused indicates the media is paused
	StatePaused PlaybackState = "Paused"
	// StateStopped indicates playback has ended or was stopped
	StateStopped PlaybackState = "Stopped"
	// StateError indicates the player hit an unrecoverable playback error
	StateError PlaybackState = "Error"
)

// Terminal reports whether the state ends a playback session.
// Only Stopped and Error terminate completion monitoring.
func (s PlaybackState) Terminal() bool {
	return s == StateStopped || s == StateError
}

// MediaItem identifies one playable entry from the catalog.
// It is immutable once loaded and replaced wholesale on the next load.
type MediaItem struct {
	// ID is the backend identifier used for stream resolution and
	// watched reporting
	ID string
	// Title is the display title
	Title string
}

// Resolution holds the video dimensions of a stream
type Resolution struct {
	Width  int
	Height int
}

// QualityOption is one selectable stream variant
type QualityOption struct {
	// Name is the display name (e.g. "1080p")
	Name string
	// URL is the stream URL for this variant
	URL string
	// RequiresTranscode is set when selecting this variant makes the
	// backend transcode instead of direct-playing
	RequiresTranscode bool
}

// Label returns the display label for the option, marking transcoded
// variants
func (q QualityOption) Label() string {
	if q.RequiresTranscode {
		return q.Name + " (Transcode)"
	}
	return q.Name
}

// StreamInfo is the resolved playback description for a media item.
// It is produced once per load by the backend; a quality switch only
// replaces the session's current URL, never the StreamInfo itself.
type StreamInfo struct {
	// URL is the resolved stream URL
	URL string
	// Resolution of the default variant
	Resolution Resolution
	// Bitrate in bits per second
	Bitrate int64
	// VideoCodec of the default variant (e.g. "h264")
	VideoCodec string
	// QualityOptions lists the selectable variants in backend order
	QualityOptions []QualityOption
}

// TrackDisabled is the reserved track index meaning "disabled/none".
// Subtitle catalogs use it as the off switch.
const TrackDisabled = -1

// Track is one audio or subtitle stream inside the loaded media
type Track struct {
	// Index is the player-assigned track index; TrackDisabled means off
	Index int
	// Name is the display name
	Name string
}

// TimeDisplayMode selects how the end label of the progress row renders.
// It cycles on user click and is shared with the position poller.
type TimeDisplayMode int

const (
	// ModeTotalDuration shows the total duration (e.g. "1:45:00")
	ModeTotalDuration TimeDisplayMode = iota
	// ModeTimeRemaining shows the remaining time (e.g. "-45:00")
	ModeTimeRemaining
	// ModeEndTime shows the wall-clock finish time (e.g. "11:45 PM")
	ModeEndTime
)

// Next returns the mode that follows in the click cycle
func (m TimeDisplayMode) Next() TimeDisplayMode {
	switch m {
	case ModeTotalDuration:
		return ModeTimeRemaining
	case ModeTimeRemaining:
		return ModeEndTime
	default:
		return ModeTotalDuration
	}
}

func (m TimeDisplayMode) String() string {
	switch m {
	case ModeTotalDuration:
		return "TotalDuration"
	case ModeTimeRemaining:
		return "TimeRemaining"
	case ModeEndTime:
		return "EndTime"
	default:
		return "Unknown"
	}
}

// WatchedThreshold is the fraction of the duration above which content
// counts as consumed when playback reaches Stopped.
const WatchedThreshold = 0.9
