package session

import (
	"fmt"
	"time"

	"github.com/reverie-player/reverie/internal/domain"
)

// FormatDuration renders a playback duration as M:SS, or H:MM:SS once
// it reaches an hour
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// endLabel renders the right-hand time label for the given display mode.
// now is only consulted for ModeEndTime.
func endLabel(mode domain.TimeDisplayMode, position, duration time.Duration, now time.Time) string {
	switch mode {
	case domain.ModeTimeRemaining:
		remaining := duration - position
		if remaining < 0 {
			remaining = 0
		}
		return "-" + FormatDuration(remaining)
	case domain.ModeEndTime:
		remaining := duration - position
		if remaining < 0 {
			remaining = 0
		}
		return now.Add(remaining).Format("3:04 PM")
	default:
		return FormatDuration(duration)
	}
}
