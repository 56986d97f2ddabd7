package surface

import (
	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

// LogSurface is the daemon's headless control surface: every publish is
// rendered as a structured log line. Progress and label updates arrive
// twice a second, so they log at debug level.
type LogSurface struct {
	logger *zap.Logger
}

// NewLogSurface creates a surface writing to the given logger
func NewLogSurface(logger *zap.Logger) *LogSurface {
	return &LogSurface{logger: logger}
}

func (s *LogSurface) AttachVideo(target domain.RenderTarget) {
	s.logger.Info("Video attached", zap.String("target", target.ID()))
}

func (s *LogSurface) ClearVideo() {
	s.logger.Info("Video cleared")
}

func (s *LogSurface) SetTitle(title string) {
	s.logger.Info("Now playing", zap.String("title", title))
}

func (s *LogSurface) SetProgress(percent float64) {
	s.logger.Debug("Progress", zap.Float64("percent", percent))
}

func (s *LogSurface) SetPositionLabel(text string) {
	s.logger.Debug("Position", zap.String("label", text))
}

func (s *LogSurface) SetEndLabel(text string) {
	s.logger.Debug("End label", zap.String("label", text))
}

func (s *LogSurface) SetPlaying(playing bool) {
	s.logger.Info("Playback state changed", zap.Bool("playing", playing))
}

func (s *LogSurface) SetAudioTracks(tracks []domain.Track, enabled bool) {
	s.logger.Info("Audio tracks available",
		zap.Int("count", len(tracks)),
		zap.Bool("enabled", enabled))
}

func (s *LogSurface) SetSubtitleTracks(tracks []domain.Track, enabled bool) {
	s.logger.Info("Subtitle tracks available",
		zap.Int("count", len(tracks)),
		zap.Bool("enabled", enabled))
}

func (s *LogSurface) SetQualityOptions(labels []string, enabled bool) {
	s.logger.Info("Quality options available",
		zap.Strings("labels", labels),
		zap.Bool("enabled", enabled))
}

func (s *LogSurface) SetInhibited(active bool) {
	s.logger.Info("Suspend inhibition changed", zap.Bool("active", active))
}
