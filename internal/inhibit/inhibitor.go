package inhibit

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// SuspendInhibitor holds at most one system suspend/idle inhibition.
// Acquire supersedes any live handle; Release without one is a no-op.
type SuspendInhibitor struct {
	logger *zap.Logger
	conn   DBusClient
	who    string

	mu     sync.Mutex
	cookie uint32
	held   bool
}

// NewSuspendInhibitor creates an inhibitor tagging requests with the
// given application name
func NewSuspendInhibitor(logger *zap.Logger, conn DBusClient, appName string) *SuspendInhibitor {
	return &SuspendInhibitor{
		logger: logger,
		conn:   conn,
		who:    appName,
	}
}

// Acquire requests a suspend+idle inhibition tagged with reason,
// releasing any existing handle first
func (s *SuspendInhibitor) Acquire(ctx context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(); err != nil {
		// The stale cookie is gone either way; log and carry on
		s.logger.Warn("Failed to release previous inhibition", zap.Error(err))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	cookie, err := s.conn.Inhibit(s.who, reason)
	if err != nil {
		return fmt.Errorf("inhibit request failed: %w", err)
	}

	s.cookie = cookie
	s.held = true
	s.logger.Info("Inhibited system suspend/idle",
		zap.Uint32("cookie", cookie),
		zap.String("reason", reason))
	return nil
}

// Release drops the current handle; a no-op when none is held
func (s *SuspendInhibitor) Release(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked()
}

// Active reports whether a handle is currently live
func (s *SuspendInhibitor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

func (s *SuspendInhibitor) releaseLocked() error {
	if !s.held {
		return nil
	}

	cookie := s.cookie
	s.held = false
	s.cookie = 0

	if err := s.conn.UnInhibit(cookie); err != nil {
		return fmt.Errorf("uninhibit request failed: %w", err)
	}
	s.logger.Info("Removed system suspend/idle inhibition", zap.Uint32("cookie", cookie))
	return nil
}
