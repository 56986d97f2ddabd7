package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/reverie-player/reverie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMonitor(clk clockwork.Clock, player *fakePlayer, be *fakeBackend) *completionMonitor {
	return &completionMonitor{
		logger:   zap.NewNop(),
		clock:    clk,
		guard:    newGuardedPlayer(player),
		backend:  be,
		mediaID:  "item-1",
		title:    "Some Film",
		grace:    2 * time.Second,
		interval: time.Second,
	}
}

func startMonitor(m *completionMonitor) (context.CancelFunc, chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	return cancel, done
}

func waitForDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not exit")
	}
}

func TestCompletionMonitorMarksWatchedPastThreshold(t *testing.T) {
	clk := clockwork.NewFakeClock()
	player := newFakePlayer()
	player.stateObserved = make(chan struct{}, 1)
	player.setState(domain.StatePlaying)
	player.setTimes(50*time.Second, 100*time.Second)
	be := &fakeBackend{}

	m := newTestMonitor(clk, player, be)
	cancel, done := startMonitor(m)
	defer cancel()

	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)

	clk.BlockUntil(1)
	clk.Advance(time.Second)
	<-player.stateObserved

	player.setTimes(95*time.Second, 100*time.Second)
	player.setState(domain.StateStopped)
	clk.BlockUntil(1)
	clk.Advance(time.Second)

	waitForDone(t, done)
	assert.Equal(t, []string{"item-1"}, be.watchedIDs())
}

func TestCompletionMonitorSkipsBelowThreshold(t *testing.T) {
	clk := clockwork.NewFakeClock()
	player := newFakePlayer()
	player.setState(domain.StateStopped)
	player.setTimes(89*time.Second+900*time.Millisecond, 100*time.Second)
	be := &fakeBackend{}

	m := newTestMonitor(clk, player, be)
	cancel, done := startMonitor(m)
	defer cancel()

	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)
	clk.BlockUntil(1)
	clk.Advance(time.Second)

	waitForDone(t, done)
	assert.Empty(t, be.watchedIDs())
}

func TestCompletionMonitorSkipsWithoutTimes(t *testing.T) {
	clk := clockwork.NewFakeClock()
	player := newFakePlayer()
	player.setState(domain.StateStopped)
	be := &fakeBackend{}

	m := newTestMonitor(clk, player, be)
	cancel, done := startMonitor(m)
	defer cancel()

	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)
	clk.BlockUntil(1)
	clk.Advance(time.Second)

	waitForDone(t, done)
	assert.Empty(t, be.watchedIDs())
}

func TestCompletionMonitorExitsOnPlayerError(t *testing.T) {
	clk := clockwork.NewFakeClock()
	player := newFakePlayer()
	player.setState(domain.StateError)
	player.setTimes(95*time.Second, 100*time.Second)
	be := &fakeBackend{}

	m := newTestMonitor(clk, player, be)
	cancel, done := startMonitor(m)
	defer cancel()

	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)
	clk.BlockUntil(1)
	clk.Advance(time.Second)

	waitForDone(t, done)
	assert.Empty(t, be.watchedIDs())
}

func TestCompletionMonitorCancelledDuringGrace(t *testing.T) {
	clk := clockwork.NewFakeClock()
	player := newFakePlayer()
	player.setState(domain.StatePlaying)
	be := &fakeBackend{}

	m := newTestMonitor(clk, player, be)
	cancel, done := startMonitor(m)

	clk.BlockUntil(1)
	cancel()

	waitForDone(t, done)
	assert.Empty(t, be.watchedIDs())
}

func TestCompletionMonitorReportFailureIsNotFatal(t *testing.T) {
	clk := clockwork.NewFakeClock()
	player := newFakePlayer()
	player.setState(domain.StateStopped)
	player.setTimes(99*time.Second, 100*time.Second)
	be := &fakeBackend{markErr: errors.New("backend down")}

	m := newTestMonitor(clk, player, be)
	cancel, done := startMonitor(m)
	defer cancel()

	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)
	clk.BlockUntil(1)
	clk.Advance(time.Second)

	waitForDone(t, done)
	require.Len(t, be.watchedIDs(), 1)
}
