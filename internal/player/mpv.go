package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/reverie-player/reverie/internal/domain"
	"go.uber.org/zap"
)

// mpvRequest is one command frame on the JSON IPC socket
type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// mpvMessage is any inbound frame: a command reply carries RequestID and
// Error, an event frame carries Event
type mpvMessage struct {
	Event     string          `json:"event,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
}

type mpvTrack struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Lang     string `json:"lang"`
	Selected bool   `json:"selected"`
}

// MpvPlayer drives an mpv process over its JSON IPC unix socket. One
// reader goroutine owns the inbound side: command replies are matched to
// callers by request id, event frames drive the playback state machine.
type MpvPlayer struct {
	logger     *zap.Logger
	socketPath string

	mu      sync.Mutex
	conn    net.Conn
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	nextID  int64
	pending map[int64]chan mpvMessage

	stateMu sync.RWMutex
	state   domain.PlaybackState
}

// NewMpvPlayer creates a player bound to the given IPC socket path.
// Start must be called before any playback command.
func NewMpvPlayer(logger *zap.Logger, socketPath string) *MpvPlayer {
	return &MpvPlayer{
		logger:     logger,
		socketPath: socketPath,
		pending:    make(map[int64]chan mpvMessage),
		state:      domain.StateIdle,
	}
}

// Start connects to the IPC socket and launches the reader goroutine
func (p *MpvPlayer) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", p.socketPath)
	if err != nil {
		return fmt.Errorf("mpv socket connection failed: %w", err)
	}

	readerCtx, cancel := context.WithCancel(context.Background())
	p.conn = conn
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.readLoop(readerCtx, conn)

	p.logger.Info("Connected to mpv", zap.String("socket", p.socketPath))
	return nil
}

// Close shuts down the socket and waits for the reader goroutine to exit
func (p *MpvPlayer) Close(_ context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.cancel()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()

	err := conn.Close()
	p.wg.Wait()

	p.logger.Info("Disconnected from mpv")
	return err
}

func (p *MpvPlayer) readLoop(ctx context.Context, conn net.Conn) {
	defer p.wg.Done()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			p.logger.Warn("Undecodable frame from mpv", zap.Error(err))
			continue
		}

		if msg.Event != "" {
			p.handleEvent(msg)
			continue
		}

		p.mu.Lock()
		ch, ok := p.pending[msg.RequestID]
		if ok {
			delete(p.pending, msg.RequestID)
		}
		p.mu.Unlock()

		if ok {
			ch <- msg
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		p.logger.Error("mpv socket read failed", zap.Error(err))
		p.setState(domain.StateError)
	}

	// Unblock callers still waiting for a reply
	p.mu.Lock()
	for id, ch := range p.pending {
		delete(p.pending, id)
		close(ch)
	}
	p.mu.Unlock()
}

func (p *MpvPlayer) handleEvent(msg mpvMessage) {
	switch msg.Event {
	case "start-file":
		p.setState(domain.StateLoading)
	case "playback-restart":
		p.setState(domain.StatePlaying)
	case "pause":
		p.setState(domain.StatePaused)
	case "unpause":
		p.setState(domain.StatePlaying)
	case "end-file":
		if msg.Reason == "error" {
			p.setState(domain.StateError)
		} else {
			p.setState(domain.StateStopped)
		}
	}
	p.logger.Debug("mpv event", zap.String("event", msg.Event))
}

func (p *MpvPlayer) setState(s domain.PlaybackState) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
}

// command sends one request frame and waits for its reply
func (p *MpvPlayer) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil, fmt.Errorf("mpv not connected")
	}
	p.nextID++
	id := p.nextID
	ch := make(chan mpvMessage, 1)
	p.pending[id] = ch
	conn := p.conn

	frame, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, err
	}
	_, err = conn.Write(append(frame, '\n'))
	if err != nil {
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, fmt.Errorf("mpv write failed: %w", err)
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, ctx.Err()
	case msg, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("mpv connection lost")
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv command failed: %s", msg.Error)
		}
		return msg.Data, nil
	}
}

func (p *MpvPlayer) setProperty(ctx context.Context, name string, value any) error {
	_, err := p.command(ctx, "set_property", name, value)
	return err
}

func (p *MpvPlayer) getProperty(ctx context.Context, name string, out any) error {
	data, err := p.command(ctx, "get_property", name)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// LoadMedia loads the URL paused; Play starts it
func (p *MpvPlayer) LoadMedia(ctx context.Context, url string) error {
	if err := p.setProperty(ctx, "pause", true); err != nil {
		return err
	}
	if _, err := p.command(ctx, "loadfile", url, "replace"); err != nil {
		return err
	}
	p.setState(domain.StateLoading)
	return nil
}

func (p *MpvPlayer) Play(ctx context.Context) error {
	if err := p.setProperty(ctx, "pause", false); err != nil {
		return err
	}
	p.setState(domain.StatePlaying)
	return nil
}

func (p *MpvPlayer) Pause(ctx context.Context) error {
	if err := p.setProperty(ctx, "pause", true); err != nil {
		return err
	}
	p.setState(domain.StatePaused)
	return nil
}

func (p *MpvPlayer) Stop(ctx context.Context) error {
	if _, err := p.command(ctx, "stop"); err != nil {
		return err
	}
	p.setState(domain.StateStopped)
	return nil
}

func (p *MpvPlayer) Seek(ctx context.Context, pos time.Duration) error {
	_, err := p.command(ctx, "seek", pos.Seconds(), "absolute")
	return err
}

func (p *MpvPlayer) Position(ctx context.Context) (time.Duration, bool) {
	var seconds float64
	if err := p.getProperty(ctx, "time-pos", &seconds); err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func (p *MpvPlayer) Duration(ctx context.Context) (time.Duration, bool) {
	var seconds float64
	if err := p.getProperty(ctx, "duration", &seconds); err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func (p *MpvPlayer) State(context.Context) domain.PlaybackState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

// SetVolume maps the linear [0,1] volume onto mpv's percent scale
func (p *MpvPlayer) SetVolume(ctx context.Context, volume float64) error {
	return p.setProperty(ctx, "volume", volume*100)
}

func (p *MpvPlayer) trackList(ctx context.Context) []mpvTrack {
	var tracks []mpvTrack
	if err := p.getProperty(ctx, "track-list", &tracks); err != nil {
		p.logger.Debug("Track list unavailable", zap.Error(err))
		return nil
	}
	return tracks
}

func trackName(t mpvTrack) string {
	switch {
	case t.Title != "":
		return t.Title
	case t.Lang != "":
		return t.Lang
	default:
		return fmt.Sprintf("Track %d", t.ID)
	}
}

func (p *MpvPlayer) AudioTracks(ctx context.Context) []domain.Track {
	var out []domain.Track
	for _, t := range p.trackList(ctx) {
		if t.Type == "audio" {
			out = append(out, domain.Track{Index: t.ID, Name: trackName(t)})
		}
	}
	return out
}

// SubtitleTracks always leads with the disabled sentinel when any
// subtitle stream exists
func (p *MpvPlayer) SubtitleTracks(ctx context.Context) []domain.Track {
	var subs []domain.Track
	for _, t := range p.trackList(ctx) {
		if t.Type == "sub" {
			subs = append(subs, domain.Track{Index: t.ID, Name: trackName(t)})
		}
	}
	if len(subs) == 0 {
		return nil
	}
	return append([]domain.Track{{Index: domain.TrackDisabled, Name: "None"}}, subs...)
}

func (p *MpvPlayer) CurrentAudioTrack(ctx context.Context) int {
	var id int
	if err := p.getProperty(ctx, "aid", &id); err != nil {
		return domain.TrackDisabled
	}
	return id
}

func (p *MpvPlayer) CurrentSubtitleTrack(ctx context.Context) int {
	// sid decodes as false when subtitles are off
	var id int
	if err := p.getProperty(ctx, "sid", &id); err != nil {
		return domain.TrackDisabled
	}
	return id
}

func (p *MpvPlayer) SetAudioTrack(ctx context.Context, index int) error {
	return p.setProperty(ctx, "aid", index)
}

func (p *MpvPlayer) SetSubtitleTrack(ctx context.Context, index int) error {
	if index == domain.TrackDisabled {
		return p.setProperty(ctx, "sid", "no")
	}
	return p.setProperty(ctx, "sid", index)
}

func (p *MpvPlayer) VideoDimensions(ctx context.Context) (int, int, bool) {
	var width, height int
	if err := p.getProperty(ctx, "width", &width); err != nil {
		return 0, 0, false
	}
	if err := p.getProperty(ctx, "height", &height); err != nil {
		return 0, 0, false
	}
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// socketTarget identifies the IPC socket as the attachment point; mpv
// owns its own window, so there is nothing to release
type socketTarget struct {
	path string
}

func (t *socketTarget) ID() string     { return t.path }
func (t *socketTarget) Release() error { return nil }

func (p *MpvPlayer) CreateRenderTarget() domain.RenderTarget {
	return &socketTarget{path: p.socketPath}
}
