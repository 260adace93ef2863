package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"vinyl/internal/logging"
)

// mpvCommandContext allows tests to intercept mpv invocation.
var mpvCommandContext = exec.CommandContext

const (
	mpvConnectTimeout = 5 * time.Second
	mpvRequestTimeout = 2 * time.Second
	mpvSuccess        = "success"
)

// errPropertyUnavailable is returned by command when mpv has the property
// but no value for it yet (no file loaded, file not demuxed).
var errPropertyUnavailable = errors.New("mpv: property unavailable")

// MPV drives a single idle mpv process over its JSON IPC socket. One
// request/response round-trip runs at a time; unsolicited event messages on
// the socket are skipped while waiting for a reply.
type MPV struct {
	binary string
	socket string
	logger *slog.Logger

	cmd *exec.Cmd

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID int64
}

var _ Sink = (*MPV)(nil)

// MPVOption configures an MPV sink.
type MPVOption func(*MPV)

// WithMPVBinary overrides the mpv binary name or path.
func WithMPVBinary(binary string) MPVOption {
	return func(m *MPV) {
		if binary != "" {
			m.binary = binary
		}
	}
}

// WithSocketPath sets the IPC socket path. Required before Start or Connect.
func WithSocketPath(path string) MPVOption {
	return func(m *MPV) {
		m.socket = path
	}
}

// WithMPVLogger attaches a logger for connection diagnostics.
func WithMPVLogger(logger *slog.Logger) MPVOption {
	return func(m *MPV) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "mpv")
		}
	}
}

// NewMPV builds an unstarted mpv sink.
func NewMPV(opts ...MPVOption) *MPV {
	m := &MPV{
		binary: "mpv",
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches mpv idle with its IPC server on the configured socket and
// connects to it.
func (m *MPV) Start(ctx context.Context) error {
	if m.socket == "" {
		return errors.New("mpv: socket path not set")
	}
	cmd := mpvCommandContext(ctx, m.binary,
		"--idle",
		"--no-terminal",
		"--no-video",
		"--input-ipc-server="+m.socket,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.binary, err)
	}
	m.cmd = cmd

	if err := m.Connect(ctx); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		m.cmd = nil
		return err
	}
	m.logger.Debug("mpv started", logging.String(logging.FieldPath, m.socket))
	return nil
}

// Connect attaches to an mpv IPC socket that is already being served,
// retrying until the socket accepts or the timeout elapses.
func (m *MPV) Connect(ctx context.Context) error {
	if m.socket == "" {
		return errors.New("mpv: socket path not set")
	}
	deadline := time.Now().Add(mpvConnectTimeout)
	var conn net.Conn
	for {
		var err error
		conn, err = net.DialTimeout("unix", m.socket, time.Second)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("mpv: socket %s not ready: %w", m.socket, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	m.mu.Lock()
	m.conn = conn
	m.reader = bufio.NewReader(conn)
	m.mu.Unlock()

	// Cut down on unsolicited traffic; replies are matched by id anyway.
	if _, err := m.command(ctx, "disable_event", "all"); err != nil {
		m.logger.Debug("disable_event rejected", logging.Error(err))
	}
	return nil
}

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
}

// command performs one JSON IPC round-trip and returns the reply's data
// payload.
func (m *MPV) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil, errors.New("mpv: not connected")
	}

	m.nextID++
	id := m.nextID

	deadline := time.Now().Add(mpvRequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = m.conn.SetDeadline(deadline)

	payload, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("mpv: encode command: %w", err)
	}
	if _, err := m.conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("mpv: send command: %w", err)
	}

	for {
		line, err := m.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv: read response: %w", err)
		}
		var resp mpvResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			m.logger.Debug("unparseable ipc line skipped", logging.Error(err))
			continue
		}
		if resp.Event != "" || resp.RequestID != id {
			continue
		}
		switch resp.Error {
		case mpvSuccess:
			return resp.Data, nil
		case "property unavailable":
			return nil, errPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv: command failed: %s", resp.Error)
		}
	}
}

// getFloat reads a numeric property. ok is false when the property has no
// value yet.
func (m *MPV) getFloat(ctx context.Context, property string) (float64, bool, error) {
	data, err := m.command(ctx, "get_property", property)
	if errors.Is(err, errPropertyUnavailable) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return 0, false, fmt.Errorf("mpv: decode %s: %w", property, err)
	}
	return value, true, nil
}

func (m *MPV) Play(ctx context.Context, path string) error {
	if _, err := m.command(ctx, "loadfile", path, "replace"); err != nil {
		return err
	}
	// The pause property survives loadfile, so a track selected while
	// paused would otherwise sit silent.
	_, err := m.command(ctx, "set_property", "pause", false)
	return err
}

func (m *MPV) Stop(ctx context.Context) error {
	_, err := m.command(ctx, "stop")
	return err
}

func (m *MPV) Pause(ctx context.Context) error {
	_, err := m.command(ctx, "set_property", "pause", true)
	return err
}

func (m *MPV) Resume(ctx context.Context) error {
	_, err := m.command(ctx, "set_property", "pause", false)
	return err
}

func (m *MPV) SeekTo(ctx context.Context, position time.Duration) error {
	if position < 0 {
		position = 0
	}
	_, err := m.command(ctx, "seek", position.Seconds(), "absolute")
	return err
}

func (m *MPV) SeekBy(ctx context.Context, delta time.Duration) error {
	_, err := m.command(ctx, "seek", delta.Seconds(), "relative")
	return err
}

func (m *MPV) Progress(ctx context.Context) (time.Duration, error) {
	seconds, ok, err := m.getFloat(ctx, "time-pos")
	if err != nil || !ok {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (m *MPV) Duration(ctx context.Context) (time.Duration, error) {
	seconds, ok, err := m.getFloat(ctx, "duration")
	if err != nil || !ok {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (m *MPV) SetVolume(ctx context.Context, percent int) error {
	_, err := m.command(ctx, "set_property", "volume", percent)
	return err
}

// Close asks mpv to quit, then tears the connection and process down.
func (m *MPV) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mpvRequestTimeout)
	defer cancel()
	_, _ = m.command(ctx, "quit")

	m.mu.Lock()
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
		m.reader = nil
	}
	m.mu.Unlock()

	if m.cmd != nil {
		done := make(chan error, 1)
		go func() { done <- m.cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			_ = m.cmd.Process.Kill()
			<-done
		}
		m.cmd = nil
	}
	if m.socket != "" {
		_ = os.Remove(m.socket)
	}
	return nil
}
