package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"deck-player/debug"
)

const (
	socketWaitDelay = 100 * time.Millisecond
	eventBuffer     = 64
)

// Options configures the mpv process
type Options struct {
	Binary       string
	Args         []string
	SocketPath   string
	StartTimeout time.Duration
}

// MPV implements Engine over mpv's JSON IPC socket
type MPV struct {
	opts   Options
	cmd    *exec.Cmd
	exited chan struct{}

	ipc     *ipcClient
	tracker tracker
	queue   *eventQueue
	events  chan Event

	closeOnce sync.Once
}

// NewMPV creates an engine; call Start to launch the process
func NewMPV(opts Options) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 3 * time.Second
	}
	return &MPV{
		opts:   opts,
		queue:  newEventQueue(),
		events: make(chan Event, eventBuffer),
	}
}

func (m *MPV) args() []string {
	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=no",
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + m.opts.SocketPath,
	}
	return append(args, m.opts.Args...)
}

// Start launches mpv idle and connects to its socket
func (m *MPV) Start(ctx context.Context) error {
	if m.opts.SocketPath == "" {
		return errors.New("mpv: no socket path")
	}
	os.Remove(m.opts.SocketPath)

	m.cmd = exec.Command(m.opts.Binary, m.args()...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.opts.Binary, err)
	}
	debug.Log("mpv", "started pid=%d socket=%s", m.cmd.Process.Pid, m.opts.SocketPath)

	// reap the process to prevent zombies
	m.exited = make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	conn, err := m.waitForSocket(ctx)
	if err != nil {
		killProcess(m.cmd)
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return m.attach(ctx, conn)
}

func (m *MPV) waitForSocket(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.StartTimeout)
	defer cancel()

	for {
		select {
		case <-m.exited:
			return nil, errors.New("mpv exited before socket was ready")
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.opts.SocketPath)
		if err == nil {
			return conn, nil
		}
	}
}

// attach wires an established connection and subscribes to properties
func (m *MPV) attach(ctx context.Context, conn net.Conn) error {
	m.ipc = newIPCClient(conn, m.handle)
	go m.queue.forward(m.events, m.ipc.Done())

	for _, prop := range observed {
		if _, err := m.ipc.command(ctx, "observe_property", prop.id, prop.name); err != nil {
			m.ipc.close()
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}
	return nil
}

// handle runs on the IPC read goroutine
func (m *MPV) handle(msg ipcMessage) {
	for _, ev := range m.tracker.translate(msg) {
		if ev.Kind == PositionChanged {
			debug.LogEvery(100, "mpv", "position %s", ev.Position)
		}
		m.queue.push(ev)
	}
}

func (m *MPV) command(args ...any) error {
	if m.ipc == nil {
		return errors.New("mpv: not started")
	}
	_, err := m.ipc.command(context.Background(), args...)
	return err
}

func (m *MPV) Load(uri string) error {
	return m.command("loadfile", uri, "replace")
}

func (m *MPV) Play() error {
	return m.command("set_property", "pause", false)
}

func (m *MPV) Pause() error {
	return m.command("set_property", "pause", true)
}

func (m *MPV) Stop() error {
	return m.command("stop")
}

func (m *MPV) Seek(position time.Duration) error {
	return m.command("seek", position.Seconds(), "absolute")
}

func (m *MPV) SetLoop(infinite bool) error {
	if infinite {
		return m.command("set_property", "loop-file", "inf")
	}
	return m.command("set_property", "loop-file", "no")
}

// SetOutput moves fullscreen video to screen and audio to audioDevice
func (m *MPV) SetOutput(screen int, audioDevice string) error {
	if err := m.command("set_property", "screen", screen); err != nil {
		return err
	}
	if err := m.command("set_property", "fs-screen", screen); err != nil {
		return err
	}
	if audioDevice == "" {
		audioDevice = "auto"
	}
	return m.command("set_property", "audio-device", audioDevice)
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close asks mpv to quit, then kills it if it lingers
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		if m.ipc != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			_, _ = m.ipc.command(ctx, "quit")
			cancel()
			m.ipc.close()
		}

		if m.cmd != nil && m.exited != nil {
			select {
			case <-m.exited:
			case <-time.After(time.Second):
				debug.Log("mpv", "force kill pid=%d", m.cmd.Process.Pid)
				killProcess(m.cmd)
			}
			os.Remove(m.opts.SocketPath)
		}
	})
	return nil
}
