package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"deck-player/debug"
)

const (
	commandTimeout = time.Second
	maxLineSize    = 1 << 20
)

var errClosed = errors.New("ipc connection closed")

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line mpv writes back: a reply (request_id set) or an
// asynchronous event.
type ipcMessage struct {
	RequestID *int64 `json:"request_id"`
	Error     string `json:"error"`
	Data      any    `json:"data"`

	Event     string `json:"event"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

// ipcClient multiplexes commands and events over one persistent
// connection. Replies are matched by request_id.
type ipcClient struct {
	conn    net.Conn
	writeMu sync.Mutex
	nextID  atomic.Int64

	pendingMu sync.Mutex
	pending   map[int64]chan ipcMessage

	onEvent func(ipcMessage)
	done    chan struct{}
	once    sync.Once
}

func newIPCClient(conn net.Conn, onEvent func(ipcMessage)) *ipcClient {
	c := &ipcClient{
		conn:    conn,
		pending: make(map[int64]chan ipcMessage),
		onEvent: onEvent,
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// command sends one command and waits for its reply
func (c *ipcClient) command(ctx context.Context, args ...any) (any, error) {
	id := c.nextID.Add(1)
	reply := make(chan ipcMessage, 1)

	c.pendingMu.Lock()
	c.pending[id] = reply
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	payload, err := json.Marshal(ipcCommand{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	c.writeMu.Lock()
	_, err = c.conn.Write(append(payload, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-c.done:
		return nil, errClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("mpv %v: %w", args[0], ctx.Err())
	}
}

func (c *ipcClient) readLoop() {
	defer c.close()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			debug.Log("mpv", "skip unparseable line: %v", err)
			continue
		}

		if msg.RequestID != nil && msg.Event == "" {
			c.pendingMu.Lock()
			reply, ok := c.pending[*msg.RequestID]
			c.pendingMu.Unlock()
			if ok {
				reply <- msg
			}
			continue
		}

		if msg.Event != "" && c.onEvent != nil {
			c.onEvent(msg)
		}
	}

	if err := scanner.Err(); err != nil {
		debug.Log("mpv", "read loop ended: %v", err)
	}
}

func (c *ipcClient) close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection is gone
func (c *ipcClient) Done() <-chan struct{} {
	return c.done
}
