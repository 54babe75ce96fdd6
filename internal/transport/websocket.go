package transport

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WSConn carries one line per websocket text frame.
type WSConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed atomic.Bool
}

// NewWSConn wraps an established websocket connection.
func NewWSConn(c *websocket.Conn) *WSConn {
	c.SetReadLimit(MaxLineLength)
	return &WSConn{conn: c}
}

// Send writes one text frame.
func (c *WSConn) Send(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrInvalidLine
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return c.wrap(err)
	}
	return nil
}

// Receive blocks for the next text frame. Binary frames are skipped.
func (c *WSConn) Receive() (string, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if errors.Is(err, websocket.ErrReadLimit) {
			return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidLine, MaxLineLength)
		}
		if err != nil {
			return "", c.wrap(err)
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

// Close sends a close frame and closes the connection. Later calls are
// no-ops.
func (c *WSConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *WSConn) wrap(err error) error {
	var closeErr *websocket.CloseError
	if c.closed.Load() || isClosedErr(err) || errors.As(err, &closeErr) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}
