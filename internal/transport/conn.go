package transport

//go:generate mockgen -source=conn.go -destination=mocks/mock_conn.go -package=mocks

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
)

// MaxLineLength bounds a received line, line break included.
const MaxLineLength = 4096

var (
	// ErrClosed is returned once either side has closed the connection.
	ErrClosed = errors.New("connection closed")
	// ErrInvalidLine is returned when a line to send contains a line break
	// or a received line is longer than MaxLineLength.
	ErrInvalidLine = errors.New("invalid line")
)

// Conn carries protocol lines in both directions. Send may be called
// concurrently with Receive; Receive must have a single caller.
type Conn interface {
	Send(line string) error
	Receive() (string, error)
	Close() error
}

// LineConn frames lines with a trailing newline over a stream connection.
type LineConn struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	closed atomic.Bool
}

// NewLineConn wraps an established stream connection.
func NewLineConn(c net.Conn) *LineConn {
	return &LineConn{
		conn:   c,
		reader: bufio.NewReaderSize(c, MaxLineLength),
	}
}

// Send writes one line.
func (c *LineConn) Send(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrInvalidLine
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return c.wrap(err)
	}
	return nil
}

// Receive blocks for the next line and returns it without the line break.
// A partial line cut off by the peer closing is dropped. An overlong line
// fails with ErrInvalidLine and leaves the stream unusable.
func (c *LineConn) Receive() (string, error) {
	line, err := c.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidLine, MaxLineLength)
	}
	if err != nil {
		return "", c.wrap(err)
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

// Close closes the underlying connection. Later calls are no-ops.
func (c *LineConn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

func (c *LineConn) wrap(err error) error {
	if c.closed.Load() || isClosedErr(err) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return err
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
