package transport

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultDialTimeout bounds connection establishment.
const DefaultDialTimeout = 10 * time.Second

// Dialer opens a Conn to addr ("host:port").
type Dialer interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// FailKind classifies a dial failure.
type FailKind int

const (
	FailError FailKind = iota
	FailResolve
	FailTimeout
)

func (k FailKind) String() string {
	switch k {
	case FailResolve:
		return "resolve"
	case FailTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Classify reports whether err came from name resolution, a timeout or
// anything else.
func Classify(err error) FailKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailResolve
	}
	var addrErr *net.AddrError
	if errors.As(err, &addrErr) {
		return FailResolve
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailTimeout
	}
	return FailError
}

// TCPDialer connects over TCP with newline framing.
type TCPDialer struct {
	Timeout time.Duration
}

// Dial connects to addr.
func (d TCPDialer) Dial(ctx context.Context, addr string) (Conn, error) {
	nd := net.Dialer{Timeout: timeoutOrDefault(d.Timeout)}
	c, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewLineConn(c), nil
}

// WSDialer connects over a websocket at Path, e.g. "/ws".
type WSDialer struct {
	Timeout time.Duration
	Path    string
	Query   url.Values
}

// Dial connects to ws://addr/Path.
func (d WSDialer) Dial(ctx context.Context, addr string) (Conn, error) {
	timeout := timeoutOrDefault(d.Timeout)
	u := url.URL{Scheme: "ws", Host: addr, Path: d.Path}
	if len(d.Query) > 0 {
		u.RawQuery = d.Query.Encode()
	}

	wd := websocket.Dialer{
		HandshakeTimeout: timeout,
		NetDialContext:   (&net.Dialer{Timeout: timeout}).DialContext,
	}
	c, _, err := wd.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return NewWSConn(c), nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultDialTimeout
	}
	return d
}
