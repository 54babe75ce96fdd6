package network

import (
	"context"
	"ctchen222/reversi/internal/transport"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Transports accepted by Config.Transport.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// Config describes how to reach the authority.
type Config struct {
	Addr      string
	Transport string
	Path      string
	Query     url.Values
	Timeout   time.Duration

	// Dialer overrides the dialer picked from Transport.
	Dialer transport.Dialer
}

func (c Config) dialer() transport.Dialer {
	if c.Dialer != nil {
		return c.Dialer
	}
	if c.Transport == TransportWebSocket {
		return transport.WSDialer{Timeout: c.Timeout, Path: c.Path, Query: c.Query}
	}
	return transport.TCPDialer{Timeout: c.Timeout}
}

// DialError reports a failed connection attempt.
type DialError struct {
	Kind transport.FailKind
	Addr string
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial %s: %s: %v", e.Addr, e.Kind, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// Status returns the text shown to the player for this failure.
func (e *DialError) Status() string {
	switch e.Kind {
	case transport.FailResolve:
		return StatusResolveFailed
	case transport.FailTimeout:
		return StatusTimeout
	default:
		return StatusConnectError
	}
}

// Dial connects to the authority and starts a session. There is no retry; a
// failed attempt returns a *DialError.
func Dial(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	ctx, span := tracer.Start(ctx, "network.Dial", trace.WithAttributes(
		attribute.String("server.address", cfg.Addr),
		attribute.String("network.transport", cfg.Transport),
	))
	defer span.End()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = transport.DefaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.InfoContext(ctx, "Connecting to server", "addr", cfg.Addr, "transport", cfg.Transport)
	conn, err := cfg.dialer().Dial(dialCtx, cfg.Addr)
	if err != nil {
		dialErr := &DialError{Kind: transport.Classify(err), Addr: cfg.Addr, Err: err}
		slog.ErrorContext(ctx, "Failed to connect to server", "addr", cfg.Addr, "error", err, "status", dialErr.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, dialErr.Status())
		return nil, dialErr
	}

	s := New(conn, opts...)
	s.Start()
	slog.InfoContext(ctx, "Connected to server", "addr", cfg.Addr)
	return s, nil
}
