package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineConn_SendReceive(t *testing.T) {
	a, b := net.Pipe()
	client, server := NewLineConn(a), NewLineConn(b)
	defer client.Close()
	defer server.Close()

	go func() {
		_ = client.Send("MOVE:2,3")
		_ = client.Send("PING")
	}()

	line, err := server.Receive()
	require.NoError(t, err)
	assert.Equal(t, "MOVE:2,3", line)

	line, err = server.Receive()
	require.NoError(t, err)
	assert.Equal(t, "PING", line)
}

func TestLineConn_StripsCarriageReturn(t *testing.T) {
	a, b := net.Pipe()
	server := NewLineConn(b)
	defer a.Close()
	defer server.Close()

	go func() { _, _ = a.Write([]byte("YOUR_TURN\r\n")) }()

	line, err := server.Receive()
	require.NoError(t, err)
	assert.Equal(t, "YOUR_TURN", line)
}

func TestLineConn_RejectsLineBreaks(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	err := NewLineConn(a).Send("PING\nPONG")

	assert.ErrorIs(t, err, ErrInvalidLine)
}

func TestLineConn_LineLength(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"at the limit", strings.Repeat("A", MaxLineLength-1) + "\n", nil},
		{"over the limit without a line break", strings.Repeat("A", MaxLineLength+1), ErrInvalidLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a peer writing one long payload
			a, b := net.Pipe()
			server := NewLineConn(b)
			defer a.Close()
			defer server.Close()
			go func() { _, _ = a.Write([]byte(tt.payload)) }()

			// When: the line is received
			line, err := server.Receive()

			// Then: lines up to the limit pass and longer ones are refused
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, line, MaxLineLength-1)
		})
	}
}

func TestLineConn_PeerClose(t *testing.T) {
	a, b := net.Pipe()
	server := NewLineConn(b)
	defer server.Close()

	require.NoError(t, a.Close())

	_, err := server.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLineConn_CloseUnblocksReceive(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	server := NewLineConn(b)

	errCh := make(chan error, 1)
	go func() {
		_, err := server.Receive()
		errCh <- err
	}()

	require.NoError(t, server.Close())
	require.NoError(t, server.Close(), "second Close must be a no-op")

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Receive did not return after Close")
	}
}

func TestWSConn_RoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewWSConn(c)
		defer conn.Close()
		for {
			line, err := conn.Receive()
			if err != nil {
				return
			}
			if err := conn.Send("echo " + line); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	conn, err := WSDialer{Timeout: time.Second, Path: "/ws"}.Dial(context.Background(), addr)
	require.NoError(t, err)

	require.NoError(t, conn.Send("PING"))
	line, err := conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, "echo PING", line)

	require.NoError(t, conn.Close())
	_, err = conn.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTCPDialer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		conn := NewLineConn(c)
		defer conn.Close()
		_ = conn.Send("WELCOME:BLACK")
	}()

	conn, err := TCPDialer{Timeout: time.Second}.Dial(context.Background(), ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	line, err := conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, "WELCOME:BLACK", line)
}

func TestTCPDialer_ExpiredContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := TCPDialer{}.Dial(ctx, "127.0.0.1:9")

	require.Error(t, err)
	assert.Equal(t, FailTimeout, Classify(err))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailKind
	}{
		{
			name: "dns failure",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}},
			want: FailResolve,
		},
		{
			name: "bad address",
			err:  &net.AddrError{Err: "missing port in address", Addr: "localhost"},
			want: FailResolve,
		},
		{
			name: "net timeout",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: timeoutErr{}},
			want: FailTimeout,
		},
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("handshake: %w", context.DeadlineExceeded),
			want: FailTimeout,
		},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
			want: FailError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
