// Package transport carries protocol messages over a WebSocket.
//
// A WebSocket connection implements protocol.Conn: every text frame is one
// JSON message. Both ends of the broker link use it, the client side via
// Dial and the broker side via Accept.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Connection limits.
const (
	DefaultReadLimit = 32 << 20
	PingInterval     = 20 * time.Second
	PingTimeout      = 5 * time.Second
)

// ErrUnexpectedFrame indicates a binary frame on a text-only connection.
var ErrUnexpectedFrame = errors.New("unexpected binary frame")

// WebSocket is a message connection over a WebSocket.
type WebSocket struct {
	conn *websocket.Conn

	cancelPing context.CancelFunc
	closeOnce  sync.Once
	closeErr   error
}

// Dial connects to a broker endpoint such as ws://127.0.0.1:8089/ws.
func Dial(ctx context.Context, url string) (*WebSocket, error) {
	conn, resp, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s (%s): %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newWebSocket(conn), nil
}

// Accept upgrades an HTTP request to a WebSocket connection. Requests
// without an Origin header and same-host origins are accepted; any other
// origin must match one of originPatterns (path.Match syntax on the host).
func Accept(w http.ResponseWriter, r *http.Request, originPatterns ...string) (*WebSocket, error) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("accept websocket: %w", err)
	}
	return newWebSocket(conn), nil
}

func newWebSocket(conn *websocket.Conn) *WebSocket {
	conn.SetReadLimit(DefaultReadLimit)
	ctx, cancel := context.WithCancel(context.Background())
	startPing(ctx, conn)
	return &WebSocket{conn: conn, cancelPing: cancel}
}

func startPing(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(PingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
				_ = conn.Ping(pingCtx)
				cancel()
			}
		}
	}()
}

// Read returns the next text message.
func (w *WebSocket) Read(ctx context.Context) ([]byte, error) {
	typ, data, err := w.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, ErrUnexpectedFrame
	}
	return data, nil
}

// Write sends data as one text message.
func (w *WebSocket) Write(ctx context.Context, data []byte) error {
	return w.conn.Write(ctx, websocket.MessageText, data)
}

// Close performs a normal closing handshake.
func (w *WebSocket) Close() error {
	w.closeOnce.Do(func() {
		w.cancelPing()
		w.closeErr = w.conn.Close(websocket.StatusNormalClosure, "closed")
	})
	return w.closeErr
}

// IsNormalClosure reports whether err is the peer closing the connection
// normally.
func IsNormalClosure(err error) bool {
	return websocket.CloseStatus(err) == websocket.StatusNormalClosure
}
