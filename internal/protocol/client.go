package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/xiview/internal/logging"
)

// Default client settings.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultBufferSize     = 256
)

// ErrQueueFull indicates the outgoing queue has no room for a message.
var ErrQueueFull = errors.New("outgoing queue full")

// Conn is a message-oriented channel to the broker. Each Read returns one
// complete JSON message.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Client speaks the host envelope protocol over a Conn.
//
// Outgoing edits are queued and written by Run's writer; they never block
// on the network. Incoming notifications for the client's view are decoded
// and delivered in arrival order on Events.
type Client struct {
	conn    Conn
	logger  *logging.Logger
	timeout time.Duration

	out    chan []byte
	events chan Event

	mu      sync.Mutex
	pending map[string]pendingCall
	viewID  string

	closed atomic.Bool
	done   chan struct{}
}

type pendingCall struct {
	operation string
	ch        chan Reply
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestTimeout bounds how long NewView and Save wait for a reply.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBufferSize sets the capacity of the outgoing queue and event channel.
func WithBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.out = make(chan []byte, n)
			c.events = make(chan Event, n)
		}
	}
}

// NewClient creates a client over conn. Call Run to start it.
func NewClient(conn Conn, opts ...Option) *Client {
	c := &Client{
		conn:    conn,
		logger:  logging.Null(),
		timeout: DefaultRequestTimeout,
		out:     make(chan []byte, DefaultBufferSize),
		events:  make(chan Event, DefaultBufferSize),
		pending: make(map[string]pendingCall),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the ordered event stream. It is closed when Run returns.
func (c *Client) Events() <-chan Event {
	return c.events
}

// ViewID returns the id of the open view, or "" before NewView succeeds.
func (c *Client) ViewID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewID
}

// Run reads and writes until ctx is cancelled, the client is closed or the
// connection fails. Connection state changes are reported as StatusEvents.
// A nil error means an orderly shutdown.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)

	c.emit(ctx, StatusEvent{Connected: true})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(gctx) })
	g.Go(func() error { return c.writeLoop(gctx) })
	err := g.Wait()

	if c.closed.Load() || ctx.Err() != nil {
		err = nil
	}
	// Best effort: the consumer may already be gone.
	select {
	case c.events <- StatusEvent{Connected: false, Err: err}:
	default:
	}
	return err
}

// Close shuts the client down and closes the connection.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.mu.Lock()
	c.pending = make(map[string]pendingCall)
	c.mu.Unlock()

	return c.conn.Close()
}

func (c *Client) readLoop(ctx context.Context) error {
	for {
		data, err := c.conn.Read(ctx)
		if err != nil {
			if c.closed.Load() || ctx.Err() != nil {
				return nil
			}
			return &TransportError{Op: "read", Err: err}
		}
		if err := c.dispatch(ctx, data); err != nil {
			c.logger.Warn("dropping message: %v", err)
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		case data := <-c.out:
			if err := c.conn.Write(ctx, data); err != nil {
				if c.closed.Load() || ctx.Err() != nil {
					return nil
				}
				return &TransportError{Op: "write", Err: err}
			}
		}
	}
}

// dispatch routes one incoming message. Replies carry an id and no method.
func (c *Client) dispatch(ctx context.Context, data []byte) error {
	if !gjson.ValidBytes(data) {
		return &MalformedError{Err: errors.New("invalid JSON")}
	}
	fields := gjson.GetManyBytes(data, "method", "id", "parameters")
	method, id, params := fields[0].String(), fields[1], fields[2]

	if method == "" {
		if !id.Exists() {
			return &MalformedError{Err: errors.New("neither method nor id")}
		}
		var reply Reply
		if err := json.Unmarshal(data, &reply); err != nil {
			return &MalformedError{Method: "reply", Err: err}
		}
		c.handleReply(reply)
		return nil
	}

	// The broker may relay parameters as an encoded JSON string.
	raw := []byte(params.Raw)
	if params.Type == gjson.String {
		raw = []byte(params.Str)
	}
	if !params.Exists() || !gjson.ValidBytes(raw) {
		return &MalformedError{Method: method, Err: errors.New("missing or invalid parameters")}
	}

	switch method {
	case MethodUpdate:
		if !c.forThisView(raw) {
			return nil
		}
		var p UpdateParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return &MalformedError{Method: method, Err: err}
		}
		c.emit(ctx, UpdateEvent{Update: p.Update})
	case MethodSetStyle:
		var p StyleParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return &MalformedError{Method: method, Err: err}
		}
		c.emit(ctx, StyleEvent{Style: p})
	case MethodScrollTo:
		if !c.forThisView(raw) {
			return nil
		}
		var p ScrollToParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return &MalformedError{Method: method, Err: err}
		}
		c.emit(ctx, ScrollToEvent{Line: p.Line, Col: p.Col})
	default:
		c.logger.Debug("ignoring %s notification", method)
	}
	return nil
}

// forThisView reports whether the message's view_id names the open view.
func (c *Client) forThisView(raw []byte) bool {
	got := gjson.GetBytes(raw, "view_id").String()
	want := c.ViewID()
	if want == "" || got != want {
		c.logger.Debug("dropping notification for view %q (open view %q)", got, want)
		return false
	}
	return true
}

func (c *Client) handleReply(reply Reply) {
	c.mu.Lock()
	call, ok := c.pending[reply.ID]
	if ok {
		delete(c.pending, reply.ID)
		// Record the view before any of its updates can be read.
		if call.operation == OperationNewView && reply.Error == "" && reply.ViewID != "" {
			c.viewID = reply.ViewID
		}
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("reply %s has no pending request", reply.ID)
		return
	}
	call.ch <- reply
}

func (c *Client) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	case <-c.done:
	}
}

// enqueue marshals req and queues it for the writer.
func (c *Client) enqueue(req *Request) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", req.Operation, err)
	}
	select {
	case c.out <- data:
		return nil
	default:
		return &TransportError{Op: "queue", Err: ErrQueueFull}
	}
}

// call sends req with a fresh id and waits for the reply.
func (c *Client) call(ctx context.Context, req *Request) (Reply, error) {
	req.ID = uuid.NewString()
	ch := make(chan Reply, 1)

	c.mu.Lock()
	c.pending[req.ID] = pendingCall{operation: req.Operation, ch: ch}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if err := c.enqueue(req); err != nil {
		return Reply{}, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-c.done:
		return Reply{}, ErrShutdown
	case <-timer.C:
		return Reply{}, &TransportError{Op: req.Operation, Err: ErrTimeout}
	case reply := <-ch:
		if reply.Error != "" {
			return reply, &ReplyError{Operation: req.Operation, Message: reply.Error}
		}
		return reply, nil
	}
}

// ClientStarted tells the engine where its configuration lives.
func (c *Client) ClientStarted(configDir string) error {
	return c.enqueue(&Request{Operation: OperationClientStarted, ConfigDir: configDir})
}

// NewView opens path in a new view and returns the view id.
func (c *Client) NewView(ctx context.Context, path string) (string, error) {
	reply, err := c.call(ctx, &Request{Operation: OperationNewView, FilePath: path})
	if err != nil {
		return "", err
	}
	if reply.ViewID == "" {
		return "", &ReplyError{Operation: OperationNewView, Message: "reply carries no view id"}
	}
	return reply.ViewID, nil
}

// Save writes the open view to path.
func (c *Client) Save(ctx context.Context, path string) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	viewID := c.ViewID()
	if viewID == "" {
		return ErrNoView
	}
	_, err := c.call(ctx, &Request{Operation: OperationSave, ViewID: viewID, FilePath: path})
	return err
}

// notify queues an edit for the open view.
func (c *Client) notify(method string, params any) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	viewID := c.ViewID()
	if viewID == "" {
		return ErrNoView
	}
	return c.enqueue(&Request{
		Operation: OperationEdit,
		ViewID:    viewID,
		Method:    method,
		Params:    params,
	})
}

// Edit sends a parameterless edit command such as move_up or undo.
func (c *Client) Edit(method string) error {
	return c.notify(method, nil)
}

// Insert inserts chars at the caret.
func (c *Client) Insert(chars string) error {
	return c.notify(EditInsert, CharsParams{Chars: chars})
}

// Find searches for query, ignoring case.
func (c *Client) Find(query string) error {
	return c.notify(EditFind, FindParams{Chars: query, CaseSensitive: false})
}

// Click places the caret. col is a byte offset into the line.
func (c *Client) Click(line, col, mods, count int) error {
	return c.notify(EditClick, []int{line, col, mods, count})
}

// Drag extends the selection to (line, col).
func (c *Client) Drag(line, col, mods int) error {
	return c.notify(EditDrag, []int{line, col, mods})
}

// Scroll reports the visible lines [first, end).
func (c *Client) Scroll(first, end int) error {
	return c.notify(EditScroll, []int{first, end})
}

// RequestLines asks the engine to send lines [first, end).
func (c *Client) RequestLines(first, end int) error {
	return c.notify(EditRequest, []int{first, end})
}
