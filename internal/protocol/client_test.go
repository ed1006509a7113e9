package protocol

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

// fakeConn is an in-memory Conn. Messages written by the client appear on
// sent; messages pushed with deliver are returned by Read.
type fakeConn struct {
	incoming chan []byte
	sent     chan []byte

	closeOnce sync.Once
	closed    chan struct{}
	writeErr  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 16),
		sent:     make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.closed:
		return nil, io.EOF
	case data := <-f.incoming:
		return data, nil
	}
}

func (f *fakeConn) Write(ctx context.Context, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	select {
	case f.sent <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) deliver(msg string) {
	f.incoming <- []byte(msg)
}

func (f *fakeConn) next(t *testing.T) gjson.Result {
	t.Helper()
	select {
	case data := <-f.sent:
		return gjson.ParseBytes(data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outgoing message")
		return gjson.Result{}
	}
}

func startClient(t *testing.T, opts ...Option) (*Client, *fakeConn, <-chan error) {
	t.Helper()
	conn := newFakeConn()
	c := NewClient(conn, opts...)
	errc := make(chan error, 1)
	go func() { errc <- c.Run(context.Background()) }()
	t.Cleanup(func() { c.Close() })

	if ev := nextEvent(t, c); ev != (StatusEvent{Connected: true}) {
		t.Fatalf("expected connected status, got %#v", ev)
	}
	return c, conn, errc
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

// openView completes a new_view round trip and returns the view id.
func openView(t *testing.T, c *Client, conn *fakeConn) string {
	t.Helper()
	done := make(chan string, 1)
	go func() {
		id, err := c.NewView(context.Background(), "/tmp/doc.md")
		if err != nil {
			t.Errorf("NewView: %v", err)
		}
		done <- id
	}()

	req := conn.next(t)
	if req.Get("operation").String() != OperationNewView {
		t.Fatalf("expected new_view, got %s", req.Raw)
	}
	if req.Get("file_path").String() != "/tmp/doc.md" {
		t.Errorf("unexpected file_path in %s", req.Raw)
	}
	conn.deliver(`{"id":"` + req.Get("id").String() + `","view_id":"view-id-1"}`)
	return <-done
}

func TestClientNewView(t *testing.T) {
	c, conn, _ := startClient(t)

	if err := c.Edit(MoveUp); !errors.Is(err, ErrNoView) {
		t.Errorf("expected ErrNoView before a view is open, got %v", err)
	}
	if id := openView(t, c, conn); id != "view-id-1" {
		t.Errorf("expected view-id-1, got %q", id)
	}
	if c.ViewID() != "view-id-1" {
		t.Errorf("expected client to record the view id, got %q", c.ViewID())
	}
}

func TestClientEditEnvelopes(t *testing.T) {
	c, conn, _ := startClient(t)
	openView(t, c, conn)

	tests := []struct {
		name   string
		send   func() error
		method string
		params string
	}{
		{"gesture", func() error { return c.Edit(DeleteBackward) }, DeleteBackward, ""},
		{"insert", func() error { return c.Insert("x") }, EditInsert, `{"chars":"x"}`},
		{"find", func() error { return c.Find("foo") }, EditFind, `{"chars":"foo","case_sensitive":false}`},
		{"click", func() error { return c.Click(3, 4, ClickModShift, 2) }, EditClick, `[3,4,2,2]`},
		{"drag", func() error { return c.Drag(5, 1, 0) }, EditDrag, `[5,1,0]`},
		{"scroll", func() error { return c.Scroll(0, 16) }, EditScroll, `[0,16]`},
		{"request", func() error { return c.RequestLines(2, 4) }, EditRequest, `[2,4]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); err != nil {
				t.Fatalf("send: %v", err)
			}
			msg := conn.next(t)
			if msg.Get("operation").String() != OperationEdit {
				t.Errorf("expected edit operation in %s", msg.Raw)
			}
			if msg.Get("view_id").String() != "view-id-1" {
				t.Errorf("expected view id in %s", msg.Raw)
			}
			if msg.Get("method").String() != tt.method {
				t.Errorf("expected method %s in %s", tt.method, msg.Raw)
			}
			if msg.Get("id").Exists() {
				t.Errorf("expected no id on a notification: %s", msg.Raw)
			}
			if got := msg.Get("params").Raw; got != tt.params {
				t.Errorf("expected params %q, got %q", tt.params, got)
			}
		})
	}
}

func TestClientStarted(t *testing.T) {
	c, conn, _ := startClient(t)
	if err := c.ClientStarted("/home/u/.config/xi"); err != nil {
		t.Fatal(err)
	}
	msg := conn.next(t)
	if msg.Get("operation").String() != OperationClientStarted || msg.Get("config_dir").String() != "/home/u/.config/xi" {
		t.Errorf("unexpected message %s", msg.Raw)
	}
}

func TestClientUpdateNotification(t *testing.T) {
	c, conn, _ := startClient(t)
	openView(t, c, conn)

	conn.deliver(`{"method":"update","parameters":{"view_id":"other","update":{"ops":[{"op":"ins","n":1,"lines":[{"text":"x"}]}]}}}`)
	conn.deliver(`{"method":"update","parameters":{"view_id":"view-id-1","update":{"pristine":true,"ops":[{"op":"ins","n":1,"lines":[{"text":"hello\n","cursor":[2]}]}]}}}`)

	ev, ok := nextEvent(t, c).(UpdateEvent)
	if !ok {
		t.Fatalf("expected UpdateEvent")
	}
	if !ev.Update.Pristine || len(ev.Update.Ops) != 1 {
		t.Fatalf("unexpected update %+v", ev.Update)
	}
	op := ev.Update.Ops[0]
	if op.Op != OpIns || op.N != 1 || op.Lines[0].Text != "hello\n" || !op.Lines[0].HasCursor() {
		t.Errorf("unexpected op %+v", op)
	}
}

func TestClientParametersAsString(t *testing.T) {
	c, conn, _ := startClient(t)
	openView(t, c, conn)

	conn.deliver(`{"method":"scroll_to","parameters":"{\"view_id\":\"view-id-1\",\"line\":42,\"col\":3}"}`)
	ev, ok := nextEvent(t, c).(ScrollToEvent)
	if !ok || ev.Line != 42 || ev.Col != 3 {
		t.Errorf("unexpected event %#v", ev)
	}
}

func TestClientStyleNotification(t *testing.T) {
	c, conn, _ := startClient(t)

	conn.deliver(`{"method":"set_style","parameters":{"id":2,"fg_color":4294901760,"weight":700,"italic":true}}`)
	ev, ok := nextEvent(t, c).(StyleEvent)
	if !ok {
		t.Fatal("expected StyleEvent")
	}
	if ev.Style.ID != 2 || ev.Style.FgColor != 0xFFFF0000 || ev.Style.Weight != 700 || !ev.Style.Italic {
		t.Errorf("unexpected style %+v", ev.Style)
	}
}

func TestClientDropsMalformed(t *testing.T) {
	c, conn, _ := startClient(t)
	openView(t, c, conn)

	conn.deliver(`not json`)
	conn.deliver(`{"method":"set_style","parameters":{"id":"two"}}`)
	conn.deliver(`{"method":"update"}`)
	conn.deliver(`{"method":"set_style","parameters":{"id":7}}`)

	ev, ok := nextEvent(t, c).(StyleEvent)
	if !ok || ev.Style.ID != 7 {
		t.Errorf("expected the valid style after malformed messages, got %#v", ev)
	}
}

func TestClientSaveError(t *testing.T) {
	c, conn, _ := startClient(t)
	openView(t, c, conn)

	errc := make(chan error, 1)
	go func() { errc <- c.Save(context.Background(), "/tmp/out.md") }()

	req := conn.next(t)
	if req.Get("operation").String() != OperationSave || req.Get("view_id").String() != "view-id-1" {
		t.Fatalf("unexpected request %s", req.Raw)
	}
	conn.deliver(`{"id":"` + req.Get("id").String() + `","error":"permission denied"}`)

	var re *ReplyError
	if err := <-errc; !errors.As(err, &re) || re.Message != "permission denied" {
		t.Errorf("expected ReplyError, got %v", err)
	}
}

func TestClientRequestTimeout(t *testing.T) {
	c, conn, _ := startClient(t, WithRequestTimeout(20*time.Millisecond))

	errc := make(chan error, 1)
	go func() {
		_, err := c.NewView(context.Background(), "a.txt")
		errc <- err
	}()
	conn.next(t)

	if err := <-errc; !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestClientTransportFailure(t *testing.T) {
	conn := newFakeConn()
	conn.writeErr = errors.New("broken pipe")
	c := NewClient(conn)
	c.mu.Lock()
	c.viewID = "v"
	c.mu.Unlock()

	if err := c.Edit(Undo); err != nil {
		t.Fatalf("queue: %v", err)
	}
	err := c.Run(context.Background())

	var te *TransportError
	if !errors.As(err, &te) || te.Op != "write" {
		t.Fatalf("expected write TransportError, got %v", err)
	}

	var statuses []StatusEvent
	for ev := range c.Events() {
		if s, ok := ev.(StatusEvent); ok {
			statuses = append(statuses, s)
		}
	}
	if len(statuses) != 2 || !statuses[0].Connected || statuses[1].Connected || statuses[1].Err == nil {
		t.Errorf("expected connected then disconnected with error, got %+v", statuses)
	}
}

func TestClientCloseEndsRun(t *testing.T) {
	c, _, errc := startClient(t)
	c.Close()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	if err := c.Insert("x"); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown after close, got %v", err)
	}
}
