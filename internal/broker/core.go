package broker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/xiview/internal/logging"
)

// maxLineSize bounds one engine message.
const maxLineSize = 16 << 20

// Message is one engine message. Responses carry the id of the request
// they answer; notifications have ID 0.
type Message struct {
	ID     int64
	Method string
	Data   []byte
}

// IsResponse returns true if the message answers a request.
func (m Message) IsResponse() bool {
	return m.ID != 0 && m.Method == ""
}

// Core is a JSON-RPC connection to the editing engine. Messages are single
// JSON objects separated by newlines. Responses and notifications are
// delivered on one channel in the order the engine wrote them, so a reply
// is never overtaken by a notification that followed it.
type Core struct {
	reader io.Reader
	writer io.Writer
	closer io.Closer
	logger *logging.Logger

	wmu    sync.Mutex
	nextID atomic.Int64

	messages chan Message

	closed atomic.Bool
	done   chan struct{}
}

// NewCore creates a connection over the given streams. Call Run to start
// reading.
func NewCore(r io.Reader, w io.Writer, c io.Closer, logger *logging.Logger) *Core {
	if logger == nil {
		logger = logging.Null()
	}
	return &Core{
		reader:   r,
		writer:   w,
		closer:   c,
		logger:   logger,
		messages: make(chan Message, 64),
		done:     make(chan struct{}),
	}
}

// process bundles the engine's pipes so closing it stops the process.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func (p *process) Close() error {
	p.stdin.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd.Wait()
	return nil
}

// StartCore launches the engine executable and connects to it. The
// engine's stderr is passed through to the broker's.
func StartCore(ctx context.Context, path string, args []string, logger *logging.Logger) (*Core, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = os.Environ()
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("start %s: %w", path, err)
	}
	return NewCore(stdout, stdin, &process{cmd: cmd, stdin: stdin}, logger), nil
}

// Messages returns engine messages in arrival order. The channel is
// closed when Run returns.
func (c *Core) Messages() <-chan Message {
	return c.messages
}

// Run reads engine messages until the stream ends or ctx is cancelled.
func (c *Core) Run(ctx context.Context) error {
	defer close(c.messages)

	scanner := bufio.NewScanner(c.reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		if !gjson.ValidBytes(data) {
			c.logger.Warn("engine sent invalid JSON: %.80s", data)
			continue
		}

		fields := gjson.GetManyBytes(data, "id", "method")
		msg := Message{ID: fields[0].Int(), Method: fields[1].String(), Data: make([]byte, len(data))}
		copy(msg.Data, data)

		select {
		case c.messages <- msg:
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		}
	}
	if err := scanner.Err(); err != nil && !c.closed.Load() {
		return fmt.Errorf("read engine: %w", err)
	}
	return nil
}

// NextID reserves a request id.
func (c *Core) NextID() int64 {
	return c.nextID.Add(1)
}

// Request sends a request with an id from NextID. The response arrives on
// Messages.
func (c *Core) Request(id int64, method string, params []byte) error {
	if c.closed.Load() {
		return ErrCoreClosed
	}
	return c.send(method, params, id)
}

// Notify sends a request without an id.
func (c *Core) Notify(method string, params []byte) error {
	if c.closed.Load() {
		return ErrCoreClosed
	}
	return c.send(method, params, 0)
}

// send writes one message. id 0 omits the id.
func (c *Core) send(method string, params []byte, id int64) error {
	msg, err := sjson.SetBytes([]byte(`{}`), "method", method)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	if len(params) > 0 {
		if msg, err = sjson.SetRawBytes(msg, "params", params); err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
	}
	if id != 0 {
		if msg, err = sjson.SetBytes(msg, "id", id); err != nil {
			return fmt.Errorf("encode %s id: %w", method, err)
		}
	}
	msg = append(msg, '\n')

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.writer.Write(msg); err != nil {
		return fmt.Errorf("write %s: %w", method, err)
	}
	return nil
}

// Closed returns true once Close has been called.
func (c *Core) Closed() bool {
	return c.closed.Load()
}

// Close closes the connection and stops the engine if this Core started it.
func (c *Core) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// responseError extracts the error of a response, if any.
func responseError(data []byte) error {
	e := gjson.GetBytes(data, "error")
	if !e.Exists() || e.Type == gjson.Null {
		return nil
	}
	if e.IsObject() {
		return &RPCError{Code: int(e.Get("code").Int()), Message: e.Get("message").String()}
	}
	return &RPCError{Message: e.String()}
}
