// Package broker relays between host clients and the editing engine.
//
// Hosts connect over a WebSocket at /ws and send operation envelopes
// (client_started, new_view, save, edit). The broker translates each into
// an engine JSON-RPC call on the engine's stdio. Engine notifications are
// relayed to every connected host with params renamed to parameters.
// Requests that carry an id are answered with a reply envelope; new_view
// replies carry the engine-issued view id.
//
// The HTTP surface also serves Prometheus metrics at /metrics and a
// liveness probe at /healthz.
package broker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/xiview/internal/logging"
	"github.com/dshills/xiview/internal/protocol"
	"github.com/dshills/xiview/internal/transport"
)

// Default broker settings.
const (
	DefaultCallTimeout = 10 * time.Second
	sessionBuffer      = 256
)

// Broker relays messages between host sessions and one engine.
type Broker struct {
	core    *Core
	logger  *logging.Logger
	timeout time.Duration
	origins []string

	mu       sync.RWMutex
	sessions map[string]*session
	pending  map[int64]*pendingCall
}

type session struct {
	id     string
	out    chan []byte
	cancel context.CancelFunc
	logger *logging.Logger
}

// pendingCall is a host request awaiting the engine's response.
type pendingCall struct {
	req     coreRequest
	session *session
	start   time.Time
	timer   *time.Timer
}

// Option configures a Broker.
type Option func(*Broker)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Broker) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithCallTimeout bounds how long a host waits for an engine response.
func WithCallTimeout(d time.Duration) Option {
	return func(b *Broker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithOriginPatterns allows browser origins matching patterns to open a
// host connection. Same-host origins and clients that send no Origin are
// always allowed.
func WithOriginPatterns(patterns ...string) Option {
	return func(b *Broker) {
		b.origins = append(b.origins, patterns...)
	}
}

// New creates a broker relaying to core.
func New(core *Core, opts ...Option) *Broker {
	b := &Broker{
		core:     core,
		logger:   logging.Null(),
		timeout:  DefaultCallTimeout,
		sessions: make(map[string]*session),
		pending:  make(map[int64]*pendingCall),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handler returns the broker's HTTP routes.
func (b *Broker) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", b.handleWS)
	r.Get("/healthz", b.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run reads the engine and routes its messages until the engine exits or
// ctx is cancelled. Responses go to the session that made the request;
// everything else goes to every session.
func (b *Broker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := b.core.Run(gctx)
		b.logger.Info("engine connection ended")
		return err
	})
	g.Go(func() error {
		for msg := range b.core.Messages() {
			if msg.IsResponse() {
				b.respond(msg)
				continue
			}
			b.broadcast(msg)
		}
		return nil
	})
	return g.Wait()
}

// Sessions returns the number of connected hosts.
func (b *Broker) Sessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

func (b *Broker) broadcast(msg Message) {
	out, method, err := translateCore(msg.Data)
	if err != nil {
		metricErrors.WithLabelValues("engine_message").Inc()
		b.logger.Warn("dropping engine message: %v", err)
		return
	}
	metricMessages.WithLabelValues(directionCoreToHost, method).Inc()
	b.logger.Debug("engine message: %s", method)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.sessions {
		b.deliver(s, out)
	}
}

// deliver queues msg for s. A host that cannot keep up has lost messages;
// it is disconnected rather than left running on a stale cache.
func (b *Broker) deliver(s *session, msg []byte) {
	select {
	case s.out <- msg:
	default:
		metricErrors.WithLabelValues("slow_host").Inc()
		s.logger.Warn("session too slow, disconnecting")
		s.cancel()
	}
}

func (b *Broker) respond(msg Message) {
	call := b.takePending(msg.ID)
	if call == nil {
		b.logger.Debug("engine response %d has no pending request", msg.ID)
		return
	}
	metricCallDuration.WithLabelValues(call.req.Operation).Observe(time.Since(call.start).Seconds())

	err := responseError(msg.Data)
	result := gjson.GetBytes(msg.Data, "result")
	if err != nil {
		metricErrors.WithLabelValues("engine_call").Inc()
		call.session.logger.Warn("%s failed: %v", call.req.Operation, err)
	} else if call.req.Operation == protocol.OperationNewView {
		call.session.logger.Info("new view: %s", result.String())
	}
	b.deliver(call.session, replyEnvelope(call.req, result, err))
}

func (b *Broker) takePending(id int64) *pendingCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	call, ok := b.pending[id]
	if !ok {
		return nil
	}
	delete(b.pending, id)
	call.timer.Stop()
	return call
}

func (b *Broker) addSession(s *session) {
	b.mu.Lock()
	b.sessions[s.id] = s
	b.mu.Unlock()
	metricSessions.Inc()
}

// removeSession forgets s and its outstanding requests.
func (b *Broker) removeSession(s *session) {
	b.mu.Lock()
	delete(b.sessions, s.id)
	for id, call := range b.pending {
		if call.session == s {
			call.timer.Stop()
			delete(b.pending, id)
		}
	}
	b.mu.Unlock()
	metricSessions.Dec()
}

func (b *Broker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if b.core.Closed() {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (b *Broker) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := transport.Accept(w, r, b.origins...)
	if err != nil {
		b.logger.Warn("websocket accept failed: %v", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id := uuid.NewString()
	s := &session{
		id:     id,
		out:    make(chan []byte, sessionBuffer),
		cancel: cancel,
		logger: b.logger.WithField("session", id),
	}
	b.addSession(s)
	defer b.removeSession(s)
	s.logger.Info("host connected from %s", r.RemoteAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg := <-s.out:
				if err := ws.Write(gctx, msg); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		for {
			data, err := ws.Read(gctx)
			if err != nil {
				return err
			}
			b.relay(s, data)
		}
	})

	err = g.Wait()
	if err != nil && !transport.IsNormalClosure(err) && !errors.Is(err, context.Canceled) {
		s.logger.Debug("host session ended: %v", err)
	}
	s.logger.Info("host disconnected")
}

// relay forwards one host envelope to the engine.
func (b *Broker) relay(s *session, data []byte) {
	req, err := translateHost(data)
	if err != nil {
		metricErrors.WithLabelValues("host_message").Inc()
		s.logger.Warn("dropping host message: %v", err)
		return
	}
	metricMessages.WithLabelValues(directionHostToCore, req.Operation).Inc()
	if req.Operation == protocol.OperationEdit {
		s.logger.Debug("relaying edit %s", req.Params)
	} else {
		s.logger.Info("relaying %s", req.Operation)
	}

	if req.ID == "" {
		if err := b.core.Notify(req.Method, req.Params); err != nil {
			metricErrors.WithLabelValues("engine_write").Inc()
			s.logger.Warn("relay %s: %v", req.Operation, err)
		}
		return
	}

	// Register before writing so the response cannot arrive unrouted.
	id := b.core.NextID()
	b.mu.Lock()
	b.pending[id] = &pendingCall{
		req:     req,
		session: s,
		start:   time.Now(),
		timer:   time.AfterFunc(b.timeout, func() { b.expire(id) }),
	}
	b.mu.Unlock()

	if err := b.core.Request(id, req.Method, req.Params); err != nil {
		b.takePending(id)
		metricErrors.WithLabelValues("engine_write").Inc()
		s.logger.Warn("relay %s: %v", req.Operation, err)
		b.deliver(s, replyEnvelope(req, gjson.Result{}, err))
	}
}

// expire answers a request the engine did not respond to in time.
func (b *Broker) expire(id int64) {
	b.mu.Lock()
	call, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	metricErrors.WithLabelValues("engine_timeout").Inc()
	err := fmt.Errorf("%s: engine did not respond within %s", call.req.Operation, b.timeout)
	call.session.logger.Warn("%v", err)
	b.deliver(call.session, replyEnvelope(call.req, gjson.Result{}, err))
}
