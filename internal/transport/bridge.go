// Package transport owns the single logical connection to the gateway:
// the connect/disconnect state machine, the heartbeat, the pending
// request table and the per-connection handler registrations. Inbound
// frames are dispatched in receipt order on one read goroutine.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/contract"
	"github.com/voco-chat/bridge/internal/router"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Handler receives the raw payload of one inbound named event.
type Handler func(data json.RawMessage)

// Options configure a Bridge. Zero values fall back to the protocol
// defaults.
type Options struct {
	URL               string
	Dialer            Dialer
	RequestTimeout    time.Duration
	RequestRetries    int
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	ReconnectDelay    time.Duration
	ReconnectDelayMax time.Duration
	Metrics           *Metrics
	Now               func() time.Time
}

func (o *Options) withDefaults() {
	if o.RequestTimeout == 0 {
		o.RequestTimeout = 5 * time.Second
	}
	if o.RequestRetries == 0 {
		o.RequestRetries = 10
	}
	if o.HeartbeatInterval == 0 {
		o.HeartbeatInterval = 30 * time.Second
	}
	if o.HeartbeatTimeout == 0 {
		o.HeartbeatTimeout = 5 * time.Second
	}
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = time.Second
	}
	if o.ReconnectDelayMax == 0 {
		o.ReconnectDelayMax = 20 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type handlerEntry struct {
	id uint64
	fn Handler
}

type ackResult struct {
	data json.RawMessage
	err  error
}

// Bridge maintains one logical connection with explicit lifecycle. No
// process-wide singletons: independent bridges coexist, which is how the
// tests run.
type Bridge struct {
	opts   Options
	router *router.Router

	mu            sync.Mutex
	state         State
	conn          Conn
	gen           uint64
	handlerID     uint64
	handlers      map[string][]handlerEntry
	seq           uint64
	pending       map[uint64]chan ackResult
	hbSeq         uint64
	hbSent        map[uint64]time.Time
	latencyMillis int64
	everConnected bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options, r *router.Router) *Bridge {
	opts.withDefaults()
	return &Bridge{
		opts:     opts,
		router:   r,
		handlers: make(map[string][]handlerEntry),
		pending:  make(map[uint64]chan ackResult),
		hbSent:   make(map[uint64]time.Time),
	}
}

// Start launches the connect loop. It returns immediately; connection
// state is observable through the router's connect/disconnect events.
func (b *Bridge) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.done = make(chan struct{})
	b.mu.Unlock()
	go b.run(ctx)
}

// Stop tears the connection down and waits for the loop to exit.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel, done, conn := b.cancel, b.done, b.conn
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		_ = conn.Close()
	}
	<-done
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// LatencyMillis is the round trip of the last acknowledged heartbeat.
func (b *Bridge) LatencyMillis() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latencyMillis
}

func (b *Bridge) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	delay := b.opts.ReconnectDelay
	for {
		if ctx.Err() != nil {
			return
		}
		b.setState(StateConnecting)
		conn, err := b.opts.Dialer.Dial(ctx, b.opts.URL)
		if err != nil {
			b.setState(StateError)
			event := contract.EventConnectError
			b.mu.Lock()
			if b.everConnected {
				event = contract.EventReconnectError
			}
			b.mu.Unlock()
			log.Warn().Err(err).Str("module", "transport").Str("url", b.opts.URL).Msg("dial failed")
			b.router.Publish(event, apperr.Server(apperr.PartTransport, apperr.TagDisconnected, err.Error()))
			b.setState(StateDisconnected)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, b.opts.ReconnectDelayMax)
			continue
		}
		delay = b.opts.ReconnectDelay
		if b.opts.Metrics != nil {
			b.mu.Lock()
			again := b.everConnected
			b.mu.Unlock()
			if again {
				b.opts.Metrics.Reconnects.Inc()
			}
		}

		connCtx, connCancel := context.WithCancel(ctx)
		go func() {
			<-connCtx.Done()
			_ = conn.Close()
		}()

		b.onConnected(connCtx, conn)
		readErr := b.readLoop(conn)
		connCancel()
		b.onDisconnected(readErr)

		if ctx.Err() != nil {
			return
		}
	}
}

// onConnected flips the state machine: bump the connection generation,
// drop every stale handler registration from the previous generation,
// re-register the full contract handler set, then start the heartbeat.
// This clear-then-reregister discipline is what keeps delivery
// exactly-once across reconnects.
func (b *Bridge) onConnected(ctx context.Context, conn Conn) {
	b.mu.Lock()
	b.conn = conn
	b.gen++
	b.handlers = make(map[string][]handlerEntry)
	b.state = StateConnected
	b.everConnected = true
	b.mu.Unlock()

	b.registerContract()
	go b.heartbeatLoop(ctx, conn)

	log.Info().Str("module", "transport").Str("url", b.opts.URL).Msg("connected")
	b.router.Publish(contract.EventConnect, nil)
}

// onDisconnected stops the heartbeat (its context died with the
// connection), deregisters all handlers and fails every outstanding
// request. Requests never retry across a reconnect boundary.
func (b *Bridge) onDisconnected(cause error) {
	b.mu.Lock()
	b.conn = nil
	b.state = StateDisconnected
	b.handlers = make(map[string][]handlerEntry)
	stale := b.pending
	b.pending = make(map[uint64]chan ackResult)
	b.hbSent = make(map[uint64]time.Time)
	b.mu.Unlock()

	for _, ch := range stale {
		ch <- ackResult{err: apperr.Server(apperr.PartTransport, apperr.TagDisconnected, "not connected")}
	}
	log.Warn().Err(cause).Str("module", "transport").Int("failed_requests", len(stale)).Msg("disconnected")
	b.router.Publish(contract.EventDisconnect, nil)
}

func (b *Bridge) readLoop(conn Conn) error {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		b.dispatch(data)
	}
}

func (b *Bridge) dispatch(data []byte) {
	var frame contract.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Warn().Err(err).Str("module", "transport").Msg("bad frame")
		return
	}
	switch frame.Type {
	case contract.FrameAck:
		b.resolveAck(frame)
	case contract.FrameHeartbeatAck:
		b.resolveHeartbeat(frame)
	default:
		b.mu.Lock()
		list := make([]handlerEntry, len(b.handlers[frame.Type]))
		copy(list, b.handlers[frame.Type])
		b.mu.Unlock()
		for _, h := range list {
			h.fn(frame.Data)
		}
	}
}

// Subscribe registers a handler for an inbound named event on the
// current connection generation. All handlers for one event run in
// subscription order for every delivered occurrence.
func (b *Bridge) Subscribe(event string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlerID++
	id := b.handlerID
	gen := b.gen
	b.handlers[event] = append(b.handlers[event], handlerEntry{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen != gen {
			// Registration already cleared by a reconnect.
			return
		}
		list := b.handlers[event]
		for i, e := range list {
			if e.id == id {
				b.handlers[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// registerContract wires every server→client event to the router, with
// payload decoding per the contract.
func (b *Bridge) registerContract() {
	for _, name := range contract.ServerEvents {
		event := name
		b.Subscribe(event, func(data json.RawMessage) {
			payload, err := contract.DecodeServerEvent(event, data)
			if err != nil {
				log.Warn().Err(err).Str("module", "transport").Str("event", event).Msg("undecodable payload")
				return
			}
			b.router.Publish(event, payload)
		})
	}
}

// Send is best-effort: marshal failures and transient disconnects are
// logged, never surfaced. Events are not buffered across reconnects.
func (b *Bridge) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "transport").Str("event", event).Msg("send marshal")
		return
	}
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		log.Debug().Str("module", "transport").Str("event", event).Msg("send dropped, not connected")
		return
	}
	if err := b.writeFrame(conn, contract.Frame{Type: event, Data: data}); err != nil {
		log.Warn().Err(err).Str("module", "transport").Str("event", event).Msg("send failed")
	}
}

// Request sends payload and awaits the acknowledgment correlated to this
// call. A timed-out attempt is re-issued with the identical payload up
// to the retry bound; each attempt registers a fresh correlation seq so
// a stale ack for an abandoned attempt is dropped, never mismatched.
// The result is always a value or an error, never a panic or a hang.
func (b *Bridge) Request(ctx context.Context, event string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Validation(apperr.PartTransport, apperr.TagDataInvalid, err.Error())
	}
	policy := RetryPolicy{MaxAttempts: 1 + b.opts.RequestRetries}
	return policy.Do(ctx,
		func(ctx context.Context) (json.RawMessage, error) {
			return b.requestOnce(ctx, event, data)
		},
		func(attempt int, err error) {
			log.Warn().Err(err).Str("module", "transport").Str("event", event).
				Int("attempt", attempt).Msg("retrying request")
			if b.opts.Metrics != nil {
				b.opts.Metrics.RequestRetries.Inc()
			}
		})
}

func (b *Bridge) requestOnce(ctx context.Context, event string, data json.RawMessage) (json.RawMessage, error) {
	b.mu.Lock()
	if b.conn == nil || b.state != StateConnected {
		b.mu.Unlock()
		return nil, apperr.Server(apperr.PartTransport, apperr.TagDisconnected, "not connected")
	}
	b.seq++
	seq := b.seq
	ch := make(chan ackResult, 1)
	b.pending[seq] = ch
	conn := b.conn
	b.mu.Unlock()

	if err := b.writeFrame(conn, contract.Frame{Type: event, Seq: seq, Data: data}); err != nil {
		b.dropPending(seq)
		return nil, apperr.Server(apperr.PartTransport, apperr.TagDisconnected, err.Error())
	}

	timer := time.NewTimer(b.opts.RequestTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.data, res.err
	case <-timer.C:
		b.dropPending(seq)
		return nil, apperr.Server(apperr.PartTransport, apperr.TagTimeout,
			fmt.Sprintf("request %s timed out after %s", event, b.opts.RequestTimeout))
	case <-ctx.Done():
		b.dropPending(seq)
		return nil, apperr.Server(apperr.PartTransport, apperr.TagDisconnected, ctx.Err().Error())
	}
}

func (b *Bridge) dropPending(seq uint64) {
	b.mu.Lock()
	delete(b.pending, seq)
	b.mu.Unlock()
}

func (b *Bridge) resolveAck(frame contract.Frame) {
	var ack contract.Ack
	if err := json.Unmarshal(frame.Data, &ack); err != nil {
		log.Warn().Err(err).Str("module", "transport").Msg("bad ack")
		return
	}
	b.mu.Lock()
	ch, ok := b.pending[frame.Seq]
	delete(b.pending, frame.Seq)
	b.mu.Unlock()
	if !ok {
		// Ack for an abandoned or unknown attempt.
		log.Debug().Str("module", "transport").Uint64("seq", frame.Seq).Msg("stale ack dropped")
		return
	}
	if !ack.OK {
		ch <- ackResult{err: apperr.Server(apperr.PartTransport, apperr.TagExceptionError, ack.Error)}
		return
	}
	ch <- ackResult{data: ack.Data}
}

func (b *Bridge) writeFrame(conn Conn, frame contract.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(data)
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}
