package binance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"
	json "github.com/goccy/go-json"

	"github.com/driftline/binancefutures/internal/observability"
)

// streamManager owns the persistent market-data connection. It cycles
// Disconnected -> Connecting -> Subscribing -> Streaming and falls back to
// Connecting after any failure, waiting a fixed delay between attempts. It has
// no terminal state: only context cancellation stops it.
type streamManager struct {
	url              string
	handshakeTimeout time.Duration
	retry            backoff.BackOff

	ctx    context.Context
	cancel context.CancelFunc

	conn   *websocket.Conn
	connMu sync.RWMutex

	msgIDGen atomic.Uint64

	handler func([]byte)
	streams func() []string
	notify  func(string)
	metrics *connectorMetrics
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     uint64   `json:"id"`
}

type subscribeResponse struct {
	Result *json.RawMessage `json:"result"`
	ID     uint64           `json:"id"`
	Error  *wsError         `json:"error,omitempty"`
}

type wsError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func newStreamManager(ctx context.Context, url string, handshakeTimeout, reconnectDelay time.Duration, handler func([]byte), streams func() []string, notify func(string), metrics *connectorMetrics) *streamManager {
	managerCtx, cancel := context.WithCancel(ctx)
	return &streamManager{
		url:              url,
		handshakeTimeout: handshakeTimeout,
		retry:            backoff.NewConstantBackOff(reconnectDelay),
		ctx:              managerCtx,
		cancel:           cancel,
		conn:             nil,
		connMu:           sync.RWMutex{},
		msgIDGen:         atomic.Uint64{},
		handler:          handler,
		streams:          streams,
		notify:           notify,
		metrics:          metrics,
	}
}

// run drives the connection until the context is cancelled.
func (sm *streamManager) run() {
	for {
		select {
		case <-sm.ctx.Done():
			return
		default:
		}

		conn, err := sm.dial()
		if err != nil {
			observability.Log().Error("stream connect failed",
				observability.F("url", sm.url),
				observability.F("error", err.Error()))
			if !sm.sleep() {
				return
			}
			continue
		}

		sm.setConn(conn)
		sm.metrics.reconnect()
		sm.notify("binance connection opened")
		observability.Log().Info("stream connected", observability.F("url", sm.url))

		// No handshake acknowledgment is awaited: data frames are processed
		// as soon as they arrive after the subscribe request goes out.
		sm.subscribeAll()

		err = sm.readLoop(conn)
		sm.setConn(nil)
		if errors.Is(err, context.Canceled) || sm.ctx.Err() != nil {
			return
		}

		sm.notify("binance connection closed")
		observability.Log().Warn("stream disconnected",
			observability.F("url", sm.url),
			observability.F("error", errString(err)))

		if !sm.sleep() {
			return
		}
	}
}

// stop cancels the manager and closes any live connection.
func (sm *streamManager) stop() {
	sm.cancel()
	sm.connMu.Lock()
	if sm.conn != nil {
		_ = sm.conn.Close(websocket.StatusNormalClosure, "shutdown")
		sm.conn = nil
	}
	sm.connMu.Unlock()
}

func (sm *streamManager) dial() (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(sm.ctx, sm.handshakeTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, sm.url, nil)
	return conn, err
}

func (sm *streamManager) setConn(conn *websocket.Conn) {
	sm.connMu.Lock()
	sm.conn = conn
	sm.connMu.Unlock()
}

// subscribeAll sends one SUBSCRIBE request covering every currently-known
// stream. The request id increments whether or not the send succeeds; a send
// failure is not retried here, the next reconnect re-subscribes.
func (sm *streamManager) subscribeAll() {
	streams := sm.streams()
	if len(streams) == 0 {
		return
	}

	req := subscribeRequest{
		Method: "SUBSCRIBE",
		Params: streams,
		ID:     sm.msgIDGen.Add(1),
	}
	if err := sm.send(req); err != nil {
		observability.Log().Error("stream subscribe failed",
			observability.F("streams", len(streams)),
			observability.F("error", err.Error()))
		return
	}
	sm.metrics.subscribeSent()
	observability.Log().Info("stream subscribed",
		observability.F("streams", len(streams)),
		observability.F("id", req.ID))
}

func (sm *streamManager) send(req subscribeRequest) error {
	sm.connMu.RLock()
	conn := sm.conn
	sm.connMu.RUnlock()
	if conn == nil {
		return errors.New("websocket not connected")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(sm.ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

// readLoop consumes frames until the connection breaks. Control responses to
// subscribe requests are consumed here; everything else goes to the handler.
func (sm *streamManager) readLoop(conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.Read(sm.ctx)
		if err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var resp subscribeResponse
		if err := json.Unmarshal(data, &resp); err == nil && resp.ID > 0 {
			if resp.Error != nil {
				observability.Log().Error("stream subscribe rejected",
					observability.F("id", resp.ID),
					observability.F("code", resp.Error.Code),
					observability.F("msg", resp.Error.Msg))
			}
			continue
		}

		sm.handler(data)
	}
}

// sleep waits out the fixed reconnect delay, reporting false on cancellation.
func (sm *streamManager) sleep() bool {
	timer := time.NewTimer(sm.retry.NextBackOff())
	defer timer.Stop()
	select {
	case <-sm.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
