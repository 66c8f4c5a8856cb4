package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	json "github.com/goccy/go-json"

	"github.com/driftline/binancefutures/internal/schema"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func startStream(t *testing.T, c *Client, url string) *streamManager {
	t.Helper()
	sm := newStreamManager(context.Background(), url, 2*time.Second, 20*time.Millisecond,
		c.handleStreamMessage, c.streamNames, c.notices.add, nil)
	go sm.run()
	t.Cleanup(sm.stop)
	return sm
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStreamSubscribesAndFeedsCache(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)
	c.contracts = map[string]schema.Contract{
		"BTCUSDT": {Symbol: "BTCUSDT"},
		"ETHUSDT": {Symbol: "ETHUSDT"},
	}

	subscribes := make(chan subscribeRequest, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "shutdown")

		readCtx, readCancel := context.WithTimeout(r.Context(), 2*time.Second)
		_, data, err := conn.Read(readCtx)
		readCancel()
		if err != nil {
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			t.Errorf("decode subscribe: %v", err)
			return
		}
		subscribes <- req

		writeCtx, writeCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer writeCancel()
		_ = conn.Write(writeCtx, websocket.MessageText, []byte(`{"result":null,"id":1}`))
		_ = conn.Write(writeCtx, websocket.MessageText,
			[]byte(`{"e":"bookTicker","s":"BTCUSDT","b":"42000.10","a":"42000.20"}`))
		<-r.Context().Done()
	}))
	defer server.Close()

	startStream(t, c, wsURL(server))

	select {
	case req := <-subscribes:
		if req.Method != "SUBSCRIBE" {
			t.Fatalf("method = %s", req.Method)
		}
		if req.ID != 1 {
			t.Fatalf("first subscribe id = %d, want 1", req.ID)
		}
		want := []string{"btcusdt@bookTicker", "ethusdt@bookTicker"}
		if len(req.Params) != len(want) || req.Params[0] != want[0] || req.Params[1] != want[1] {
			t.Fatalf("params = %v, want %v", req.Params, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe request received")
	}

	waitFor(t, 2*time.Second, func() bool {
		quote, ok := c.Quote("BTCUSDT")
		return ok && quote.Bid == 42000.10 && quote.Ask == 42000.20
	}, "streamed book ticker never reached the cache")
}

func TestStreamReconnectsAndResubscribes(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)
	c.contracts = map[string]schema.Contract{"BTCUSDT": {Symbol: "BTCUSDT"}}

	var connections atomic.Int64
	subscribes := make(chan subscribeRequest, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}

		readCtx, readCancel := context.WithTimeout(r.Context(), 2*time.Second)
		_, data, err := conn.Read(readCtx)
		readCancel()
		if err == nil {
			var req subscribeRequest
			if json.Unmarshal(data, &req) == nil {
				subscribes <- req
			}
		}

		if n == 1 {
			// Drop the first connection to force a reconnect.
			_ = conn.Close(websocket.StatusGoingAway, "going away")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "shutdown")
		<-r.Context().Done()
	}))
	defer server.Close()

	startStream(t, c, wsURL(server))

	var first, second subscribeRequest
	select {
	case first = <-subscribes:
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe on first connection")
	}
	select {
	case second = <-subscribes:
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe after reconnect")
	}

	if second.ID <= first.ID {
		t.Fatalf("subscribe ids not increasing: %d then %d", first.ID, second.ID)
	}
	if len(second.Params) != 1 || second.Params[0] != "btcusdt@bookTicker" {
		t.Fatalf("resubscribe params = %v", second.Params)
	}
	if connections.Load() < 2 {
		t.Fatalf("connections = %d, want at least 2", connections.Load())
	}

	notices := c.notices.all()
	var opened, closed bool
	for _, notice := range notices {
		if notice.Message == "binance connection opened" {
			opened = true
		}
		if notice.Message == "binance connection closed" {
			closed = true
		}
	}
	if !opened || !closed {
		t.Fatalf("lifecycle notices missing: %+v", notices)
	}
}

func TestStreamStopEndsRunLoop(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "shutdown")
		<-r.Context().Done()
	}))
	defer server.Close()

	sm := newStreamManager(context.Background(), wsURL(server), 2*time.Second, 20*time.Millisecond,
		c.handleStreamMessage, c.streamNames, c.notices.add, nil)
	done := make(chan struct{})
	go func() {
		sm.run()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	sm.stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not stop after cancellation")
	}
}

func TestStreamNoSubscribeWithoutContracts(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "shutdown")
		readCtx, readCancel := context.WithTimeout(r.Context(), 200*time.Millisecond)
		defer readCancel()
		if _, _, err := conn.Read(readCtx); err == nil {
			received <- struct{}{}
		}
	}))
	defer server.Close()

	startStream(t, c, wsURL(server))

	select {
	case <-received:
		t.Fatal("subscribe sent despite empty contract list")
	case <-time.After(400 * time.Millisecond):
	}
}
