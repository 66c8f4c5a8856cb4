package binance

import (
	"testing"
)

func TestHandleStreamMessageUpsertsQuote(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	c.handleStreamMessage([]byte(`{"e":"bookTicker","u":400900217,"s":"BTCUSDT","b":"42000.10","B":"31.2","a":"42000.20","A":"40.6"}`))

	quote, ok := c.Quote("BTCUSDT")
	if !ok {
		t.Fatal("book ticker frame did not populate the cache")
	}
	if quote.Bid != 42000.10 || quote.Ask != 42000.20 {
		t.Fatalf("quote = %+v", quote)
	}
}

func TestHandleStreamMessageOverwritesBothSides(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	c.handleStreamMessage([]byte(`{"e":"bookTicker","s":"BTCUSDT","b":"42000.10","a":"42000.20"}`))
	c.handleStreamMessage([]byte(`{"e":"bookTicker","s":"BTCUSDT","b":"41999.90","a":"42000.00"}`))

	quote, _ := c.Quote("BTCUSDT")
	if quote.Bid != 41999.90 || quote.Ask != 42000.00 {
		t.Fatalf("quote = %+v, want both sides replaced", quote)
	}
}

func TestHandleStreamMessageIgnoresOtherEvents(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	c.handleStreamMessage([]byte(`{"e":"aggTrade","s":"BTCUSDT","p":"42000.15"}`))
	c.handleStreamMessage([]byte(`{"result":null,"id":1}`))

	if _, ok := c.Quote("BTCUSDT"); ok {
		t.Fatal("non book-ticker event reached the cache")
	}
}

func TestHandleStreamMessageDropsEmptySymbol(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	c.handleStreamMessage([]byte(`{"e":"bookTicker","b":"42000.10","a":"42000.20"}`))
	c.handleStreamMessage([]byte(`{"e":"bookTicker","s":"","b":"42000.10","a":"42000.20"}`))

	if _, ok := c.Quote(""); ok {
		t.Fatal("frame without symbol created a cache entry under the empty key")
	}
	if c.book.Len() != 0 {
		t.Fatalf("cache has %d entries, want 0", c.book.Len())
	}
}

func TestHandleStreamMessageSurvivesMalformedFrames(t *testing.T) {
	installRecorder(t)
	c := newTestClient(t, "http://127.0.0.1:0", false)

	c.handleStreamMessage([]byte(`{not json`))
	c.handleStreamMessage([]byte(`{"e":"bookTicker","s":"BTCUSDT","b":"not-a-number","a":"42000.20"}`))
	c.handleStreamMessage([]byte(`{"e":"bookTicker","s":"BTCUSDT","b":"42000.10","a":"oops"}`))

	if _, ok := c.Quote("BTCUSDT"); ok {
		t.Fatal("malformed frame reached the cache")
	}

	// A good frame after garbage still lands.
	c.handleStreamMessage([]byte(`{"e":"bookTicker","s":"BTCUSDT","b":"42000.10","a":"42000.20"}`))
	if _, ok := c.Quote("BTCUSDT"); !ok {
		t.Fatal("stream handling stopped after a malformed frame")
	}
}
