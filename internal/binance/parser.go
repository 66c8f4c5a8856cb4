package binance

import (
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/driftline/binancefutures/internal/observability"
)

const channelBookTicker = "bookTicker"

// bookTickerEvent is the inbound stream payload for top-of-book updates.
// Fields beyond the event type, symbol and prices are ignored.
type bookTickerEvent struct {
	Event    string `json:"e"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	AskPrice string `json:"a"`
}

// handleStreamMessage dispatches one inbound frame. Messages with another or
// missing event type are ignored; malformed frames are dropped without
// stopping the stream.
func (c *Client) handleStreamMessage(data []byte) {
	var event bookTickerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.metrics.frameDropped()
		observability.Log().Debug("dropped undecodable stream frame",
			observability.F("error", err.Error()))
		return
	}
	if event.Event != channelBookTicker {
		return
	}
	if event.Symbol == "" {
		c.metrics.frameDropped()
		observability.Log().Debug("dropped book ticker without symbol")
		return
	}

	bid, err := strconv.ParseFloat(event.BidPrice, 64)
	if err != nil {
		c.metrics.frameDropped()
		observability.Log().Debug("dropped book ticker with bad bid",
			observability.F("symbol", event.Symbol),
			observability.F("bid", event.BidPrice))
		return
	}
	ask, err := strconv.ParseFloat(event.AskPrice, 64)
	if err != nil {
		c.metrics.frameDropped()
		observability.Log().Debug("dropped book ticker with bad ask",
			observability.F("symbol", event.Symbol),
			observability.F("ask", event.AskPrice))
		return
	}

	c.book.Upsert(event.Symbol, bid, ask)
	c.metrics.frameHandled()
}
