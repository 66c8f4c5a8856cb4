package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/driftline/binancefutures/errs"
	"github.com/driftline/binancefutures/internal/observability"
	"github.com/driftline/binancefutures/internal/schema"
)

const (
	exchangeName = "binance"

	endpointExchangeInfo = "/fapi/v1/exchangeInfo"
	endpointKlines       = "/fapi/v1/klines"
	endpointBookTicker   = "/fapi/v1/ticker/bookTicker"
	endpointAccount      = "/fapi/v2/account"
	endpointOrder        = "/fapi/v1/order"

	// The exchange caps a single klines response at 1000 bars.
	klinesLimit = 1000

	apiKeyHeader = "X-MBX-APIKEY"

	errorBodyLimit = 4 << 10
)

type exchangeInfoResponse struct {
	Symbols []exchangeInfoSymbol `json:"symbols"`
}

type exchangeInfoSymbol struct {
	Symbol            string               `json:"symbol"`
	BaseAsset         string               `json:"baseAsset"`
	QuoteAsset        string               `json:"quoteAsset"`
	PricePrecision    int                  `json:"pricePrecision"`
	QuantityPrecision int                  `json:"quantityPrecision"`
	Filters           []exchangeInfoFilter `json:"filters"`
}

type exchangeInfoFilter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize"`
	StepSize   string `json:"stepSize"`
}

type bookTickerResponse struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

type accountResponse struct {
	Assets []accountAsset `json:"assets"`
}

type accountAsset struct {
	Asset            string `json:"asset"`
	WalletBalance    string `json:"walletBalance"`
	UnrealizedProfit string `json:"unrealizedProfit"`
	MarginBalance    string `json:"marginBalance"`
	AvailableBalance string `json:"availableBalance"`
}

type orderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"timeInForce"`
	Price         string `json:"price"`
	AvgPrice      string `json:"avgPrice"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
}

type exchangeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// doRequest builds, optionally signs, sends and reads one REST request.
// Every failure is logged exactly once here; callers translate the body only.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, p *params, signed bool) ([]byte, *errs.E) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		panic(fmt.Sprintf("binance: unsupported HTTP method %q for %s", method, endpoint))
	}
	if p == nil {
		p = newParams()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.failure(errs.New(exchangeName, errs.CodeNetwork,
			errs.WithCall(method, endpoint),
			errs.WithMessage("rate limiter interrupted"),
			errs.WithCause(err)))
	}

	if signed {
		if !c.cfg.Credentials.Configured() {
			return nil, c.failure(errs.New(exchangeName, errs.CodeAuth,
				errs.WithCall(method, endpoint),
				errs.WithMessage("api credentials not configured")))
		}
		if c.cfg.RecvWindow > 0 {
			p.Set("recvWindow", strconv.FormatInt(c.cfg.RecvWindow.Milliseconds(), 10))
		}
		p.Set("timestamp", strconv.FormatInt(c.clock().UTC().UnixMilli(), 10))
		p.Set("signature", signPayload(p.Encode(), c.cfg.Credentials.APISecret))
	}

	fullURL := c.cfg.RESTBaseURL + endpoint
	if p.Len() > 0 {
		fullURL += "?" + p.Encode()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.HTTPTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, method, fullURL, nil)
	if err != nil {
		return nil, c.failure(errs.New(exchangeName, errs.CodeInvalid,
			errs.WithCall(method, endpoint),
			errs.WithMessage("build request"),
			errs.WithCause(err)))
	}
	if signed {
		req.Header.Set(apiKeyHeader, c.cfg.Credentials.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.failure(errs.New(exchangeName, errs.CodeNetwork,
			errs.WithCall(method, endpoint),
			errs.WithMessage("transport failure"),
			errs.WithCause(err)))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		envelope := errs.New(exchangeName, errs.CodeExchange,
			errs.WithCall(method, endpoint),
			errs.WithHTTP(resp.StatusCode),
			errs.WithRawMessage(strings.TrimSpace(string(body))))
		var exErr exchangeError
		if decodeErr := json.Unmarshal(body, &exErr); decodeErr == nil && exErr.Code != 0 {
			envelope.RawCode = strconv.Itoa(exErr.Code)
		}
		return nil, c.failure(envelope)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.failure(errs.New(exchangeName, errs.CodeNetwork,
			errs.WithCall(method, endpoint),
			errs.WithMessage("read response body"),
			errs.WithCause(err)))
	}
	return body, nil
}

// failure logs the envelope once, counts it, and returns it unchanged.
func (c *Client) failure(e *errs.E) *errs.E {
	observability.Log().Error("rest request failed",
		observability.F("method", e.Method),
		observability.F("endpoint", e.Endpoint),
		observability.F("status", e.HTTP),
		observability.F("error", e.Error()),
	)
	c.metrics.restFailure(e)
	return e
}

func (c *Client) decodeFailure(method, endpoint string, cause error) *errs.E {
	return c.failure(errs.New(exchangeName, errs.CodeExchange,
		errs.WithCall(method, endpoint),
		errs.WithMessage("decode response"),
		errs.WithCause(cause)))
}

// Contracts fetches the tradable perpetual contracts keyed by symbol and
// replaces the facade's held contract collection wholesale on success.
func (c *Client) Contracts(ctx context.Context) (map[string]schema.Contract, *errs.E) {
	body, failure := c.doRequest(ctx, http.MethodGet, endpointExchangeInfo, nil, false)
	if failure != nil {
		return nil, failure
	}

	var payload exchangeInfoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, c.decodeFailure(http.MethodGet, endpointExchangeInfo, err)
	}

	// Every listed symbol is indexed, whatever its contract type or trading
	// status; callers decide what they are willing to trade.
	contracts := make(map[string]schema.Contract, len(payload.Symbols))
	for _, sym := range payload.Symbols {
		contract := schema.Contract{
			Symbol:            strings.ToUpper(strings.TrimSpace(sym.Symbol)),
			BaseAsset:         strings.ToUpper(strings.TrimSpace(sym.BaseAsset)),
			QuoteAsset:        strings.ToUpper(strings.TrimSpace(sym.QuoteAsset)),
			PricePrecision:    sym.PricePrecision,
			QuantityPrecision: sym.QuantityPrecision,
			TickSize:          "",
			StepSize:          "",
		}
		if contract.Symbol == "" {
			continue
		}
		for _, filter := range sym.Filters {
			switch strings.ToUpper(strings.TrimSpace(filter.FilterType)) {
			case "PRICE_FILTER":
				contract.TickSize = strings.TrimSpace(filter.TickSize)
			case "LOT_SIZE":
				contract.StepSize = strings.TrimSpace(filter.StepSize)
			}
		}
		contracts[contract.Symbol] = contract
	}

	c.contractsMu.Lock()
	c.contracts = contracts
	c.contractsMu.Unlock()

	return snapshotContracts(contracts), nil
}

// HistoricalCandles fetches up to the most recent 1000 bars for the contract,
// oldest first.
func (c *Client) HistoricalCandles(ctx context.Context, contract schema.Contract, interval string) ([]schema.Candle, *errs.E) {
	p := newParams()
	p.Set("symbol", contract.Symbol)
	p.Set("interval", interval)
	p.Set("limit", strconv.Itoa(klinesLimit))

	body, failure := c.doRequest(ctx, http.MethodGet, endpointKlines, p, false)
	if failure != nil {
		return nil, failure
	}

	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, c.decodeFailure(http.MethodGet, endpointKlines, err)
	}

	candles := make([]schema.Candle, 0, len(raw))
	for _, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, c.decodeFailure(http.MethodGet, endpointKlines, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline converts one heterogeneous kline row
// [openTime, "open", "high", "low", "close", "volume", ...] into a Candle.
func parseKline(row []json.RawMessage) (schema.Candle, error) {
	if len(row) < 6 {
		return schema.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return schema.Candle{}, fmt.Errorf("kline open time: %w", err)
	}
	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return schema.Candle{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return schema.Candle{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		fields[i] = value
	}
	return schema.Candle{
		OpenTime: time.UnixMilli(openTime),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
	}, nil
}

// BidAsk fetches the current top-of-book for the contract and writes it
// through to the price book. A failure never clears an existing cache entry.
func (c *Client) BidAsk(ctx context.Context, contract schema.Contract) (schema.Quote, *errs.E) {
	p := newParams()
	p.Set("symbol", contract.Symbol)

	body, failure := c.doRequest(ctx, http.MethodGet, endpointBookTicker, p, false)
	if failure != nil {
		return schema.Quote{}, failure
	}

	var payload bookTickerResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return schema.Quote{}, c.decodeFailure(http.MethodGet, endpointBookTicker, err)
	}
	bid, err := strconv.ParseFloat(payload.BidPrice, 64)
	if err != nil {
		return schema.Quote{}, c.decodeFailure(http.MethodGet, endpointBookTicker, err)
	}
	ask, err := strconv.ParseFloat(payload.AskPrice, 64)
	if err != nil {
		return schema.Quote{}, c.decodeFailure(http.MethodGet, endpointBookTicker, err)
	}

	c.book.Upsert(contract.Symbol, bid, ask)
	return schema.Quote{Bid: bid, Ask: ask}, nil
}

// Balances fetches the account balances keyed by asset and replaces the
// facade's held snapshot wholesale on success. Requires credentials.
func (c *Client) Balances(ctx context.Context) (map[string]schema.Balance, *errs.E) {
	body, failure := c.doRequest(ctx, http.MethodGet, endpointAccount, newParams(), true)
	if failure != nil {
		return nil, failure
	}

	var payload accountResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, c.decodeFailure(http.MethodGet, endpointAccount, err)
	}

	balances := make(map[string]schema.Balance, len(payload.Assets))
	for _, asset := range payload.Assets {
		balance, err := parseBalance(asset)
		if err != nil {
			return nil, c.decodeFailure(http.MethodGet, endpointAccount, err)
		}
		balances[balance.Asset] = balance
	}

	c.balancesMu.Lock()
	c.balances = balances
	c.balancesMu.Unlock()

	return snapshotBalances(balances), nil
}

// PlaceOrder submits a new order. Price and time-in-force are encoded only
// when the caller provided them; a missing client order id is generated.
func (c *Client) PlaceOrder(ctx context.Context, contract schema.Contract, req schema.OrderRequest) (schema.OrderStatus, *errs.E) {
	p := newParams()
	p.Set("symbol", contract.Symbol)
	p.Set("side", string(req.Side))
	p.Set("quantity", req.Quantity)
	p.Set("type", string(req.Type))
	if req.Price != nil {
		p.Set("price", *req.Price)
	}
	if req.TimeInForce != nil {
		p.Set("timeInForce", string(*req.TimeInForce))
	}
	clientOrderID := strings.TrimSpace(req.ClientOrderID)
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}
	p.Set("newClientOrderId", clientOrderID)

	body, failure := c.doRequest(ctx, http.MethodPost, endpointOrder, p, true)
	if failure != nil {
		return schema.OrderStatus{}, failure
	}
	return c.decodeOrder(http.MethodPost, body)
}

// CancelOrder cancels the referenced order and returns its final status.
func (c *Client) CancelOrder(ctx context.Context, contract schema.Contract, orderID int64) (schema.OrderStatus, *errs.E) {
	p := newParams()
	p.Set("orderId", strconv.FormatInt(orderID, 10))
	p.Set("symbol", contract.Symbol)

	body, failure := c.doRequest(ctx, http.MethodDelete, endpointOrder, p, true)
	if failure != nil {
		return schema.OrderStatus{}, failure
	}
	return c.decodeOrder(http.MethodDelete, body)
}

// OrderStatus queries the current status of the referenced order.
func (c *Client) OrderStatus(ctx context.Context, contract schema.Contract, orderID int64) (schema.OrderStatus, *errs.E) {
	p := newParams()
	p.Set("symbol", contract.Symbol)
	p.Set("orderId", strconv.FormatInt(orderID, 10))

	body, failure := c.doRequest(ctx, http.MethodGet, endpointOrder, p, true)
	if failure != nil {
		return schema.OrderStatus{}, failure
	}
	return c.decodeOrder(http.MethodGet, body)
}

func (c *Client) decodeOrder(method string, body []byte) (schema.OrderStatus, *errs.E) {
	var payload orderResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return schema.OrderStatus{}, c.decodeFailure(method, endpointOrder, err)
	}
	status, err := payload.toOrderStatus()
	if err != nil {
		return schema.OrderStatus{}, c.decodeFailure(method, endpointOrder, err)
	}
	return status, nil
}
