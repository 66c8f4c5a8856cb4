package binance

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"

	"github.com/driftline/binancefutures/config"
	"github.com/driftline/binancefutures/errs"
	"github.com/driftline/binancefutures/internal/observability"
	"github.com/driftline/binancefutures/internal/pricebook"
	"github.com/driftline/binancefutures/internal/schema"
)

// Client is the Binance USDT-margined futures connector. It owns the signed
// REST surface, the streaming market-data connection and the shared price
// cache, and hands callers immutable snapshots of everything it holds.
type Client struct {
	cfg config.Settings

	httpClient *http.Client
	limiter    *rate.Limiter
	clock      func() time.Time

	book    *pricebook.Book
	metrics *connectorMetrics
	notices *noticeLog

	contractsMu sync.RWMutex
	contracts   map[string]schema.Contract

	balancesMu sync.RWMutex
	balances   map[string]schema.Balance

	stream *streamManager

	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// Option customizes a Client before it connects.
type Option func(*Client)

// WithHTTPClient substitutes the transport used for REST calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithClock substitutes the time source used for request timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New validates the settings, performs the startup REST loads and starts the
// streaming connection. A failed contract or balance load is recorded as a
// notice and the connector continues with an empty collection; only invalid
// settings abort construction.
func New(ctx context.Context, cfg config.Settings, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		clock:       time.Now,
		book:        pricebook.New(),
		metrics:     newConnectorMetrics(string(cfg.Network)),
		notices:     nil,
		contractsMu: sync.RWMutex{},
		contracts:   make(map[string]schema.Contract),
		balancesMu:  sync.RWMutex{},
		balances:    make(map[string]schema.Balance),
		stream:      nil,
		cancel:      cancel,
		wg:          conc.WaitGroup{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.notices = newNoticeLog(c.clock)

	if _, failure := c.Contracts(clientCtx); failure != nil {
		c.notices.add("contract list unavailable: " + failure.Error())
	}

	if c.cfg.Credentials.Configured() {
		if _, failure := c.Balances(clientCtx); failure != nil {
			c.notices.add("account balances unavailable: " + failure.Error())
		}
	} else {
		c.notices.add("no api credentials configured, account endpoints disabled")
		observability.Log().Info("running without credentials",
			observability.F("network", string(c.cfg.Network)))
	}

	c.stream = newStreamManager(clientCtx, c.cfg.WebsocketURL,
		c.cfg.HandshakeTimeout, c.cfg.ReconnectDelay,
		c.handleStreamMessage, c.streamNames, c.notices.add, c.metrics)
	c.wg.Go(c.stream.run)

	return c, nil
}

// Close stops the streaming connection and waits for background work to end.
func (c *Client) Close() {
	c.stream.stop()
	c.cancel()
	c.wg.Wait()
}

// Quote returns the last cached top-of-book for the symbol.
func (c *Client) Quote(symbol string) (schema.Quote, bool) {
	return c.book.Get(symbol)
}

// KnownContracts returns a snapshot of the contracts loaded at startup or by
// the latest successful Contracts call.
func (c *Client) KnownContracts() map[string]schema.Contract {
	c.contractsMu.RLock()
	defer c.contractsMu.RUnlock()
	return snapshotContracts(c.contracts)
}

// KnownBalances returns a snapshot of the balances from the latest successful
// Balances call.
func (c *Client) KnownBalances() map[string]schema.Balance {
	c.balancesMu.RLock()
	defer c.balancesMu.RUnlock()
	return snapshotBalances(c.balances)
}

// Contract looks up a single known contract by symbol.
func (c *Client) Contract(symbol string) (schema.Contract, *errs.E) {
	c.contractsMu.RLock()
	contract, ok := c.contracts[symbol]
	c.contractsMu.RUnlock()
	if !ok {
		return schema.Contract{}, errs.New(exchangeName, errs.CodeInvalid,
			errs.WithMessage("unknown contract symbol"),
			errs.WithRawMessage(symbol))
	}
	return contract, nil
}

// Notices returns connector notices not yet shown, marking them displayed.
func (c *Client) Notices() []Notice {
	return c.notices.drain()
}

// streamNames builds the book-ticker stream list for every known contract,
// sorted for a stable subscribe payload.
func (c *Client) streamNames() []string {
	c.contractsMu.RLock()
	defer c.contractsMu.RUnlock()

	names := make([]string, 0, len(c.contracts))
	for _, contract := range c.contracts {
		names = append(names, contract.StreamName(channelBookTicker))
	}
	sort.Strings(names)
	return names
}
