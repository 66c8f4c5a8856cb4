package schema

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side identifies the order direction.
type Side string

const (
	// SideBuy places a bid.
	SideBuy Side = "BUY"
	// SideSell places an offer.
	SideSell Side = "SELL"
)

// ParseSide normalises an exchange side string.
func ParseSide(input string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return "", fmt.Errorf("schema: unsupported side %q", input)
	}
}

// OrderType identifies the execution style requested for an order.
type OrderType string

const (
	// OrderTypeLimit rests at the given price.
	OrderTypeLimit OrderType = "LIMIT"
	// OrderTypeMarket crosses the book immediately.
	OrderTypeMarket OrderType = "MARKET"
)

// TimeInForce controls how long an order remains active before cancellation.
type TimeInForce string

const (
	// TimeInForceGTC keeps the order until cancelled.
	TimeInForceGTC TimeInForce = "GTC"
	// TimeInForceIOC fills what it can and cancels the rest.
	TimeInForceIOC TimeInForce = "IOC"
	// TimeInForceFOK fills entirely or cancels.
	TimeInForceFOK TimeInForce = "FOK"
)

// OrderRequest carries the caller-supplied order parameters. Price and
// TimeInForce are pointers: nil means the key is omitted from the encoded
// request entirely, not sent empty.
type OrderRequest struct {
	Side          Side
	Quantity      string
	Type          OrderType
	Price         *string
	TimeInForce   *TimeInForce
	ClientOrderID string
}

// OrderStatus is the result of an order placement, cancellation or query.
// The order id is exchange-assigned and unique per account; the caller owns
// any further tracking.
type OrderStatus struct {
	OrderID       int64
	ClientOrderID string
	Symbol        string
	Status        string
	Side          Side
	Type          OrderType
	TimeInForce   TimeInForce
	Price         decimal.Decimal
	AvgPrice      decimal.Decimal
	OrigQuantity  decimal.Decimal
	ExecutedQty   decimal.Decimal
}
