// Package schema defines the domain models exchanged between the connector layers.
package schema

import "strings"

// Contract describes a tradable futures instrument. Instances are built once
// from exchange metadata at startup and are read-only thereafter; Symbol is the
// sole lookup key everywhere.
type Contract struct {
	Symbol            string
	BaseAsset         string
	QuoteAsset        string
	PricePrecision    int
	QuantityPrecision int
	TickSize          string
	StepSize          string
}

// StreamName returns the lower-cased stream identifier for the given channel,
// e.g. "btcusdt@bookTicker".
func (c Contract) StreamName(channel string) string {
	return strings.ToLower(c.Symbol) + "@" + channel
}
