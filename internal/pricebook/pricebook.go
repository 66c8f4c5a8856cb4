// Package pricebook holds the shared top-of-book cache written by both the REST
// layer and the streaming layer. Last write wins per symbol; readers must treat
// the contents as eventually consistent.
package pricebook

import (
	"sync"

	"github.com/driftline/binancefutures/internal/schema"
)

// Book maps instrument symbols to their latest observed quote. Entries are
// created on first observation and updated in place; they are never removed
// while the process runs.
type Book struct {
	mu     sync.RWMutex
	quotes map[string]schema.Quote
}

// New returns an empty price book.
func New() *Book {
	return &Book{quotes: make(map[string]schema.Quote)}
}

// Upsert creates or overwrites the quote for the symbol. Both fields are
// replaced together so readers never observe a half-updated entry.
func (b *Book) Upsert(symbol string, bid, ask float64) {
	b.mu.Lock()
	b.quotes[symbol] = schema.Quote{Bid: bid, Ask: ask}
	b.mu.Unlock()
}

// Get returns the current quote for the symbol, reporting whether the symbol
// has ever been observed.
func (b *Book) Get(symbol string) (schema.Quote, bool) {
	b.mu.RLock()
	quote, ok := b.quotes[symbol]
	b.mu.RUnlock()
	return quote, ok
}

// Len reports how many symbols have been observed.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.quotes)
}

// Symbols returns a snapshot of the observed symbols.
func (b *Book) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.quotes))
	for symbol := range b.quotes {
		out = append(out, symbol)
	}
	return out
}
