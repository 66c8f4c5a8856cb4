package binance

import (
	"net/url"
	"strings"
)

// params is an insertion-ordered request parameter list. Order matters because
// the request signature is computed over the exact encoded string that is sent,
// so the encoder must be deterministic and preserve caller order.
type params struct {
	pairs []paramPair
}

type paramPair struct {
	key   string
	value string
}

func newParams() *params {
	return &params{pairs: nil}
}

// Set appends the key/value pair, replacing an earlier value for the same key.
func (p *params) Set(key, value string) {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = value
			return
		}
	}
	p.pairs = append(p.pairs, paramPair{key: key, value: value})
}

// Encode renders the pairs as a query string in insertion order.
func (p *params) Encode() string {
	if p == nil || len(p.pairs) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.value))
	}
	return sb.String()
}

// Len reports the number of pairs.
func (p *params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pairs)
}
