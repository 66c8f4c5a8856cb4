package schema

import "time"

// Candle is one OHLCV bar. Candles are created transiently per historical-data
// request and never persisted.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// WellFormed reports whether the bar satisfies the OHLC ordering invariants.
func (c Candle) WellFormed() bool {
	if c.High < c.Open || c.High < c.Close || c.High < c.Low {
		return false
	}
	if c.Low > c.Open || c.Low > c.Close {
		return false
	}
	return true
}
