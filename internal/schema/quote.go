package schema

// Quote is the current top-of-book for a symbol. In a healthy market Ask >= Bid,
// though the connector does not enforce it.
type Quote struct {
	Bid float64
	Ask float64
}
