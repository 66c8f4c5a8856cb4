package schema

import "github.com/shopspring/decimal"

// Balance is one asset entry of the account snapshot. Amounts are decimal so
// exchange-reported strings survive without precision loss. The whole snapshot
// is replaced on each balances refresh.
type Balance struct {
	Asset          string
	WalletBalance  decimal.Decimal
	UnrealizedPnL  decimal.Decimal
	MarginBalance  decimal.Decimal
	AvailableFunds decimal.Decimal
}
