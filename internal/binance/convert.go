package binance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/driftline/binancefutures/internal/schema"
)

func parseBalance(asset accountAsset) (schema.Balance, error) {
	name := strings.ToUpper(strings.TrimSpace(asset.Asset))
	if name == "" {
		return schema.Balance{}, fmt.Errorf("balance entry missing asset name")
	}
	wallet, err := parseDecimal(asset.WalletBalance, "walletBalance")
	if err != nil {
		return schema.Balance{}, err
	}
	pnl, err := parseDecimal(asset.UnrealizedProfit, "unrealizedProfit")
	if err != nil {
		return schema.Balance{}, err
	}
	margin, err := parseDecimal(asset.MarginBalance, "marginBalance")
	if err != nil {
		return schema.Balance{}, err
	}
	available, err := parseDecimal(asset.AvailableBalance, "availableBalance")
	if err != nil {
		return schema.Balance{}, err
	}
	return schema.Balance{
		Asset:          name,
		WalletBalance:  wallet,
		UnrealizedPnL:  pnl,
		MarginBalance:  margin,
		AvailableFunds: available,
	}, nil
}

// parseDecimal treats absent fields as zero; present fields must parse exactly.
func parseDecimal(value, field string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return parsed, nil
}

func (r orderResponse) toOrderStatus() (schema.OrderStatus, error) {
	side, err := schema.ParseSide(r.Side)
	if err != nil {
		return schema.OrderStatus{}, err
	}
	price, err := parseDecimal(r.Price, "price")
	if err != nil {
		return schema.OrderStatus{}, err
	}
	avgPrice, err := parseDecimal(r.AvgPrice, "avgPrice")
	if err != nil {
		return schema.OrderStatus{}, err
	}
	origQty, err := parseDecimal(r.OrigQty, "origQty")
	if err != nil {
		return schema.OrderStatus{}, err
	}
	executedQty, err := parseDecimal(r.ExecutedQty, "executedQty")
	if err != nil {
		return schema.OrderStatus{}, err
	}
	return schema.OrderStatus{
		OrderID:       r.OrderID,
		ClientOrderID: strings.TrimSpace(r.ClientOrderID),
		Symbol:        strings.ToUpper(strings.TrimSpace(r.Symbol)),
		Status:        strings.ToUpper(strings.TrimSpace(r.Status)),
		Side:          side,
		Type:          schema.OrderType(strings.ToUpper(strings.TrimSpace(r.Type))),
		TimeInForce:   schema.TimeInForce(strings.ToUpper(strings.TrimSpace(r.TimeInForce))),
		Price:         price,
		AvgPrice:      avgPrice,
		OrigQuantity:  origQty,
		ExecutedQty:   executedQty,
	}, nil
}

func snapshotContracts(src map[string]schema.Contract) map[string]schema.Contract {
	out := make(map[string]schema.Contract, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func snapshotBalances(src map[string]schema.Balance) map[string]schema.Balance {
	out := make(map[string]schema.Balance, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
