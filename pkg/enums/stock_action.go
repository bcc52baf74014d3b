package enums

import "fmt"

// StockAction maps to the stock_action enum in Postgres and classifies a
// ledger entry. Sales, giveaways, and transfers remove stock; restocks add
// it. Adjustments carry no implied sign and require an explicit direction
// from the caller.
type StockAction string

const (
	StockActionSale     StockAction = "sale"
	StockActionGiveaway StockAction = "giveaway"
	StockActionTransfer StockAction = "transfer"
	StockActionRestock  StockAction = "restock"
	StockActionAdjust   StockAction = "adjustment"
)

var validStockActions = []StockAction{
	StockActionSale,
	StockActionGiveaway,
	StockActionTransfer,
	StockActionRestock,
	StockActionAdjust,
}

// IsValid reports whether the value matches the canonical stock action enum.
func (a StockAction) IsValid() bool {
	for _, candidate := range validStockActions {
		if candidate == a {
			return true
		}
	}
	return false
}

func (a StockAction) String() string {
	return string(a)
}

// Decreases reports whether the action always removes stock.
func (a StockAction) Decreases() bool {
	switch a {
	case StockActionSale, StockActionGiveaway, StockActionTransfer:
		return true
	default:
		return false
	}
}

// Increases reports whether the action always adds stock.
func (a StockAction) Increases() bool {
	return a == StockActionRestock
}

// Signed reports whether the caller must supply the direction explicitly.
func (a StockAction) Signed() bool {
	return a == StockActionAdjust
}

// ParseStockAction converts raw input into StockAction.
func ParseStockAction(value string) (StockAction, error) {
	for _, candidate := range validStockActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock action %q", value)
}
