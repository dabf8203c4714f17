package exchange

import "github.com/ledgersim/ledgersim/pkg/types"

// Side names which book an order rests on.
type Side string

const (
	Bid Side = "bid"
	Ask Side = "ask"
)

// Order is a resting or incoming limit/market order. Price is nil for
// market orders, which walk the opposite book rather than resting.
type Order struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Pair      string       `json:"pair"`
	Side      Side         `json:"side"`
	Price     *types.Amount `json:"price,omitempty"`
	Amount    types.Amount `json:"amount"`
	Timestamp int64        `json:"timestamp"`
	seq       uint64
}

// Trade is an append-only settlement record.
type Trade struct {
	Pair      string       `json:"pair"`
	Price     types.Amount `json:"price"`
	Amount    types.Amount `json:"amount"`
	Timestamp int64        `json:"timestamp"`
	BuyerID   string       `json:"buyer_id"`
	SellerID  string       `json:"seller_id"`
}
