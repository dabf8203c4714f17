package rpc

import (
	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// errorResponse is the JSON body returned for any failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// submitTransactionRequest is the body of POST /v1/transactions.
type submitTransactionRequest struct {
	Transaction *tx.Transaction `json:"transaction"`
}

// submitTransactionResponse acknowledges a submitted transaction.
type submitTransactionResponse struct {
	TxID string `json:"tx_id"`
}

// mineRequest is the body of POST /v1/mine.
type mineRequest struct {
	MinerAddress string `json:"miner_address"`
}

// mineResponse wraps a mined block and the mempool ids it drained.
type mineResponse struct {
	Block    *block.Block `json:"block"`
	MinedIDs []string     `json:"mined_ids"`
}

// balanceResponse is returned by GET /v1/balances/:address.
type balanceResponse struct {
	Address string       `json:"address"`
	Amount  types.Amount `json:"amount"`
}

// placeOrderRequest is the body of POST /v1/orders.
type placeOrderRequest struct {
	UserID string  `json:"user_id"`
	Pair   string  `json:"pair"`
	Side   string  `json:"side"`
	Type   string  `json:"type"` // "limit" or "market"
	Price  *string `json:"price,omitempty"`
	Amount string  `json:"amount"`
}

// placeOrderResponse reports the trades a placed order produced.
type placeOrderResponse struct {
	Trades []exchange.Trade `json:"trades"`
}

// depositRequest is the body of POST /v1/deposits.
type depositRequest struct {
	UserID string `json:"user_id"`
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// balancesResponse is returned by GET /v1/users/:id/balances.
type balancesResponse struct {
	UserID   string                  `json:"user_id"`
	Balances map[string]types.Amount `json:"balances"`
}
