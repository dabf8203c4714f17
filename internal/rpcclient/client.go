// Package rpcclient provides an HTTP client for the ledgersim node's REST
// surface, mirroring the request/response shapes internal/rpc exposes.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Client is a thin HTTP client for a ledgersim node.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a Client targeting the given node base URL (e.g.
// "http://127.0.0.1:8545").
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 10*time.Second)
}

// NewWithTimeout creates a Client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// APIError is returned when the server responds with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Status, e.Body)
}

func (c *Client) do(method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// SubmitTransaction submits a signed transaction to the mempool.
func (c *Client) SubmitTransaction(t *tx.Transaction) (string, error) {
	var resp struct {
		TxID string `json:"tx_id"`
	}
	err := c.do(http.MethodPost, "/v1/transactions", map[string]any{"transaction": t}, &resp)
	return resp.TxID, err
}

// Mine asks the node to assemble, seal, and commit a block rewarding
// minerAddress. Returns the mined block and the mempool ids it drained.
func (c *Client) Mine(minerAddress string) (*block.Block, []string, error) {
	var resp struct {
		Block    *block.Block `json:"block"`
		MinedIDs []string     `json:"mined_ids"`
	}
	err := c.do(http.MethodPost, "/v1/mine", map[string]string{"miner_address": minerAddress}, &resp)
	return resp.Block, resp.MinedIDs, err
}

// GetBlockByHeight fetches the block committed at the given height.
func (c *Client) GetBlockByHeight(height uint64) (*block.Block, error) {
	var blk block.Block
	err := c.do(http.MethodGet, fmt.Sprintf("/v1/blocks/%d", height), nil, &blk)
	return &blk, err
}

// GetBalance sums every live UTXO locked to address.
func (c *Client) GetBalance(address string) (types.Amount, error) {
	var resp struct {
		Amount types.Amount `json:"amount"`
	}
	err := c.do(http.MethodGet, "/v1/balances/"+address, nil, &resp)
	return resp.Amount, err
}

// RegisterMarket opens a trading pair on the exchange.
func (c *Client) RegisterMarket(pair string) error {
	return c.do(http.MethodPost, "/v1/markets", map[string]string{"pair": pair}, nil)
}

// PlaceLimitOrder places a limit order and returns any trades it executed
// immediately against the resting book.
func (c *Client) PlaceLimitOrder(userID, pair, side, price, amount string) ([]exchange.Trade, error) {
	var resp struct {
		Trades []exchange.Trade `json:"trades"`
	}
	body := map[string]any{
		"user_id": userID, "pair": pair, "side": side,
		"type": "limit", "price": price, "amount": amount,
	}
	err := c.do(http.MethodPost, "/v1/orders", body, &resp)
	return resp.Trades, err
}

// PlaceMarketOrder places a market order against the resting book.
func (c *Client) PlaceMarketOrder(userID, pair, side, amount string) ([]exchange.Trade, error) {
	var resp struct {
		Trades []exchange.Trade `json:"trades"`
	}
	body := map[string]any{
		"user_id": userID, "pair": pair, "side": side,
		"type": "market", "amount": amount,
	}
	err := c.do(http.MethodPost, "/v1/orders", body, &resp)
	return resp.Trades, err
}

// GetOrderBook fetches the current resting orders for a pair.
func (c *Client) GetOrderBook(pair string) (exchange.Snapshot, error) {
	var snap exchange.Snapshot
	err := c.do(http.MethodGet, "/v1/orderbooks/"+pair, nil, &snap)
	return snap, err
}

// Deposit credits a user's exchange balance for an asset.
func (c *Client) Deposit(userID, asset, amount string) error {
	body := map[string]string{"user_id": userID, "asset": asset, "amount": amount}
	return c.do(http.MethodPost, "/v1/deposits", body, nil)
}

// GetBalances fetches a user's per-asset exchange balances.
func (c *Client) GetBalances(userID string) (map[string]types.Amount, error) {
	var resp struct {
		Balances map[string]types.Amount `json:"balances"`
	}
	err := c.do(http.MethodGet, "/v1/users/"+userID+"/balances", nil, &resp)
	return resp.Balances, err
}
