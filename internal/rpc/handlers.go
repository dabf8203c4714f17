package rpc

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledgersim/ledgersim/internal/exchange"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// handleSubmitTransaction implements submit_transaction: validates the
// transaction against the mempool's view of the committed UTXO set and, on
// success, reports its id.
func (s *Server) handleSubmitTransaction(c *gin.Context) {
	var req submitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Transaction == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid transaction payload"})
		return
	}

	snap, err := s.utxos.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	height, _ := s.chain.Tip()

	if _, err := s.pool.Submit(req.Transaction, snap, height); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submitTransactionResponse{TxID: req.Transaction.ID})
}

// handleMine implements mine: assembles and seals a candidate block on top
// of the current tip and commits it via the ledger controller.
func (s *Server) handleMine(c *gin.Context) {
	var req mineRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MinerAddress == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "miner_address is required"})
		return
	}

	blk, minedIDs, err := s.miner.Mine(c.Request.Context(), types.Address(req.MinerAddress))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.chain.AcceptBlock(blk, s.expectedReward); err != nil {
		writeError(c, err)
		return
	}
	s.hub.BroadcastBlock(blk)
	if s.mirror != nil {
		if err := s.mirror.PutBlock(blk); err != nil {
			s.logger.Warn().Err(err).Msg("failed to mirror accepted block")
		}
	}
	c.JSON(http.StatusOK, mineResponse{Block: blk, MinedIDs: minedIDs})
}

// handleGetBlockByHeight implements get_block_by_height.
func (s *Server) handleGetBlockByHeight(c *gin.Context) {
	height, err := strconv.ParseUint(c.Param("height"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "height must be a non-negative integer"})
		return
	}
	header, ok := s.chain.HeaderAtHeight(height)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "block not found"})
		return
	}
	blk, ok, err := s.blocks.GetByHash(header.Hash())
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "block not found"})
		return
	}
	c.JSON(http.StatusOK, blk)
}

// handleGetBalance implements get_balance: sums every live UTXO whose
// locking script matches the given address.
func (s *Server) handleGetBalance(c *gin.Context) {
	address := c.Param("address")
	utxos, err := s.utxos.GetByAddress(types.Address(address))
	if err != nil {
		writeError(c, err)
		return
	}
	total := types.Zero
	for _, u := range utxos {
		total = total.Add(u.Value)
	}
	c.JSON(http.StatusOK, balanceResponse{Address: address, Amount: total})
}

// handleRegisterMarket opens a trading pair for the exchange.
func (s *Server) handleRegisterMarket(c *gin.Context) {
	var req struct {
		Pair string `json:"pair"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Pair == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "pair is required"})
		return
	}
	s.exchange.RegisterMarket(req.Pair)
	c.Status(http.StatusNoContent)
}

// handlePlaceOrder implements place_order for both limit and market orders.
func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid order payload"})
		return
	}

	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid amount"})
		return
	}
	side := exchange.Side(req.Side)

	var trades []exchange.Trade
	switch req.Type {
	case "market":
		trades, err = s.exchange.PlaceMarket(req.UserID, req.Pair, side, amount)
	default:
		if req.Price == nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "price is required for limit orders"})
			return
		}
		price, perr := types.ParseAmount(*req.Price)
		if perr != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid price"})
			return
		}
		trades, err = s.exchange.PlaceLimit(req.UserID, req.Pair, side, price, amount)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	for _, t := range trades {
		s.hub.BroadcastTrade(t)
	}
	if s.mirror != nil {
		for _, t := range trades {
			if err := s.mirror.PutTrade(uuid.NewString(), t); err != nil {
				s.logger.Warn().Err(err).Msg("failed to mirror executed trade")
			}
			for _, user := range []string{t.BuyerID, t.SellerID} {
				if err := s.mirror.PutUserBalances(user, s.exchange.Balances(user)); err != nil {
					s.logger.Warn().Err(err).Msg("failed to mirror user balances")
				}
			}
		}
		if snap, err := s.exchange.OrderBook(req.Pair); err == nil {
			if err := s.mirror.PutOrderBookSnapshot(req.Pair, snap); err != nil {
				s.logger.Warn().Err(err).Msg("failed to mirror order book snapshot")
			}
		}
	}
	c.JSON(http.StatusOK, placeOrderResponse{Trades: trades})
}

// handleGetOrderBook implements get_order_book.
func (s *Server) handleGetOrderBook(c *gin.Context) {
	pair := c.Param("pair")
	snap, err := s.exchange.OrderBook(pair)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleDeposit implements deposit.
func (s *Server) handleDeposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid deposit payload"})
		return
	}
	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid amount"})
		return
	}
	if err := s.exchange.Deposit(req.UserID, req.Asset, amount); err != nil {
		writeError(c, err)
		return
	}
	if s.mirror != nil {
		if err := s.mirror.PutUserBalances(req.UserID, s.exchange.Balances(req.UserID)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to mirror user balances")
		}
	}
	c.Status(http.StatusNoContent)
}

// handleGetBalances implements get_balances.
func (s *Server) handleGetBalances(c *gin.Context) {
	userID := c.Param("id")
	c.JSON(http.StatusOK, balancesResponse{UserID: userID, Balances: s.exchange.Balances(userID)})
}
