// Package rpc implements the thin HTTP request layer mapping onto the
// ledger controller, mempool, and matching engine.
package rpc

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ledgersim/ledgersim/internal/chain"
	"github.com/ledgersim/ledgersim/internal/exchange"
	klog "github.com/ledgersim/ledgersim/internal/log"
	"github.com/ledgersim/ledgersim/internal/mempool"
	"github.com/ledgersim/ledgersim/internal/miner"
	"github.com/ledgersim/ledgersim/internal/persistence"
	"github.com/ledgersim/ledgersim/internal/rpc/ws"
	"github.com/ledgersim/ledgersim/internal/utxo"
	"github.com/ledgersim/ledgersim/pkg/types"
	"github.com/rs/zerolog"
)

// Server is the HTTP request layer. It holds no consensus-relevant state
// of its own; every mutation is delegated to the chain, mempool, or
// exchange, each serialized by its own writer lock.
type Server struct {
	addr           string
	chain          *chain.Chain
	blocks         *chain.BlockStore
	utxos          *utxo.Store
	pool           *mempool.Pool
	miner          *miner.Miner
	exchange       *exchange.Engine
	expectedReward func(height uint64) types.Amount
	corsOrigins    []string
	hub            *ws.Hub
	mirror         *persistence.Store

	engine *gin.Engine
	server *http.Server
	ln     net.Listener
	logger zerolog.Logger
}

// Deps bundles the core services an RPC server is built from.
type Deps struct {
	Chain          *chain.Chain
	Blocks         *chain.BlockStore
	UTXOs          *utxo.Store
	Pool           *mempool.Pool
	Miner          *miner.Miner
	Exchange       *exchange.Engine
	ExpectedReward func(height uint64) types.Amount
	CORSOrigins    []string
	// Mirror, if set, receives a document-store-shaped copy of every
	// accepted block, executed trade, and updated balance sheet. Nil
	// disables mirroring entirely.
	Mirror *persistence.Store
}

// New builds an RPC server bound to addr. It does not start listening;
// call Start.
func New(addr string, d Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		addr:           addr,
		chain:          d.Chain,
		blocks:         d.Blocks,
		utxos:          d.UTXOs,
		pool:           d.Pool,
		miner:          d.Miner,
		exchange:       d.Exchange,
		expectedReward: d.ExpectedReward,
		corsOrigins:    d.CORSOrigins,
		hub:            ws.New(),
		mirror:         d.Mirror,
		engine:         engine,
		logger:         klog.WithComponent("rpc"),
	}

	engine.Use(s.corsMiddleware())
	s.routes()

	s.server = &http.Server{
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/transactions", s.handleSubmitTransaction)
	v1.POST("/mine", s.handleMine)
	v1.GET("/blocks/:height", s.handleGetBlockByHeight)
	v1.GET("/balances/:address", s.handleGetBalance)
	v1.POST("/markets", s.handleRegisterMarket)
	v1.POST("/orders", s.handlePlaceOrder)
	v1.GET("/orderbooks/:pair", s.handleGetOrderBook)
	v1.POST("/deposits", s.handleDeposit)
	v1.GET("/users/:id/balances", s.handleGetBalances)
	v1.GET("/stream", func(c *gin.Context) { s.hub.ServeHTTP(c.Writer, c.Request) })
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.corsOrigins) == 0 {
			c.Next()
			return
		}
		origin := c.Request.Header.Get("Origin")
		for _, allowed := range s.corsOrigins {
			if allowed == "*" || allowed == origin {
				c.Header("Access-Control-Allow-Origin", allowed)
				c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Content-Type")
				break
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Start begins listening and serving in a background goroutine. It returns
// once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("rpc server error")
		}
	}()
	return nil
}

// Addr returns the bound listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying gin engine, chiefly for tests that drive
// requests with httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}
