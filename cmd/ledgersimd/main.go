// Ledgersim node daemon: wires the UTXO ledger, mempool, miner, and spot
// exchange together behind a single RPC surface.
//
// Usage:
//
//	ledgersimd                    Run a node with RPC only
//	ledgersimd --mine --coinbase=<address>
//	ledgersimd --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgersim/ledgersim/config"
	"github.com/ledgersim/ledgersim/internal/chain"
	"github.com/ledgersim/ledgersim/internal/exchange"
	klog "github.com/ledgersim/ledgersim/internal/log"
	"github.com/ledgersim/ledgersim/internal/mempool"
	"github.com/ledgersim/ledgersim/internal/miner"
	"github.com/ledgersim/ledgersim/internal/persistence"
	"github.com/ledgersim/ledgersim/internal/rpc"
	"github.com/ledgersim/ledgersim/internal/storage"
	"github.com/ledgersim/ledgersim/internal/utxo"
	"github.com/ledgersim/ledgersim/pkg/types"
	"github.com/rs/zerolog"
)

func main() {
	// ── 1. Load config (defaults → data dirs → file → flags) ────────────
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Init logger ────────────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = cfg.LogsDir() + "/ledgersim.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("datadir", cfg.DataDir).
		Msg("Starting Ledgersim node")

	// ── 3. Open storage ───────────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.ChainDataDir())
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ChainDataDir()).Msg("Failed to open database")
	}
	defer db.Close()

	utxos := utxo.NewStore(db)
	blocks := chain.NewBlockStore(db)
	pool := mempool.New()

	logger.Info().Str("path", cfg.ChainDataDir()).Msg("Database opened")

	// ── 4. Open the chain, synthesizing genesis on a fresh database ─────
	initialReward, err := types.ParseAmount(cfg.Chain.InitialReward)
	if err != nil {
		logger.Fatal().Err(err).Str("value", cfg.Chain.InitialReward).Msg("Invalid chain.initial_reward")
	}

	genesisParams := chain.GenesisParams{
		InitialReward:     initialReward,
		HalvingInterval:   cfg.Chain.HalvingInterval,
		InitialDifficulty: cfg.Chain.InitialDifficulty,
		Timestamp:         time.Now().Unix(),
	}

	ch, err := chain.Open(utxos, blocks, pool, genesisParams)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open chain")
	}

	height, _ := ch.Tip()
	logger.Info().Uint64("height", height).Msg("Chain ready")

	expectedReward := func(h uint64) types.Amount {
		return miner.Reward(initialReward, h, cfg.Chain.HalvingInterval)
	}

	// ── 5. Build the miner ────────────────────────────────────────────────
	m := miner.New(ch, utxos, pool, miner.Params{
		InitialReward:            initialReward,
		HalvingInterval:          cfg.Chain.HalvingInterval,
		TargetBlockTimeSeconds:   cfg.Chain.TargetBlockTimeSeconds,
		DifficultyAdjustInterval: cfg.Chain.DifficultyAdjustInterval,
		InitialDifficulty:        cfg.Chain.InitialDifficulty,
		MaxDrain:                 cfg.Chain.MaxMempoolDrainPerBlock,
		Threads:                  cfg.Mining.Threads,
	})

	// ── 6. Build the exchange and its default market ─────────────────────
	ex := exchange.New()
	ex.RegisterMarket("SIM_COIN/USD")

	// ── 7. Document-store mirror, backed by the same database ───────────
	mirror := persistence.New(db)

	// ── 8. Start the RPC server ───────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
	server := rpc.New(addr, rpc.Deps{
		Chain:          ch,
		Blocks:         blocks,
		UTXOs:          utxos,
		Pool:           pool,
		Miner:          m,
		Exchange:       ex,
		ExpectedReward: expectedReward,
		CORSOrigins:    cfg.RPC.CORSOrigins,
		Mirror:         mirror,
	})

	if cfg.RPC.Enabled {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Str("addr", addr).Msg("Failed to start RPC server")
		}
		logger.Info().Str("addr", server.Addr()).Msg("RPC server listening")
	}

	// ── 9. Optional background miner loop ─────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Mining.Enabled {
		go runMiner(ctx, m, ch, time.Duration(cfg.Chain.TargetBlockTimeSeconds)*time.Second,
			types.Address(cfg.Mining.Coinbase), expectedReward, logger)
	}

	// ── 10. Wait for shutdown signal ──────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("Shutting down")
	cancel()
	if cfg.RPC.Enabled {
		if err := server.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping RPC server")
		}
	}
}

// runMiner runs the block production loop until ctx is cancelled, mining
// one block per target block interval against whatever is in the mempool.
func runMiner(ctx context.Context, m *miner.Miner, ch *chain.Chain, blockTime time.Duration,
	coinbase types.Address, expectedReward func(height uint64) types.Amount, logger zerolog.Logger) {

	ticker := time.NewTicker(blockTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Miner stopped")
			return
		case <-ticker.C:
			blk, minedIDs, err := m.Mine(ctx, coinbase)
			if err != nil {
				logger.Error().Err(err).Msg("Block production failed")
				continue
			}
			if err := ch.AcceptBlock(blk, expectedReward); err != nil {
				logger.Error().Err(err).Msg("Mined block rejected")
				continue
			}
			logger.Info().
				Uint64("height", blk.Header.Height).
				Str("hash", blk.Hash).
				Int("txs", len(minedIDs)).
				Msg("Block mined")
		}
	}
}
