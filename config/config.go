// Package config holds node-wide runtime and consensus-rule configuration.
//
// Configuration is split into two layers:
//   - Protocol rules: immutable per network, must match across all nodes
//     mining against the same chain (reward schedule, difficulty knobs).
//   - Node settings: runtime configuration that may vary per node (data
//     directory, RPC binding, logging).
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds node-specific runtime configuration plus the consensus
// parameters this node mines and validates against.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	RPC     RPCConfig
	Mining  MiningConfig
	Chain   ChainConfig
	Log     LogConfig
}

// ChainConfig holds the consensus-rule knobs: initial reward,
// halving interval, target block time, difficulty adjustment interval,
// initial difficulty, and the miner's mempool drain cap.
type ChainConfig struct {
	InitialReward              string `conf:"chain.initial_reward"` // decimal string, e.g. "50"
	HalvingInterval            uint64 `conf:"chain.halving_interval"`
	TargetBlockTimeSeconds     int64  `conf:"chain.target_block_time_seconds"`
	DifficultyAdjustInterval   uint64 `conf:"chain.difficulty_adjust_interval"`
	InitialDifficulty          uint64 `conf:"chain.initial_difficulty"`
	MaxMempoolDrainPerBlock    int    `conf:"chain.max_mempool_drain_per_block"`
}

// RPCConfig holds the thin HTTP request layer's bind settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	CORSOrigins []string `conf:"rpc.cors"`
}

// MiningConfig holds this node's block-production settings.
type MiningConfig struct {
	Enabled  bool   `conf:"mining.enabled"`
	Coinbase string `conf:"mining.coinbase"` // address that receives block rewards
	Threads  int    `conf:"mining.threads"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.ledgersim
//	macOS:   ~/Library/Application Support/Ledgersim
//	Windows: %APPDATA%\Ledgersim
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ledgersim"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Ledgersim")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Ledgersim")
		}
		return filepath.Join(home, "AppData", "Roaming", "Ledgersim")
	default:
		return filepath.Join(home, ".ledgersim")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// BlocksDir returns the block store directory.
func (c *Config) BlocksDir() string {
	return filepath.Join(c.ChainDataDir(), "blocks")
}

// UTXODir returns the UTXO store directory.
func (c *Config) UTXODir() string {
	return filepath.Join(c.ChainDataDir(), "utxo")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "ledgersim.conf")
}
