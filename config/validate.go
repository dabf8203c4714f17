package config

import "fmt"

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.Mining.Enabled && cfg.Mining.Coinbase == "" {
		return fmt.Errorf("mining.coinbase is required when mining.enabled is true")
	}
	if cfg.Mining.Threads < 0 {
		return fmt.Errorf("mining.threads must be >= 0")
	}
	if cfg.Chain.HalvingInterval == 0 {
		return fmt.Errorf("chain.halving_interval must be > 0")
	}
	if cfg.Chain.TargetBlockTimeSeconds <= 0 {
		return fmt.Errorf("chain.target_block_time_seconds must be > 0")
	}
	if cfg.Chain.DifficultyAdjustInterval == 0 {
		return fmt.Errorf("chain.difficulty_adjust_interval must be > 0")
	}
	if cfg.Chain.MaxMempoolDrainPerBlock <= 0 {
		return fmt.Errorf("chain.max_mempool_drain_per_block must be > 0")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
