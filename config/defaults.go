package config

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled:     true,
			Addr:        "127.0.0.1",
			Port:        8545,
			CORSOrigins: []string{"*"},
		},
		Mining: MiningConfig{
			Enabled: false,
			Threads: 1,
		},
		Chain: ChainConfig{
			InitialReward:            "50",
			HalvingInterval:          10,
			TargetBlockTimeSeconds:   60,
			DifficultyAdjustInterval: 10,
			InitialDifficulty:        1,
			MaxMempoolDrainPerBlock:  1000,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default node configuration for testnet. It
// mines faster and at lower difficulty so local scenarios converge quickly.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.RPC.Port = 8645
	cfg.Chain.TargetBlockTimeSeconds = 5
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
