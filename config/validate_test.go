package config

import "testing"

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(Default(Mainnet)); err != nil {
		t.Fatalf("default mainnet config should validate: %v", err)
	}
	if err := Validate(Default(Testnet)); err != nil {
		t.Fatalf("default testnet config should validate: %v", err)
	}
}

func TestValidateRejectsBadNetwork(t *testing.T) {
	cfg := Default(Mainnet)
	cfg.Network = "regtest"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for an unknown network")
	}
}

func TestValidateRejectsMiningWithoutCoinbase(t *testing.T) {
	cfg := Default(Mainnet)
	cfg.Mining.Enabled = true
	cfg.Mining.Coinbase = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error when mining is enabled without a coinbase address")
	}
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	cfg := Default(Mainnet)
	cfg.RPC.Port = 70000
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for an out-of-range rpc port")
	}
}
