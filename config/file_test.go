package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileParsesKeyValuePairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgersim.conf")
	content := `# comment line
network = testnet

rpc.port = 9999
rpc.cors = http://a.test, http://b.test
mining.enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["network"] != "testnet" {
		t.Fatalf("network = %q, want testnet", values["network"])
	}
	if values["rpc.port"] != "9999" {
		t.Fatalf("rpc.port = %q, want 9999", values["rpc.port"])
	}
}

func TestLoadFileMissingFileReturnsEmptyMap(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty map, got %v", values)
	}
}

func TestApplyFileConfigSetsFields(t *testing.T) {
	cfg := Default(Mainnet)
	values := map[string]string{
		"rpc.port":   "9090",
		"rpc.cors":   "http://localhost:3000,http://localhost:4000",
		"mining.enabled": "true",
		"mining.coinbase": "addr_miner",
		"log.level":  "debug",
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.RPC.Port != 9090 {
		t.Fatalf("RPC.Port = %d, want 9090", cfg.RPC.Port)
	}
	if len(cfg.RPC.CORSOrigins) != 2 {
		t.Fatalf("RPC.CORSOrigins = %v, want 2 entries", cfg.RPC.CORSOrigins)
	}
	if !cfg.Mining.Enabled || cfg.Mining.Coinbase != "addr_miner" {
		t.Fatalf("mining config not applied: %+v", cfg.Mining)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestApplyFileConfigRejectsBadInt(t *testing.T) {
	cfg := Default(Mainnet)
	err := ApplyFileConfig(cfg, map[string]string{"rpc.port": "not-a-number"})
	if err == nil {
		t.Fatal("expected an error for a non-numeric rpc.port")
	}
}

func TestWriteDefaultConfigProducesLoadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledgersim.conf")
	if err := WriteDefaultConfig(path, Testnet); err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if values["network"] != "testnet" {
		t.Fatalf("network = %q, want testnet", values["network"])
	}
}
