package miner

import (
	"context"
	"testing"

	"github.com/ledgersim/ledgersim/internal/mempool"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/crypto"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

type fakeChain struct {
	height  uint64
	headers map[uint64]*block.Header
}

func (f *fakeChain) Tip() (uint64, *block.Header) {
	return f.height, f.headers[f.height]
}

func (f *fakeChain) HeaderAtHeight(height uint64) (*block.Header, bool) {
	h, ok := f.headers[height]
	return h, ok
}

type fakeUTXOs struct {
	snap tx.MapSnapshot
}

func (f *fakeUTXOs) Snapshot() (tx.MapSnapshot, error) {
	return f.snap, nil
}

func genesisHeader() *block.Header {
	h := &block.Header{Version: 1, PreviousHash: "0", MerkleRoot: "coinbase_0", Timestamp: 1, DifficultyTarget: 1, Nonce: 0, Height: 0}
	return h
}

func TestMineEmptyMempoolProducesCoinbaseOnlyBlock(t *testing.T) {
	chain := &fakeChain{height: 0, headers: map[uint64]*block.Header{0: genesisHeader()}}
	utxos := &fakeUTXOs{snap: make(tx.MapSnapshot)}
	pool := mempool.New()
	m := New(chain, utxos, pool, Params{
		InitialReward:            types.NewAmount(50),
		HalvingInterval:          10,
		TargetBlockTimeSeconds:   60,
		DifficultyAdjustInterval: 10,
		InitialDifficulty:        1,
		MaxDrain:                 1000,
		Threads:                  1,
	})

	blk, minedIDs, err := m.Mine(context.Background(), types.Address("addr_000000000000000000000000000a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(minedIDs) != 0 {
		t.Fatalf("expected no mined ids from an empty mempool, got %d", len(minedIDs))
	}
	if len(blk.Transactions) != 1 {
		t.Fatalf("expected coinbase-only block, got %d transactions", len(blk.Transactions))
	}
	if got := blk.Transactions[0].TotalOutputValue(); got.Cmp(types.NewAmount(50)) != 0 {
		t.Fatalf("coinbase reward = %s, want 50", got)
	}
	if !block.SatisfiesDifficulty(blk.Hash, blk.Header.DifficultyTarget) {
		t.Fatal("mined block hash must satisfy its own difficulty target")
	}
}

func TestMineSelectsHigherFeeFirst(t *testing.T) {
	chain := &fakeChain{height: 0, headers: map[uint64]*block.Header{0: genesisHeader()}}

	key, _ := crypto.GenerateKey()
	addr := crypto.DeriveAddress(key.PublicKey())
	locking := crypto.LockingScript(addr)

	snap := make(tx.MapSnapshot)
	snap["fund_a:0"] = tx.UTXOEntry{Value: types.NewAmount(10), LockingScript: locking}
	snap["fund_b:0"] = tx.UTXOEntry{Value: types.NewAmount(10), LockingScript: locking}
	utxos := &fakeUTXOs{snap: snap}

	pool := mempool.New()

	lowFee := &tx.Transaction{
		Inputs:  []tx.Input{{SourceTxID: "fund_a", SourceOutputIndex: 0}},
		Outputs: []tx.Output{{Value: types.NewAmount(9), LockingScript: locking}},
	}
	signTx(t, key, lowFee, 0)
	if _, err := pool.Submit(lowFee, snap, 1); err != nil {
		t.Fatal(err)
	}

	highFee := &tx.Transaction{
		Inputs:  []tx.Input{{SourceTxID: "fund_b", SourceOutputIndex: 0}},
		Outputs: []tx.Output{{Value: types.NewAmount(5), LockingScript: locking}},
	}
	signTx(t, key, highFee, 0)
	if _, err := pool.Submit(highFee, snap, 1); err != nil {
		t.Fatal(err)
	}

	m := New(chain, utxos, pool, Params{
		InitialReward:            types.NewAmount(50),
		HalvingInterval:          10,
		TargetBlockTimeSeconds:   60,
		DifficultyAdjustInterval: 10,
		InitialDifficulty:        1,
		MaxDrain:                 1000,
		Threads:                  1,
	})

	blk, minedIDs, err := m.Mine(context.Background(), addr)
	if err != nil {
		t.Fatal(err)
	}
	if len(minedIDs) != 2 {
		t.Fatalf("expected both transactions mined, got %d", len(minedIDs))
	}
	// body[0] is the coinbase; body[1] should be the higher-fee transaction.
	if blk.Transactions[1].ID != highFee.ID {
		t.Fatalf("expected the higher-fee transaction first, got %s", blk.Transactions[1].ID)
	}
}

// signTx fixes txn's id before any unlocking script is attached, signs
// that id, then attaches the unlocking script without recomputing the id.
func signTx(t *testing.T, key *crypto.PrivateKey, txn *tx.Transaction, index int) {
	t.Helper()
	if err := txn.SetID(); err != nil {
		t.Fatal(err)
	}
	hash, err := txn.SignatureHash()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := key.Sign(hash)
	if err != nil {
		t.Fatal(err)
	}
	txn.Inputs[index].UnlockingScript = crypto.UnlockingScript(sig, key.PublicKey())
}
