package mempool

import (
	"testing"

	"github.com/ledgersim/ledgersim/pkg/crypto"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

func fundedTx(t *testing.T, snap tx.MapSnapshot, txID string, value, spend types.Amount) *tx.Transaction {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := crypto.DeriveAddress(key.PublicKey())
	snap[txID+":0"] = tx.UTXOEntry{Value: value, LockingScript: crypto.LockingScript(addr)}

	txn := &tx.Transaction{
		Inputs:  []tx.Input{{SourceTxID: txID, SourceOutputIndex: 0}},
		Outputs: []tx.Output{{Value: spend, LockingScript: crypto.LockingScript(addr)}},
	}
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
	txn.Inputs[0].UnlockingScript = crypto.UnlockingScript(sig, key.PublicKey())
	return txn
}

func TestSubmitAndDrainPreservesOrder(t *testing.T) {
	snap := make(tx.MapSnapshot)
	pool := New()

	t1 := fundedTx(t, snap, "a", types.NewAmount(10), types.NewAmount(9))
	t2 := fundedTx(t, snap, "b", types.NewAmount(10), types.NewAmount(8))

	if _, err := pool.Submit(t1, snap, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Submit(t2, snap, 0); err != nil {
		t.Fatal(err)
	}

	drained := pool.Drain(10)
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained transactions, got %d", len(drained))
	}
	if drained[0].Tx.ID != t1.ID || drained[1].Tx.ID != t2.ID {
		t.Fatal("drain should preserve submission order")
	}
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	snap := make(tx.MapSnapshot)
	pool := New()
	t1 := fundedTx(t, snap, "a", types.NewAmount(10), types.NewAmount(9))

	if _, err := pool.Submit(t1, snap, 0); err != nil {
		t.Fatal(err)
	}
	_, err := pool.Submit(t1, snap, 0)
	if err == nil {
		t.Fatal("expected duplicate submission to be rejected")
	}
}

func TestRemoveManyDropsMinedIDs(t *testing.T) {
	snap := make(tx.MapSnapshot)
	pool := New()
	t1 := fundedTx(t, snap, "a", types.NewAmount(10), types.NewAmount(9))
	pool.Submit(t1, snap, 0)

	pool.RemoveMany([]string{t1.ID})
	if pool.Contains(t1.ID) {
		t.Fatal("expected mined transaction to be removed from the pool")
	}
	if pool.Count() != 0 {
		t.Fatalf("expected empty pool, got %d", pool.Count())
	}
}

func TestFeeComputation(t *testing.T) {
	snap := make(tx.MapSnapshot)
	t1 := fundedTx(t, snap, "a", types.NewAmount(10), types.NewAmount(9))

	fee, ok := Fee(t1, snap)
	if !ok {
		t.Fatal("expected fee to resolve against the snapshot")
	}
	if fee.Cmp(types.NewAmount(1)) != 0 {
		t.Fatalf("fee = %s, want 1", fee)
	}
}
