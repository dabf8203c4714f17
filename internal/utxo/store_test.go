package utxo

import (
	"testing"

	"github.com/ledgersim/ledgersim/internal/storage"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

func TestStorePutGetDelete(t *testing.T) {
	store := NewStore(storage.NewMemory())
	u := FromOutput("tx1", 0, tx.Output{Value: types.NewAmount(5), LockingScript: "P2PKH addr_a"})

	if err := store.Put(u); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(u.Outpoint.Key())
	if err != nil {
		t.Fatal(err)
	}
	if got.Value.Cmp(u.Value) != 0 {
		t.Fatalf("got value %s, want %s", got.Value, u.Value)
	}

	if err := store.Delete(u.Outpoint.Key()); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.Has(u.Outpoint.Key()); ok {
		t.Fatal("expected utxo to be gone after delete")
	}
}

func TestStoreGetByAddress(t *testing.T) {
	store := NewStore(storage.NewMemory())
	u1 := FromOutput("tx1", 0, tx.Output{Value: types.NewAmount(5), LockingScript: "P2PKH addr_a"})
	u2 := FromOutput("tx2", 0, tx.Output{Value: types.NewAmount(7), LockingScript: "P2PKH addr_a"})
	u3 := FromOutput("tx3", 0, tx.Output{Value: types.NewAmount(1), LockingScript: "P2PKH addr_b"})
	store.Put(u1)
	store.Put(u2)
	store.Put(u3)

	got, err := store.GetByAddress("addr_a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 utxos for addr_a, got %d", len(got))
	}
}

func TestApplyBlockAtomicCommit(t *testing.T) {
	store := NewStore(storage.NewMemory())
	existing := FromOutput("funding", 0, tx.Output{Value: types.NewAmount(10), LockingScript: "P2PKH addr_a"})
	store.Put(existing)

	newOut := FromOutput("spend", 0, tx.Output{Value: types.NewAmount(10), LockingScript: "P2PKH addr_b"})
	if err := store.ApplyBlock([]string{existing.Outpoint.Key()}, []*UTXO{newOut}); err != nil {
		t.Fatal(err)
	}

	if ok, _ := store.Has(existing.Outpoint.Key()); ok {
		t.Fatal("spent utxo should be gone after ApplyBlock")
	}
	if ok, _ := store.Has(newOut.Outpoint.Key()); !ok {
		t.Fatal("new utxo should exist after ApplyBlock")
	}
}

func TestSnapshotReflectsCommittedSet(t *testing.T) {
	store := NewStore(storage.NewMemory())
	u := FromOutput("tx1", 0, tx.Output{Value: types.NewAmount(3), LockingScript: "P2PKH addr_a"})
	store.Put(u)

	snap, err := store.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := snap.Get(u.Outpoint.Key())
	if !ok {
		t.Fatal("expected snapshot to contain the committed utxo")
	}
	if entry.Value.Cmp(u.Value) != 0 {
		t.Fatalf("snapshot value %s != %s", entry.Value, u.Value)
	}
}
