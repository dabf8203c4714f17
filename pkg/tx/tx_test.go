package tx

import (
	"testing"

	"github.com/ledgersim/ledgersim/pkg/crypto"
	"github.com/ledgersim/ledgersim/pkg/types"
)

func newFundedOutpoint(t *testing.T, snap MapSnapshot, value types.Amount) (types.Outpoint, *crypto.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := crypto.DeriveAddress(key.PublicKey())
	op := types.Outpoint{TxID: "funding_tx", Index: 0}
	snap[op.Key()] = UTXOEntry{Value: value, LockingScript: crypto.LockingScript(addr)}
	return op, key
}

// signSpend fixes txn's id from its current (placeholder-script) state,
// signs that id, and only then attaches the unlocking script — mirroring
// the wallet's sign-before-witness order so the id never needs to be
// recomputed once scripts are attached.
func signSpend(t *testing.T, key *crypto.PrivateKey, txn *Transaction, index int) {
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

func TestValidateSimpleSpendNoChange(t *testing.T) {
	snap := make(MapSnapshot)
	value := types.NewAmount(10)
	op, key := newFundedOutpoint(t, snap, value)

	txn := &Transaction{
		Inputs: []Input{{SourceTxID: op.TxID, SourceOutputIndex: op.Index}},
		Outputs: []Output{{
			Value:         value,
			LockingScript: crypto.LockingScript(crypto.DeriveAddress(key.PublicKey())),
		}},
	}
	signSpend(t, key, txn, 0)

	fee, err := Validate(txn, snap, 0, false)
	if err != nil {
		t.Fatalf("expected valid transaction, got %v", err)
	}
	if !fee.IsZero() {
		t.Fatalf("amount == input should produce zero fee, got %s", fee)
	}
}

func TestValidateRejectsMissingInput(t *testing.T) {
	snap := make(MapSnapshot)
	txn := &Transaction{
		Inputs:  []Input{{SourceTxID: "nope", SourceOutputIndex: 0, UnlockingScript: "x y"}},
		Outputs: []Output{{Value: types.NewAmount(1), LockingScript: "P2PKH addr_x"}},
	}
	_, err := Validate(txn, snap, 0, false)
	re, ok := err.(*RejectError)
	if !ok || re.Kind != MissingInput {
		t.Fatalf("expected MissingInput, got %v", err)
	}
}

func TestValidateRejectsDoubleSpendInTx(t *testing.T) {
	snap := make(MapSnapshot)
	value := types.NewAmount(10)
	op, key := newFundedOutpoint(t, snap, value)

	txn := &Transaction{
		Inputs: []Input{
			{SourceTxID: op.TxID, SourceOutputIndex: op.Index},
			{SourceTxID: op.TxID, SourceOutputIndex: op.Index},
		},
		Outputs: []Output{{Value: types.NewAmount(1), LockingScript: crypto.LockingScript(crypto.DeriveAddress(key.PublicKey()))}},
	}
	_, err := Validate(txn, snap, 0, false)
	re, ok := err.(*RejectError)
	if !ok || re.Kind != DoubleSpendInTx {
		t.Fatalf("expected DoubleSpendInTx, got %v", err)
	}
}

func TestValidateRejectsLockedOutput(t *testing.T) {
	snap := make(MapSnapshot)
	value := types.NewAmount(10)
	op, key := newFundedOutpoint(t, snap, value)
	lockHeight := uint64(100)
	entry := snap[op.Key()]
	entry.LockHeight = &lockHeight
	snap[op.Key()] = entry

	txn := &Transaction{
		Inputs:  []Input{{SourceTxID: op.TxID, SourceOutputIndex: op.Index}},
		Outputs: []Output{{Value: value, LockingScript: crypto.LockingScript(crypto.DeriveAddress(key.PublicKey()))}},
	}
	signSpend(t, key, txn, 0)

	_, err := Validate(txn, snap, 50, false)
	re, ok := err.(*RejectError)
	if !ok || re.Kind != Locked {
		t.Fatalf("expected Locked, got %v", err)
	}
}

func TestValidateRejectsBadScript(t *testing.T) {
	snap := make(MapSnapshot)
	value := types.NewAmount(10)
	op, _ := newFundedOutpoint(t, snap, value)
	attacker, _ := crypto.GenerateKey()

	txn := &Transaction{
		Inputs:  []Input{{SourceTxID: op.TxID, SourceOutputIndex: op.Index}},
		Outputs: []Output{{Value: value, LockingScript: crypto.LockingScript(crypto.DeriveAddress(attacker.PublicKey()))}},
	}
	signSpend(t, attacker, txn, 0)

	_, err := Validate(txn, snap, 0, false)
	re, ok := err.(*RejectError)
	if !ok || re.Kind != BadScript {
		t.Fatalf("expected BadScript, got %v", err)
	}
}

func TestValidateRejectsValueOverflow(t *testing.T) {
	snap := make(MapSnapshot)
	value := types.NewAmount(10)
	op, key := newFundedOutpoint(t, snap, value)

	txn := &Transaction{
		Inputs:  []Input{{SourceTxID: op.TxID, SourceOutputIndex: op.Index}},
		Outputs: []Output{{Value: types.NewAmount(11), LockingScript: crypto.LockingScript(crypto.DeriveAddress(key.PublicKey()))}},
	}
	signSpend(t, key, txn, 0)

	_, err := Validate(txn, snap, 0, false)
	re, ok := err.(*RejectError)
	if !ok || re.Kind != ValueOverflow {
		t.Fatalf("expected ValueOverflow, got %v", err)
	}
}

func TestValidateRejectsZeroOutput(t *testing.T) {
	snap := make(MapSnapshot)
	value := types.NewAmount(10)
	op, key := newFundedOutpoint(t, snap, value)

	txn := &Transaction{
		Inputs:  []Input{{SourceTxID: op.TxID, SourceOutputIndex: op.Index}},
		Outputs: []Output{{Value: types.Zero, LockingScript: crypto.LockingScript(crypto.DeriveAddress(key.PublicKey()))}},
	}
	signSpend(t, key, txn, 0)

	_, err := Validate(txn, snap, 0, false)
	re, ok := err.(*RejectError)
	if !ok || re.Kind != ZeroOutput {
		t.Fatalf("expected ZeroOutput, got %v", err)
	}
}

func TestComputeIDDeterministic(t *testing.T) {
	txn := &Transaction{
		Outputs: []Output{{Value: types.NewAmount(1), LockingScript: "P2PKH addr_x"}},
	}
	id1, err := txn.ComputeID()
	if err != nil {
		t.Fatal(err)
	}
	id2, err := txn.ComputeID()
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("ComputeID should be deterministic, got %s and %s", id1, id2)
	}
}
