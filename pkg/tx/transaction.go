// Package tx defines the transaction data model and its validation rules.
package tx

import (
	"encoding/json"

	"github.com/ledgersim/ledgersim/pkg/crypto"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Input references a UTXO being spent and the witness that unlocks it.
type Input struct {
	SourceTxID        string `json:"source_tx_id"`
	SourceOutputIndex uint32 `json:"source_output_index"`
	UnlockingScript   string `json:"unlocking_script"`
}

// Outpoint returns the (source_tx_id, source_output_index) this input spends.
func (in Input) Outpoint() types.Outpoint {
	return types.Outpoint{TxID: in.SourceTxID, Index: in.SourceOutputIndex}
}

// Output defines a new spendable output.
type Output struct {
	Value         types.Amount `json:"value"`
	LockingScript string       `json:"locking_script"`
	LockHeight    *uint64      `json:"lock_height,omitempty"`
}

// Transaction is the ledger's atomic unit of value transfer. A coinbase
// transaction is identified structurally by having zero inputs.
type Transaction struct {
	ID       string   `json:"id"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint64   `json:"locktime"`
}

// preimage mirrors Transaction but omits ID, matching declaration order
// (inputs, outputs, locktime) for the canonical hash preimage.
type preimage struct {
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint64   `json:"locktime"`
}

// IsCoinbase reports whether this transaction has no inputs.
func (t *Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 0
}

// Preimage returns the canonical serialization signed by every input's
// unlocking script: the transaction with its id field zeroed/absent, in
// declaration order. Builders call this before any unlocking script is
// attached (inputs carry empty unlocking_script placeholders), so the
// resulting hash — the transaction id — is fixed before signing and is
// never recomputed afterward; the unlocking scripts filled in post-signing
// do not change it.
func (t *Transaction) Preimage() ([]byte, error) {
	return json.Marshal(preimage{Inputs: t.Inputs, Outputs: t.Outputs, LockTime: t.LockTime})
}

// SignatureHash returns the raw 32-byte SHA-256 digest of Preimage(), the
// message every input's signature is produced over. ComputeID hex-encodes
// this same digest, so a transaction's id is always its signature hash.
func (t *Transaction) SignatureHash() ([]byte, error) {
	pre, err := t.Preimage()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256Bytes(pre), nil
}

// ComputeID computes the transaction id: the hex SHA-256 of Preimage().
func (t *Transaction) ComputeID() (string, error) {
	pre, err := t.Preimage()
	if err != nil {
		return "", err
	}
	return crypto.SHA256Hex(pre), nil
}

// SetID computes and assigns the transaction's id in place.
func (t *Transaction) SetID() error {
	id, err := t.ComputeID()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// TotalOutputValue sums every output's value.
func (t *Transaction) TotalOutputValue() types.Amount {
	total := types.Zero
	for _, out := range t.Outputs {
		total = total.Add(out.Value)
	}
	return total
}
