package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/ledgersim/ledgersim/pkg/crypto"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// RejectKind names the reason a transaction failed validation.
type RejectKind string

const (
	BadShape        RejectKind = "BadShape"
	MissingInput    RejectKind = "MissingInput"
	DoubleSpendInTx RejectKind = "DoubleSpendInTx"
	Locked          RejectKind = "Locked"
	BadScript       RejectKind = "BadScript"
	ValueOverflow   RejectKind = "ValueOverflow"
	ZeroOutput      RejectKind = "ZeroOutput"
)

// RejectError reports a validation failure with its named kind.
type RejectError struct {
	Kind RejectKind
	Msg  string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func reject(kind RejectKind, format string, args ...any) error {
	return &RejectError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// UTXOEntry is the information the validator needs about a referenced output.
type UTXOEntry struct {
	Value         types.Amount
	LockingScript string
	LockHeight    *uint64
}

// Snapshot provides read-only lookups against a UTXO set, keyed by
// "{tx_id}:{output_index}".
type Snapshot interface {
	Get(key string) (UTXOEntry, bool)
}

// MapSnapshot is a Snapshot backed by a plain map, used both as the
// committed-snapshot view and as the ledger controller's working overlay.
type MapSnapshot map[string]UTXOEntry

func (m MapSnapshot) Get(key string) (UTXOEntry, bool) {
	e, ok := m[key]
	return e, ok
}

// Validate runs the seven ordered structural/UTXO checks against a
// transaction, short-circuiting on the first failure. isCoinbase tells the
// validator which branch of check 1 applies; callers (mempool submission,
// ledger block-body validation) already know a transaction's role from its
// position, so it is passed explicitly rather than re-derived.
//
// Returns the transaction's fee (sum of referenced input values minus sum
// of output values); zero for coinbase transactions.
func Validate(t *Transaction, snap Snapshot, currentHeight uint64, isCoinbase bool) (types.Amount, error) {
	// 1. Input-count shape.
	if isCoinbase {
		if len(t.Inputs) != 0 {
			return types.Zero, reject(BadShape, "coinbase transaction must have zero inputs, got %d", len(t.Inputs))
		}
	} else if len(t.Inputs) == 0 {
		return types.Zero, reject(BadShape, "non-coinbase transaction must have at least one input")
	}

	// 2. No duplicate inputs within the transaction.
	seen := make(map[types.Outpoint]bool, len(t.Inputs))
	for _, in := range t.Inputs {
		op := in.Outpoint()
		if seen[op] {
			return types.Zero, reject(DoubleSpendInTx, "input %s referenced twice in the same transaction", op)
		}
		seen[op] = true
	}

	// The signed hash is the transaction's own id: unlocking scripts are
	// attached after the id is fixed from a placeholder-script preimage, so
	// re-deriving the preimage here (now that scripts are attached) would
	// hash something the signer never signed. A malformed id simply fails
	// every signature check below.
	sigHash, _ := hex.DecodeString(t.ID)

	totalInput := types.Zero
	for _, in := range t.Inputs {
		op := in.Outpoint()

		// 3. Referenced UTXO must exist in the snapshot.
		entry, ok := snap.Get(op.Key())
		if !ok {
			return types.Zero, reject(MissingInput, "no unspent output at %s", op)
		}

		// 4. Lock-height policy.
		if entry.LockHeight != nil && currentHeight < *entry.LockHeight {
			return types.Zero, reject(Locked, "output %s locked until height %d, current height %d", op, *entry.LockHeight, currentHeight)
		}

		// 5. Unlocking script must satisfy the locking script over the signed hash.
		if !crypto.EvaluateP2PKH(in.UnlockingScript, entry.LockingScript, sigHash) {
			return types.Zero, reject(BadScript, "unlocking script for %s does not satisfy locking script", op)
		}

		totalInput = totalInput.Add(entry.Value)
	}

	totalOutput := t.TotalOutputValue()

	// 6. Conservation of value: outputs may not exceed inputs.
	if !isCoinbase && totalInput.LessThan(totalOutput) {
		return types.Zero, reject(ValueOverflow, "outputs %s exceed inputs %s", totalOutput, totalInput)
	}

	// 7. Every output must be strictly positive.
	for i, out := range t.Outputs {
		if !out.Value.IsPositive() {
			return types.Zero, reject(ZeroOutput, "output %d has non-positive value %s", i, out.Value)
		}
	}

	if isCoinbase {
		return types.Zero, nil
	}
	return totalInput.Sub(totalOutput), nil
}
