// Package utxo maintains the unspent transaction output set: the mapping
// from "{tx_id}:{output_index}" to an output's value, locking script, and
// optional lock height.
package utxo

import (
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// UTXO is a single unspent output together with the outpoint that created it.
type UTXO struct {
	Outpoint      types.Outpoint `json:"outpoint"`
	Value         types.Amount  `json:"value"`
	LockingScript string        `json:"locking_script"`
	LockHeight    *uint64       `json:"lock_height,omitempty"`
}

// Entry adapts a UTXO into the Snapshot entry shape the validator consumes.
func (u *UTXO) Entry() tx.UTXOEntry {
	return tx.UTXOEntry{Value: u.Value, LockingScript: u.LockingScript, LockHeight: u.LockHeight}
}

// FromOutput builds the UTXO created by spending output `index` of
// transaction txID.
func FromOutput(txID string, index uint32, out tx.Output) *UTXO {
	return &UTXO{
		Outpoint:      types.Outpoint{TxID: txID, Index: index},
		Value:         out.Value,
		LockingScript: out.LockingScript,
		LockHeight:    out.LockHeight,
	}
}
