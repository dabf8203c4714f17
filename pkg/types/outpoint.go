package types

import "fmt"

// Outpoint references a specific output of a transaction.
type Outpoint struct {
	TxID  string `json:"source_tx_id"`
	Index uint32 `json:"source_output_index"`
}

// IsZero reports whether this is the sentinel outpoint used by coinbase
// inputs, which do not reference any prior output.
func (o Outpoint) IsZero() bool {
	return o.TxID == "" && o.Index == 0
}

// Key returns the UTXO store's composite key form "{tx_id}:{output_index}".
func (o Outpoint) Key() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

func (o Outpoint) String() string {
	return o.Key()
}
