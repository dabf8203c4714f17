package block

import "github.com/ledgersim/ledgersim/pkg/tx"

// Block pairs a header with its solved hash and ordered transactions. The
// coinbase transaction is always transactions[0].
type Block struct {
	Hash         string          `json:"hash"`
	Header       *Header         `json:"header"`
	Transactions []*tx.Transaction `json:"transactions"`
}

// TxIDs returns the ids of every transaction in order, for merkle
// computation.
func (b *Block) TxIDs() []string {
	ids := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		ids[i] = t.ID
	}
	return ids
}

// Coinbase returns the block's coinbase transaction (always index 0).
func (b *Block) Coinbase() *tx.Transaction {
	if len(b.Transactions) == 0 {
		return nil
	}
	return b.Transactions[0]
}
