// Package mempool holds validated, unconfirmed transactions awaiting
// inclusion in a block.
package mempool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Errors returned by Submit.
var (
	ErrDuplicateMempoolEntry = errors.New("DuplicateMempoolEntry")
)

// entry is a submitted transaction plus its submission sequence, used to
// break ties by arrival order when the miner sorts by fee.
type entry struct {
	tx  *tx.Transaction
	seq uint64
}

// Pool is a mutex-serialized set of pending transactions keyed by id.
// Membership implies the transaction validated against the committed UTXO
// snapshot at insertion time, not a guarantee of continued spendability.
type Pool struct {
	mu      sync.Mutex
	byID    map[string]*entry
	order   []string // ids in submission order, for drain's deterministic iteration
	nextSeq uint64
}

// New creates an empty mempool.
func New() *Pool {
	return &Pool{byID: make(map[string]*entry)}
}

// Submit validates tx against snap at currentHeight and, on success, adds it
// to the pool. Rejects a transaction whose id is already present without
// re-running validation.
func (p *Pool) Submit(t *tx.Transaction, snap tx.Snapshot, currentHeight uint64) (types.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byID[t.ID]; exists {
		return types.Zero, fmt.Errorf("%w: %s", ErrDuplicateMempoolEntry, t.ID)
	}

	fee, err := tx.Validate(t, snap, currentHeight, false)
	if err != nil {
		return types.Zero, err
	}

	p.byID[t.ID] = &entry{tx: t, seq: p.nextSeq}
	p.order = append(p.order, t.ID)
	p.nextSeq++
	return fee, nil
}

// Contains reports whether id is currently pooled.
func (p *Pool) Contains(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byID[id]
	return ok
}

// Count returns the number of pooled transactions.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// DrainedTx pairs a pooled transaction with its submission sequence number,
// so the miner can break fee ties by arrival order.
type DrainedTx struct {
	Tx  *tx.Transaction
	Seq uint64
}

// Drain returns up to limit pooled transactions in submission order. It
// does not remove them; the caller removes mined ids via RemoveMany once a
// block is accepted.
func (p *Pool) Drain(limit int) []DrainedTx {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]DrainedTx, 0, n)
	for _, id := range p.order[:n] {
		e := p.byID[id]
		out = append(out, DrainedTx{Tx: e.tx, Seq: e.seq})
	}
	return out
}

// RemoveMany removes the given transaction ids, e.g. after they are mined
// into an accepted block.
func (p *Pool) RemoveMany(ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(ids) == 0 {
		return
	}
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
		delete(p.byID, id)
	}
	kept := p.order[:0:0]
	for _, id := range p.order {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	p.order = kept
}

// Fee computes the fee for a pooled transaction against snap: the sum of
// referenced input values minus the sum of output values, computed lazily
// (not cached at submission time) since the snapshot may have advanced.
func Fee(t *tx.Transaction, snap tx.Snapshot) (types.Amount, bool) {
	total := types.Zero
	for _, in := range t.Inputs {
		entry, ok := snap.Get(in.Outpoint().Key())
		if !ok {
			return types.Zero, false
		}
		total = total.Add(entry.Value)
	}
	return total.Sub(t.TotalOutputValue()), true
}
