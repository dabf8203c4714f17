// Package chain implements the blockchain state machine: the ledger
// controller that accepts blocks, maintains the committed UTXO set, and
// exposes the tip to the miner.
package chain

import (
	"fmt"
	"sync"

	"github.com/ledgersim/ledgersim/internal/mempool"
	"github.com/ledgersim/ledgersim/internal/storage"
	"github.com/ledgersim/ledgersim/internal/utxo"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Chain is the single-writer ledger controller: it owns block
// acceptance, so every mutation to the committed UTXO set and block
// history happens under chain.mu.
type Chain struct {
	mu sync.Mutex

	utxos  *utxo.Store
	blocks *BlockStore
	pool   *mempool.Pool

	state State
}

// Open loads persisted chain state, synthesizing and committing the
// genesis block on first run.
func Open(utxos *utxo.Store, blocks *BlockStore, pool *mempool.Pool, genesis GenesisParams) (*Chain, error) {
	c := &Chain{utxos: utxos, blocks: blocks, pool: pool}

	if st, ok := blocks.LoadState(); ok {
		c.state = st
		return c, nil
	}

	g := Genesis(genesis)
	if err := c.commit(g); err != nil {
		return nil, fmt.Errorf("commit genesis block: %w", err)
	}
	return c, nil
}

// Tip returns the current chain height and header, satisfying
// miner.ChainReader.
func (c *Chain) Tip() (uint64, *block.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok, err := c.blocks.GetByHash(c.state.TipHash)
	if err != nil || !ok {
		return 0, nil
	}
	return c.state.Height, b.Header
}

// HeaderAtHeight returns the header committed at height, satisfying
// miner.ChainReader.
func (c *Chain) HeaderAtHeight(height uint64) (*block.Header, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok, err := c.blocks.GetByHeight(height)
	if err != nil || !ok {
		return nil, false
	}
	return b.Header, true
}

// State returns a copy of the current chain state.
func (c *Chain) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the committed UTXO set, satisfying miner.UTXOProvider.
func (c *Chain) Snapshot() (tx.MapSnapshot, error) {
	return c.utxos.Snapshot()
}

// AcceptBlock runs the block acceptance algorithm: structural linkage
// checks, merkle recomputation, proof-of-work verification, per-transaction
// validation against a working snapshot overlay, a coinbase reward bound
// check, and finally an atomic commit of the UTXO delta, block record, and
// mempool eviction.
func (c *Chain) AcceptBlock(b *block.Block, expectedReward func(height uint64) types.Amount) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 1. Reject blocks already seen.
	if c.blocks.HasHash(b.Hash) {
		return reject(DuplicateBlock, "block %s already accepted", b.Hash)
	}

	// 2. Must connect to the current tip.
	if b.Header.PreviousHash != c.state.TipHash {
		return reject(NotConnected, "previous_block_hash %s does not match tip %s", b.Header.PreviousHash, c.state.TipHash)
	}
	if b.Header.Height != c.state.Height+1 {
		return reject(WrongHeight, "expected height %d, got %d", c.state.Height+1, b.Header.Height)
	}

	// 3. Merkle root must match the transaction set.
	if got := block.ComputeMerkleRoot(b.TxIDs()); got != b.Header.MerkleRoot {
		return reject(BadMerkle, "computed merkle root %s does not match header %s", got, b.Header.MerkleRoot)
	}

	// 4. Proof of work must satisfy the header's own difficulty target.
	if got := b.Header.Hash(); got != b.Hash || !block.SatisfiesDifficulty(got, b.Header.DifficultyTarget) {
		return reject(WeakProofOfWork, "header hash %s does not satisfy difficulty target %d", got, b.Header.DifficultyTarget)
	}

	if len(b.Transactions) == 0 {
		return reject(BadMerkle, "block has no transactions")
	}
	coinbase := b.Transactions[0]

	// 5. Validate every transaction against a working snapshot overlay:
	// the committed set, adjusted for spends and additions made earlier
	// in this same block, so chained transactions within a block resolve.
	committed, err := c.utxos.Snapshot()
	if err != nil {
		return fmt.Errorf("load committed snapshot: %w", err)
	}
	working := make(tx.MapSnapshot, len(committed))
	for k, v := range committed {
		working[k] = v
	}

	var deleteKeys []string
	var adds []*utxo.UTXO
	totalFees := types.Zero

	if _, err := tx.Validate(coinbase, working, b.Header.Height, true); err != nil {
		return err
	}
	for i, out := range coinbase.Outputs {
		u := utxo.FromOutput(coinbase.ID, uint32(i), out)
		working[u.Outpoint.Key()] = u.Entry()
		adds = append(adds, u)
	}

	for _, t := range b.Transactions[1:] {
		fee, err := tx.Validate(t, working, b.Header.Height, false)
		if err != nil {
			return err
		}
		totalFees = totalFees.Add(fee)

		for _, in := range t.Inputs {
			key := in.Outpoint().Key()
			delete(working, key)
			deleteKeys = append(deleteKeys, key)
		}
		for i, out := range t.Outputs {
			u := utxo.FromOutput(t.ID, uint32(i), out)
			working[u.Outpoint.Key()] = u.Entry()
			adds = append(adds, u)
		}
	}

	// 6. The coinbase output total may not exceed reward(height) + fees.
	if expectedReward != nil {
		bound := expectedReward(b.Header.Height).Add(totalFees)
		if coinbase.TotalOutputValue().Cmp(bound) > 0 {
			return reject(CoinbaseTooLarge, "coinbase pays %s, exceeds reward+fees bound %s", coinbase.TotalOutputValue(), bound)
		}
	}

	// 7. Commit atomically: UTXO delta, block record, mempool eviction.
	if err := c.applyCommit(b, deleteKeys, adds, coinbase.TotalOutputValue()); err != nil {
		return err
	}

	minedIDs := make([]string, 0, len(b.Transactions)-1)
	for _, t := range b.Transactions[1:] {
		minedIDs = append(minedIDs, t.ID)
	}
	if c.pool != nil {
		c.pool.RemoveMany(minedIDs)
	}
	return nil
}

// commit applies a block (genesis or otherwise) without the full
// acceptance checks, used only for synthesizing genesis at Open time.
func (c *Chain) commit(b *block.Block) error {
	var adds []*utxo.UTXO
	for _, t := range b.Transactions {
		for i, out := range t.Outputs {
			adds = append(adds, utxo.FromOutput(t.ID, uint32(i), out))
		}
	}
	coinbaseValue := types.Zero
	if len(b.Transactions) > 0 {
		coinbaseValue = b.Transactions[0].TotalOutputValue()
	}
	return c.applyCommit(b, nil, adds, coinbaseValue)
}

// applyCommit persists a block's UTXO delta, block record, height index,
// and updated chain state as a single all-or-nothing unit: a crash or I/O
// failure partway through must never leave the UTXO set mutated without
// the block recorded and the tip advanced to match.
func (c *Chain) applyCommit(b *block.Block, deleteKeys []string, adds []*utxo.UTXO, coinbaseValue types.Amount) error {
	newState := State{
		Height:  b.Header.Height,
		TipHash: b.Hash,
		Supply:  c.state.Supply.Add(coinbaseValue),
	}

	batcher, ok := c.utxos.DB().(storage.Batcher)
	if !ok {
		if err := c.utxos.ApplyBlock(deleteKeys, adds); err != nil {
			return fmt.Errorf("apply utxo delta: %w", err)
		}
		if err := c.blocks.PutBlock(b); err != nil {
			return fmt.Errorf("persist block: %w", err)
		}
		if err := c.blocks.SaveState(newState); err != nil {
			return fmt.Errorf("persist chain state: %w", err)
		}
		c.state = newState
		return nil
	}

	batch := batcher.NewBatch()
	if err := c.utxos.StageBlock(batch, deleteKeys, adds); err != nil {
		return fmt.Errorf("stage utxo delta: %w", err)
	}
	if err := c.blocks.StageBlock(batch, b); err != nil {
		return fmt.Errorf("stage block: %w", err)
	}
	if err := c.blocks.StageState(batch, newState); err != nil {
		return fmt.Errorf("stage chain state: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("%w: %v", utxo.ErrBackendUnavailable, err)
	}
	c.state = newState
	return nil
}
