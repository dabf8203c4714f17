// Package miner assembles candidate blocks from the mempool and solves
// proof-of-work for them.
package miner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ledgersim/ledgersim/internal/consensus"
	"github.com/ledgersim/ledgersim/internal/mempool"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// ChainReader is the minimal view of chain state the miner needs to
// assemble a block on top of the current tip and to retarget difficulty.
type ChainReader interface {
	// Tip returns the current chain height and its header.
	Tip() (height uint64, header *block.Header)
	// HeaderAtHeight returns the header committed at a given height.
	HeaderAtHeight(height uint64) (*block.Header, bool)
}

// UTXOProvider supplies the committed UTXO snapshot the miner validates
// mempool transactions against.
type UTXOProvider interface {
	Snapshot() (tx.MapSnapshot, error)
}

// Params holds the consensus knobs from config.ChainConfig relevant to
// mining.
type Params struct {
	InitialReward            types.Amount
	HalvingInterval          uint64
	TargetBlockTimeSeconds   int64
	DifficultyAdjustInterval uint64
	InitialDifficulty        uint64
	MaxDrain                 int
	Threads                  int
}

// Miner produces candidate blocks for a given miner address.
type Miner struct {
	chain  ChainReader
	utxos  UTXOProvider
	pool   *mempool.Pool
	params Params
}

// New creates a Miner.
func New(chain ChainReader, utxos UTXOProvider, pool *mempool.Pool, params Params) *Miner {
	return &Miner{chain: chain, utxos: utxos, pool: pool, params: params}
}

// Mine runs the block-assembly algorithm: snapshot the mempool, select fee-ordered
// transactions that still resolve against the UTXO set, build a coinbase,
// compute the merkle root and difficulty, and search for a valid nonce.
// It returns the assembled block and the ids of the non-coinbase
// transactions it drained from the mempool.
func (m *Miner) Mine(ctx context.Context, minerAddress types.Address) (*block.Block, []string, error) {
	tipHeight, tipHeader := m.chain.Tip()
	height := tipHeight + 1

	snap, err := m.utxos.Snapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot utxo set: %w", err)
	}

	// 1. Snapshot the mempool up to the configured size bound.
	maxDrain := m.params.MaxDrain
	if maxDrain <= 0 {
		maxDrain = 1000
	}
	drained := m.pool.Drain(maxDrain)

	// 2. Filter to transactions whose fee resolves, sort by fee descending,
	// ties broken by submission order.
	type feeTx struct {
		tx  *tx.Transaction
		fee types.Amount
		seq uint64
	}
	selected := make([]feeTx, 0, len(drained))
	for _, d := range drained {
		fee, ok := mempool.Fee(d.Tx, snap)
		if !ok {
			continue
		}
		selected = append(selected, feeTx{tx: d.Tx, fee: fee, seq: d.Seq})
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].fee.Cmp(selected[j].fee) != 0 {
			return selected[i].fee.Cmp(selected[j].fee) > 0
		}
		return selected[i].seq < selected[j].seq
	})

	totalFees := types.Zero
	minedIDs := make([]string, 0, len(selected))
	txs := make([]*tx.Transaction, 0, len(selected)+1)
	for _, s := range selected {
		totalFees = totalFees.Add(s.fee)
		minedIDs = append(minedIDs, s.tx.ID)
	}

	// 3. Build the coinbase with a deterministic id.
	reward := Reward(m.params.InitialReward, height, m.params.HalvingInterval)
	coinbase := &tx.Transaction{
		ID:      fmt.Sprintf("coinbase_%d", height),
		Inputs:  nil,
		Outputs: []tx.Output{{Value: reward.Add(totalFees), LockingScript: "P2PKH " + string(minerAddress)}},
	}

	// 4. Prepend coinbase.
	txs = append(txs, coinbase)
	for _, s := range selected {
		txs = append(txs, s.tx)
	}
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}
	merkleRoot := block.ComputeMerkleRoot(ids)

	// 5. Determine difficulty target and timestamp.
	difficulty := m.nextDifficulty(height, tipHeader)
	timestamp := time.Now().Unix()
	if timestamp <= tipHeader.Timestamp {
		timestamp = tipHeader.Timestamp + 1
	}

	header := &block.Header{
		Version:          1,
		PreviousHash:     tipHeader.Hash(),
		MerkleRoot:       merkleRoot,
		Timestamp:        timestamp,
		DifficultyTarget: difficulty,
		Nonce:            0,
		Height:           height,
	}

	// 6. Solve proof-of-work.
	solved, err := consensus.Seal(ctx, header, m.params.Threads)
	if err != nil {
		return nil, nil, err
	}

	blk := &block.Block{
		Hash:         solved.Hash(),
		Header:       solved,
		Transactions: txs,
	}
	return blk, minedIDs, nil
}

// nextDifficulty implements the retargeting rule. Adjustment occurs only
// when the height being mined is a multiple of DifficultyAdjustInterval
// (and not genesis); otherwise the previous target carries forward.
func (m *Miner) nextDifficulty(height uint64, tipHeader *block.Header) uint64 {
	interval := m.params.DifficultyAdjustInterval
	if interval == 0 || height == 0 || height%interval != 0 || height < interval {
		return tipHeader.DifficultyTarget
	}

	startHeight := height - interval
	startHeader, ok := m.chain.HeaderAtHeight(startHeight)
	if !ok {
		return tipHeader.DifficultyTarget
	}

	actual := tipHeader.Timestamp - startHeader.Timestamp
	expected := int64(interval) * m.params.TargetBlockTimeSeconds
	return consensus.Retarget(tipHeader.DifficultyTarget, actual, expected)
}
