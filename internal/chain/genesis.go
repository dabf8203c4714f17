package chain

import (
	"github.com/ledgersim/ledgersim/internal/miner"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/tx"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// GenesisParams carries the consensus knobs needed to synthesize the
// genesis block.
type GenesisParams struct {
	InitialReward     types.Amount
	HalvingInterval   uint64
	InitialDifficulty uint64
	Timestamp         int64
}

// Genesis synthesizes the single-coinbase genesis block: a coinbase
// paying reward(0) to the sentinel locking script, a
// header with previous_block_hash "0" and nonce 0, at a caller-supplied
// fixed timestamp.
func Genesis(p GenesisParams) *block.Block {
	reward := miner.Reward(p.InitialReward, 0, p.HalvingInterval)
	coinbase := &tx.Transaction{
		ID:      "coinbase_0",
		Inputs:  nil,
		Outputs: []tx.Output{{Value: reward, LockingScript: types.GenesisLockingScript}},
	}

	merkleRoot := block.ComputeMerkleRoot([]string{coinbase.ID})
	header := &block.Header{
		Version:          1,
		PreviousHash:     "0",
		MerkleRoot:       merkleRoot,
		Timestamp:        p.Timestamp,
		DifficultyTarget: p.InitialDifficulty,
		Nonce:            0,
		Height:           0,
	}

	return &block.Block{
		Hash:         header.Hash(),
		Header:       header,
		Transactions: []*tx.Transaction{coinbase},
	}
}
