package chain

import (
	"encoding/json"
	"fmt"

	"github.com/ledgersim/ledgersim/internal/storage"
	"github.com/ledgersim/ledgersim/pkg/block"
	"github.com/ledgersim/ledgersim/pkg/types"
)

// Key prefixes for the block store.
var (
	prefixBlockByHash = []byte("b/") // b/<hash> -> block JSON
	prefixHeightIndex = []byte("h/") // h/h<height, 20-digit zero-padded decimal> -> hash
	keyStateTip       = []byte("s/tip")
	keyStateHeight    = []byte("s/height")
	keyStateSupply    = []byte("s/supply")
)

// BlockStore persists blocks, a height->hash index, and chain tip state.
type BlockStore struct {
	db storage.DB
}

// NewBlockStore wraps db as a BlockStore.
func NewBlockStore(db storage.DB) *BlockStore {
	return &BlockStore{db: db}
}

func heightKey(height uint64) []byte {
	return []byte(fmt.Sprintf("%sh%020d", prefixHeightIndex, height))
}

func blockHashKey(hash string) []byte {
	return append(append([]byte{}, prefixBlockByHash...), []byte(hash)...)
}

// PutBlock persists a block and its height index entry.
func (s *BlockStore) PutBlock(b *block.Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}
	if err := s.db.Put(blockHashKey(b.Hash), data); err != nil {
		return fmt.Errorf("put block: %w", err)
	}
	if err := s.db.Put(heightKey(b.Header.Height), []byte(b.Hash)); err != nil {
		return fmt.Errorf("put height index: %w", err)
	}
	return nil
}

// StageBlock stages a block record and its height index entry into batch
// without committing it, for combining with other stores' writes into a
// single all-or-nothing commit.
func (s *BlockStore) StageBlock(batch storage.Batch, b *block.Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}
	if err := batch.Put(blockHashKey(b.Hash), data); err != nil {
		return fmt.Errorf("stage block: %w", err)
	}
	if err := batch.Put(heightKey(b.Header.Height), []byte(b.Hash)); err != nil {
		return fmt.Errorf("stage height index: %w", err)
	}
	return nil
}

// GetByHash loads a block by its hash.
func (s *BlockStore) GetByHash(hash string) (*block.Block, bool, error) {
	data, err := s.db.Get(blockHashKey(hash))
	if err != nil {
		return nil, false, nil
	}
	var b block.Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, false, fmt.Errorf("unmarshal block: %w", err)
	}
	return &b, true, nil
}

// GetByHeight loads a block by height.
func (s *BlockStore) GetByHeight(height uint64) (*block.Block, bool, error) {
	hash, err := s.db.Get(heightKey(height))
	if err != nil {
		return nil, false, nil
	}
	return s.GetByHash(string(hash))
}

// HasHash reports whether a block with this hash already exists.
func (s *BlockStore) HasHash(hash string) bool {
	ok, _ := s.db.Has(blockHashKey(hash))
	return ok
}

// LoadState reads the persisted chain tip, if any.
func (s *BlockStore) LoadState() (State, bool) {
	tip, err := s.db.Get(keyStateTip)
	if err != nil {
		return State{}, false
	}
	heightB, err := s.db.Get(keyStateHeight)
	if err != nil {
		return State{}, false
	}
	supplyB, err := s.db.Get(keyStateSupply)
	if err != nil {
		return State{}, false
	}
	var height uint64
	fmt.Sscanf(string(heightB), "%d", &height)
	var supply types.Amount
	if err := json.Unmarshal(supplyB, &supply); err != nil {
		return State{}, false
	}
	return State{Height: height, TipHash: string(tip), Supply: supply}, true
}

// SaveState persists the chain tip with direct, unbatched writes. Block
// acceptance uses it only when the backend is not a storage.Batcher;
// otherwise the tip is staged with StageState into the block's batch.
func (s *BlockStore) SaveState(st State) error {
	supplyB, err := json.Marshal(st.Supply)
	if err != nil {
		return fmt.Errorf("marshal supply: %w", err)
	}
	if err := s.db.Put(keyStateTip, []byte(st.TipHash)); err != nil {
		return err
	}
	if err := s.db.Put(keyStateHeight, []byte(fmt.Sprintf("%d", st.Height))); err != nil {
		return err
	}
	return s.db.Put(keyStateSupply, supplyB)
}

// StageState stages the three chain-tip state keys into batch without
// committing it, for combining with other stores' writes into a single
// all-or-nothing commit.
func (s *BlockStore) StageState(batch storage.Batch, st State) error {
	supplyB, err := json.Marshal(st.Supply)
	if err != nil {
		return fmt.Errorf("marshal supply: %w", err)
	}
	if err := batch.Put(keyStateTip, []byte(st.TipHash)); err != nil {
		return fmt.Errorf("stage state tip: %w", err)
	}
	if err := batch.Put(keyStateHeight, []byte(fmt.Sprintf("%d", st.Height))); err != nil {
		return fmt.Errorf("stage state height: %w", err)
	}
	if err := batch.Put(keyStateSupply, supplyB); err != nil {
		return fmt.Errorf("stage state supply: %w", err)
	}
	return nil
}
