package chain

import "github.com/ledgersim/ledgersim/pkg/types"

// State holds the current chain tip.
type State struct {
	Height  uint64
	TipHash string
	Supply  types.Amount // cumulative coinbase value emitted so far
}

// IsGenesis reports whether no blocks have been committed yet.
func (s *State) IsGenesis() bool {
	return s.Height == 0 && s.TipHash == ""
}
