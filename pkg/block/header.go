// Package block defines the block header, merkle root, and proof-of-work
// predicate.
package block

import (
	"fmt"
	"strings"

	"github.com/ledgersim/ledgersim/pkg/crypto"
)

// Header carries a block's metadata. Height is contiguous from 0 but is
// not part of the canonical hashed preimage below.
type Header struct {
	Version          uint32 `json:"version"`
	PreviousHash     string `json:"previous_block_hash"`
	MerkleRoot       string `json:"merkle_root"`
	Timestamp        int64  `json:"timestamp"`
	DifficultyTarget uint64 `json:"difficulty_target"`
	Nonce            uint64 `json:"nonce"`
	Height           uint64 `json:"height"`
}

// Preimage concatenates version, previous_block_hash, merkle_root,
// timestamp, difficulty_target, nonce with no separators, in that order.
func (h *Header) Preimage() string {
	return fmt.Sprintf("%d%s%s%d%d%d", h.Version, h.PreviousHash, h.MerkleRoot, h.Timestamp, h.DifficultyTarget, h.Nonce)
}

// Hash computes the header hash: hex SHA-256 of Preimage().
func (h *Header) Hash() string {
	return crypto.SHA256Hex([]byte(h.Preimage()))
}

// SatisfiesDifficulty reports whether hash has at least target leading hex
// zero characters.
func SatisfiesDifficulty(hash string, target uint64) bool {
	if uint64(len(hash)) < target {
		return false
	}
	return strings.HasPrefix(hash, strings.Repeat("0", int(target)))
}
