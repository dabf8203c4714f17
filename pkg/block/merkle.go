package block

import (
	"strings"

	"github.com/ledgersim/ledgersim/pkg/crypto"
)

// zeroMerkleRoot is returned for an empty transaction list: 64 hex zeros.
var zeroMerkleRoot = strings.Repeat("0", 64)

// ComputeMerkleRoot computes the merkle root over transaction ids. If the
// level has an odd count, the last id is duplicated before pairing. A
// single id hashes to itself; an empty list hashes to 64 hex zeros.
func ComputeMerkleRoot(txIDs []string) string {
	if len(txIDs) == 0 {
		return zeroMerkleRoot
	}
	if len(txIDs) == 1 {
		return txIDs[0]
	}

	level := make([]string, len(txIDs))
	copy(level, txIDs)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]string, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = crypto.SHA256Hex([]byte(level[i] + level[i+1]))
		}
		level = next
	}
	return level[0]
}
