package block

import "testing"

func TestMerkleRootEmpty(t *testing.T) {
	if got := ComputeMerkleRoot(nil); got != zeroMerkleRoot {
		t.Fatalf("empty merkle root = %s, want 64 zeros", got)
	}
}

func TestMerkleRootSingle(t *testing.T) {
	if got := ComputeMerkleRoot([]string{"abc"}); got != "abc" {
		t.Fatalf("single-id merkle root = %s, want abc", got)
	}
}

func TestMerkleRootOddDuplicatesLast(t *testing.T) {
	three := ComputeMerkleRoot([]string{"a", "b", "c"})
	four := ComputeMerkleRoot([]string{"a", "b", "c", "c"})
	if three != four {
		t.Fatalf("odd-length merkle root should duplicate the last id: %s != %s", three, four)
	}
}

func TestMerkleRootDeterministic(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	if ComputeMerkleRoot(ids) != ComputeMerkleRoot(ids) {
		t.Fatal("merkle root must be deterministic for the same input")
	}
}

func TestHeaderPreimageExcludesHeight(t *testing.T) {
	h := &Header{Version: 1, PreviousHash: "p", MerkleRoot: "m", Timestamp: 5, DifficultyTarget: 2, Nonce: 7, Height: 99}
	pre := h.Preimage()
	h2 := *h
	h2.Height = 0
	if pre != h2.Preimage() {
		t.Fatal("height must not affect the header preimage")
	}
}

func TestSatisfiesDifficulty(t *testing.T) {
	if !SatisfiesDifficulty("000abc", 3) {
		t.Fatal("hash with 3 leading zeros should satisfy target 3")
	}
	if SatisfiesDifficulty("00fabc", 3) {
		t.Fatal("hash with 2 leading zeros should not satisfy target 3")
	}
	if !SatisfiesDifficulty("ffffff", 0) {
		t.Fatal("any hash should satisfy target 0")
	}
}

func TestBlockTxIDsAndCoinbase(t *testing.T) {
	b := &Block{Header: &Header{}}
	if ids := b.TxIDs(); len(ids) != 0 {
		t.Fatalf("empty block should have no tx ids, got %v", ids)
	}
	if b.Coinbase() != nil {
		t.Fatal("empty block should have no coinbase")
	}
}
