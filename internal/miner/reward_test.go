package miner

import (
	"testing"

	"github.com/ledgersim/ledgersim/pkg/types"
)

func TestRewardHalves(t *testing.T) {
	initial := types.NewAmount(50)
	if got := Reward(initial, 0, 10); got.Cmp(initial) != 0 {
		t.Fatalf("height 0 reward = %s, want %s", got, initial)
	}
	if got := Reward(initial, 10, 10); got.Cmp(types.NewAmount(25)) != 0 {
		t.Fatalf("first halving reward = %s, want 25", got)
	}
	if got := Reward(initial, 20, 10); got.Cmp(types.NewAmountFromFloat(12.5)) != 0 {
		t.Fatalf("second halving reward = %s, want 12.5", got)
	}
}

func TestRewardZeroAfterMaxHalvings(t *testing.T) {
	initial := types.NewAmount(50)
	height := maxHalvings * 10
	if got := Reward(initial, uint64(height), 10); !got.IsZero() {
		t.Fatalf("reward past max halvings = %s, want 0", got)
	}
}
