package miner

import "github.com/ledgersim/ledgersim/pkg/types"

// maxHalvings is the point at which 2^halvings overflows the configured
// precision floor and the reward is defined to be zero.
const maxHalvings = 64

// Reward computes reward(h) = initial / 2^(h / halvingInterval), returning
// zero once halvings reaches maxHalvings.
func Reward(initial types.Amount, height, halvingInterval uint64) types.Amount {
	if halvingInterval == 0 {
		return initial
	}
	halvings := height / halvingInterval
	if halvings >= maxHalvings {
		return types.Zero
	}
	return initial.DivPow2(uint(halvings))
}
