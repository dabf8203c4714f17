// Package consensus implements proof-of-work nonce search and difficulty
// retargeting. Difficulty is expressed as a count of required leading hex
// zero characters in the header hash, not a big.Int target fraction.
package consensus

import (
	"context"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ledgersim/ledgersim/pkg/block"
)

// Seal searches for a nonce satisfying header.DifficultyTarget leading hex
// zeros in the header hash, striping the nonce space across threads
// goroutines. It mutates a copy of header and returns it once solved. The
// search observes ctx cancellation cooperatively: on cancellation it
// returns without side effects (ctx.Err()).
//
// The PoW loop is CPU-bound and is safe to parallelize across disjoint
// nonce ranges because only the first goroutine to find a valid nonce
// commits it; every other goroutine stops once that happens.
func Seal(ctx context.Context, header *block.Header, threads int) (*block.Header, error) {
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	if threads < 1 {
		threads = 1
	}
	if threads == 1 {
		return sealSingle(ctx, header)
	}
	return sealParallel(ctx, header, threads)
}

func sealSingle(ctx context.Context, header *block.Header) (*block.Header, error) {
	h := *header
	for nonce := uint64(0); ; nonce++ {
		if nonce%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		h.Nonce = nonce
		if block.SatisfiesDifficulty(h.Hash(), h.DifficultyTarget) {
			return &h, nil
		}
	}
}

// sealParallel stripes the nonce space: goroutine i tries nonces
// i, i+threads, i+2*threads, ... so no two goroutines ever try the same
// nonce, and any one of them finding a solution is equally valid.
func sealParallel(ctx context.Context, header *block.Header, threads int) (*block.Header, error) {
	findCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		found   atomic.Bool
		winner  atomic.Uint64
		winSeen atomic.Bool
	)

	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			h := *header
			for n, nonce := 0, uint64(start); ; n, nonce = n+1, nonce+uint64(threads) {
				if n%2048 == 0 {
					select {
					case <-findCtx.Done():
						return
					default:
					}
				}
				h.Nonce = nonce
				if block.SatisfiesDifficulty(h.Hash(), h.DifficultyTarget) {
					if found.CompareAndSwap(false, true) {
						winner.Store(nonce)
						winSeen.Store(true)
					}
					cancel()
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if !winSeen.Load() {
		return nil, ctx.Err()
	}
	h := *header
	h.Nonce = winner.Load()
	return &h, nil
}

// clamp bounds retargeting ratio adjustments to [0.25, 4.0].
const (
	minRatio = 0.25
	maxRatio = 4.0
)

// Retarget computes the next difficulty target from the ratio of actual to
// expected elapsed time, clamped to [0.25, 4.0], then
// new_target = max(1, round(prev_target / ratio)).
func Retarget(prevTarget uint64, actualSeconds, expectedSeconds int64) uint64 {
	if expectedSeconds <= 0 {
		return prevTarget
	}
	ratio := float64(actualSeconds) / float64(expectedSeconds)
	if ratio < minRatio {
		ratio = minRatio
	}
	if ratio > maxRatio {
		ratio = maxRatio
	}
	next := math.Round(float64(prevTarget) / ratio)
	if next < 1 {
		next = 1
	}
	return uint64(next)
}
