package tokenizer

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pair is an ordered pair of adjacent token ids.
type Pair struct {
	Left, Right int
}

// less orders pairs lexicographically by (Left, Right).
func (p Pair) less(o Pair) bool {
	return p.Left < o.Left || (p.Left == o.Left && p.Right < o.Right)
}

// CountPairs returns the number of occurrences of every adjacent pair in ids.
func CountPairs(ids []int) map[Pair]int {
	counts := make(map[Pair]int)
	countInto(counts, ids)
	return counts
}

func countInto(counts map[Pair]int, ids []int) {
	for i := 0; i+1 < len(ids); i++ {
		counts[Pair{ids[i], ids[i+1]}]++
	}
}

// CountPairsParallel splits ids into workers contiguous chunks and counts each
// chunk on its own goroutine. Every chunk but the last also counts the pair
// that crosses into the next chunk, so the result matches CountPairs.
func CountPairsParallel(ids []int, workers int) map[Pair]int {
	// every chunk needs at least one element for its boundary pair to exist
	workers = min(workers, len(ids)-1)
	if workers <= 1 {
		return CountPairs(ids)
	}

	size := len(ids) / workers

	var mu sync.Mutex
	counts := make(map[Pair]int)

	var g errgroup.Group
	for w := range workers {
		start := w * size
		end := start + size
		if w == workers-1 {
			end = len(ids)
		} else {
			// include the first element of the next chunk for the boundary pair
			end++
		}

		g.Go(func() error {
			local := make(map[Pair]int)
			countInto(local, ids[start:end])

			mu.Lock()
			defer mu.Unlock()
			for p, n := range local {
				counts[p] += n
			}
			return nil
		})
	}

	// workers never fail
	_ = g.Wait()
	return counts
}

// MostCommon returns the pair with the highest count. Ties are broken in
// favor of the lexicographically smallest pair so training is reproducible.
func MostCommon(counts map[Pair]int) (Pair, int, bool) {
	var best Pair
	var bestCount int
	for p, n := range counts {
		if n > bestCount || (n == bestCount && p.less(best)) {
			best, bestCount = p, n
		}
	}

	return best, bestCount, bestCount > 0
}
