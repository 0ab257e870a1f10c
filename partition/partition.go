// Package partition splits a list of independent work items across a fixed
// number of workers.
package partition

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrNoWorkers = errors.New("partition: worker count must be positive")

// Divide splits items into n contiguous chunks of len(items)/n, puts the
// remainder in the last chunk and then moves the last chunk's tail items
// one by one to the earlier chunks, so that chunk sizes differ by at most one.
// items is not modified.
func Divide[T any](items []T, n int) ([][]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoWorkers, n)
	}
	step := len(items) / n
	chunks := make([][]T, n)
	for i := 0; i < n; i++ {
		lo := i * step
		hi := lo + step
		if i == n-1 {
			hi = len(items)
		}
		chunks[i] = append([]T{}, items[lo:hi]...)
	}

	last := n - 1
	for j := 0; len(chunks[last]) > step && j < last; j++ {
		tail := len(chunks[last]) - 1
		chunks[j] = append(chunks[j], chunks[last][tail])
		chunks[last] = chunks[last][:tail]
	}
	return chunks, nil
}

// Shard returns the chunk assigned to rank when items are divided across size
// cooperating processes. Every process computing the same Shard over the same
// input order agrees on the assignment.
func Shard[T any](items []T, rank, size int) ([]T, error) {
	if rank < 0 || rank >= size {
		return nil, fmt.Errorf("partition: rank %d out of range for size %d", rank, size)
	}
	chunks, err := Divide(items, size)
	if err != nil {
		return nil, err
	}
	return chunks[rank], nil
}

// Shuffle returns a shuffled copy of items. The same seed gives the same order.
func Shuffle[T any](items []T, seed int64) []T {
	out := append([]T{}, items...)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
