package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source yields uniform integers in [0, n). Tests inject a seeded math/rand source.
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand. Each call is independent of the previous ones.
type CryptoSource struct{}

func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("random: invalid bound %d", n))
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("random: failed to generate random number: %v", err))
	}
	return int(v.Int64())
}

// Shuffle performs a Fisher-Yates shuffle of slice in place.
func Shuffle[T any](src Source, slice []T) {
	for i := len(slice) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		slice[i], slice[j] = slice[j], slice[i]
	}
}

// Sample returns k elements chosen uniformly without replacement. The input is not modified.
// k is clamped to [0, len(items)].
func Sample[T any](src Source, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	pool := make([]T, len(items))
	copy(pool, items)
	// partial Fisher-Yates: the first k slots end up holding the sample
	for i := 0; i < k; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
