// Package perm enumerates permutations of index sequences in lexicographic
// order.
//
// Net-ordering search treats the rank of a permutation in this enumeration
// as its tie-break key, so the order is part of the contract: [0 1 2] comes
// first and [n-1 ... 1 0] last.
package perm

import (
	"iter"
	"slices"
)

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n! (n factorial), the product 1 × 2 × ... × n.
// For n <= 1, Factorial returns 1.
//
// Factorials grow extremely fast: 21! overflows int64. Callers enumerating
// permutations should cap n well below that.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Next rearranges p into the lexicographically next permutation and reports
// whether one existed. When p is already the last permutation, Next leaves
// it sorted ascending and returns false.
func Next(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		slices.Reverse(p)
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}

// All yields (rank, permutation) pairs of [0, n) in lexicographic order.
// If limit > 0, at most limit permutations are yielded.
//
// The yielded slice is reused between iterations; clone it to keep it.
func All(n, limit int) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		p := Seq(n)
		for rank := 0; limit <= 0 || rank < limit; rank++ {
			if !yield(rank, p) {
				return
			}
			if !Next(p) {
				return
			}
		}
	}
}

// Generate returns permutations of [0, 1, ..., n-1] in lexicographic order.
//
// If limit > 0, Generate returns at most limit permutations.
// If limit <= 0, Generate returns all n! permutations.
//
// Each returned slice is a separate allocation, safe to modify without
// affecting others. For n = 0 the result is [[]], one empty permutation.
//
// For n >= 12 the number of permutations runs into the hundreds of millions.
// Use All, or a limit, when n is large.
func Generate(n, limit int) [][]int {
	result := make([][]int, 0, Count(n, limit))
	for _, p := range All(n, limit) {
		result = append(result, slices.Clone(p))
	}
	return result
}

// Count returns the number of permutations All(n, limit) yields.
func Count(n, limit int) int {
	total := Factorial(n)
	if limit > 0 && limit < total {
		return limit
	}
	return total
}

// Valid reports whether p is a permutation of [0, n).
func Valid(p []int, n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range p {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
