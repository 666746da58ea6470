// Package perm enumerates permutations of index sequences in lexicographic
// order.
package perm

import "slices"

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
// This is the first permutation in lexicographic order.
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
// Factorials grow extremely fast: 21! already overflows int64, so Factorial
// saturates at the largest int instead of wrapping.
func Factorial(n int) int {
	const maxInt = int(^uint(0) >> 1)
	result := 1
	for i := 2; i <= n; i++ {
		if result > maxInt/i {
			return maxInt
		}
		result *= i
	}
	return result
}

// Next rearranges p into the next permutation in lexicographic order and
// reports whether one existed. After the last permutation (p sorted in
// descending order) Next resets p to ascending order and returns false.
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

// Generate returns permutations of [0, 1, ..., n-1] in lexicographic order,
// starting from the identity.
//
// If limit > 0, Generate returns at most limit permutations.
// If limit <= 0, Generate returns all n! permutations.
//
// Each returned slice is a separate allocation, safe to modify without affecting others.
//
// For n = 0 Generate returns [[]] (one empty permutation).
//
// For n >= 13, the number of permutations exceeds billions. Always use a limit
// when n is large, or your program will exhaust memory.
func Generate(n, limit int) [][]int {
	p := Seq(n)

	capacity := limit
	if capacity <= 0 || capacity > Factorial(min(n, 12)) {
		capacity = Factorial(min(n, 12))
	}
	result := make([][]int, 0, capacity)
	result = append(result, slices.Clone(p))

	for (limit <= 0 || len(result) < limit) && Next(p) {
		result = append(result, slices.Clone(p))
	}
	return result
}

// Apply maps a permutation of positions through base: the i-th element of
// the result is base[p[i]].
func Apply(base, p []int) []int {
	out := make([]int, len(p))
	for i, pos := range p {
		out[i] = base[pos]
	}
	return out
}
