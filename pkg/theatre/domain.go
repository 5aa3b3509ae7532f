// Package theatre provides constraint-based scheduling for operating theatres.
// This file implements the mutable bitset that backs each surgery's live
// domain of candidate values, and the change trail that records every
// removal so backtracking restores domains exactly instead of recomputing
// them.
package theatre

import "math/bits"

// bitSet is a fixed-capacity set over candidate indices [0, size).
// Unlike an immutable copy-on-write domain, it is mutated in place during
// search; every clear is paired with a trail entry so the exact set of
// removals can be re-inserted on backtrack. The cardinality is maintained
// incrementally, making the most-constrained-variable scan O(1) per surgery.
type bitSet struct {
	words []uint64
	size  int
	count int
}

// newFullBitSet returns a set containing every index in [0, size).
func newFullBitSet(size int) bitSet {
	words := make([]uint64, (size+63)/64)
	for i := 0; i < size; i++ {
		words[i/64] |= 1 << uint(i%64)
	}
	return bitSet{words: words, size: size, count: size}
}

// has reports whether index i is present.
func (b *bitSet) has(i int) bool {
	if i < 0 || i >= b.size {
		return false
	}
	return (b.words[i/64]>>uint(i%64))&1 == 1
}

// clear removes index i. Removing an absent index is a no-op.
func (b *bitSet) clear(i int) {
	if !b.has(i) {
		return
	}
	b.words[i/64] &^= 1 << uint(i%64)
	b.count--
}

// set re-inserts index i. Inserting a present index is a no-op.
func (b *bitSet) set(i int) {
	if i < 0 || i >= b.size || b.has(i) {
		return
	}
	b.words[i/64] |= 1 << uint(i%64)
	b.count++
}

// iterate calls f for each present index in ascending order. The callback
// may clear indices of this set: iteration walks a local copy of each word,
// so concurrent pruning does not disturb the walk.
func (b *bitSet) iterate(f func(i int)) {
	for wordIdx, word := range b.words {
		for word != 0 {
			lowest := word & -word
			offset := bits.TrailingZeros64(word)
			f(wordIdx*64 + offset)
			word &^= lowest
		}
	}
}

// appendValues appends all present indices to dst in ascending order.
func (b *bitSet) appendValues(dst []int) []int {
	b.iterate(func(i int) {
		dst = append(dst, i)
	})
	return dst
}

// clone returns an independent copy of the set.
func (b *bitSet) clone() bitSet {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return bitSet{words: words, size: b.size, count: b.count}
}

// equal reports whether both sets contain exactly the same indices.
func (b *bitSet) equal(other *bitSet) bool {
	if b.size != other.size || b.count != other.count {
		return false
	}
	for i := range b.words {
		if b.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// trailEntry records the removal of one candidate from one surgery's domain.
type trailEntry struct {
	surgery   int
	candidate int
}

// trail is the change log of domain removals made by propagation. Each
// search frame remembers the trail length at the moment its value was
// committed; undoTo pops back to that mark and re-inserts every removal,
// giving exact restoration whose cost is bounded by the number of removals
// made below the mark.
type trail struct {
	entries []trailEntry
}

// mark returns the current log position.
func (t *trail) mark() int { return len(t.entries) }

// record logs the removal of candidate from the given surgery's domain.
func (t *trail) record(surgery, candidate int) {
	t.entries = append(t.entries, trailEntry{surgery: surgery, candidate: candidate})
}

// undoTo re-inserts every removal recorded after mark, newest first, and
// truncates the log back to mark.
func (t *trail) undoTo(mark int, domains []bitSet) {
	for i := len(t.entries) - 1; i >= mark; i-- {
		e := t.entries[i]
		domains[e.surgery].set(e.candidate)
	}
	t.entries = t.entries[:mark]
}

// len returns the number of recorded removals.
func (t *trail) len() int { return len(t.entries) }
