package sgtree

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether t and other hold the same keys with the same values
// in the same order, regardless of shape. Values are compared with
// reflect.DeepEqual; use EqualFunc for a custom comparison.
func (t *Tree[K, V]) Equal(other *Tree[K, V]) bool {
	return t.EqualFunc(other, func(a, b V) bool {
		return reflect.DeepEqual(a, b)
	})
}

// EqualFunc is like Equal but compares values with eq.
func (t *Tree[K, V]) EqualFunc(other *Tree[K, V], eq func(a, b V) bool) bool {
	if t.count != other.count {
		return false
	}
	a, b := t.Cursor(), other.Cursor()
	okA, okB := a.First(), b.First()
	for okA && okB {
		if t.compare(a.Key(), b.Key()) != 0 || !eq(a.Value(), b.Value()) {
			return false
		}
		okA, okB = a.Next(), b.Next()
	}
	return okA == okB
}

// Merge returns a new balanced tree holding the union of t and other, built
// in O(n+m). When both trees hold a key, t's entry is kept and the key is
// reported in conflicts. Neither input is modified.
func (t *Tree[K, V]) Merge(other *Tree[K, V]) (merged *Tree[K, V], conflicts []K) {
	mine := t.flatten(t.root, t.count)
	theirs, conflicts := t.sortedFrom(other)

	out := make([]Entry[K, V], 0, len(mine)+len(theirs))
	i, j := 0, 0
	for i < len(mine) && j < len(theirs) {
		c := t.compare(mine[i].Key, theirs[j].Key)
		switch {
		case c < 0:
			out = append(out, mine[i])
			i++
		case c > 0:
			out = append(out, theirs[j])
			j++
		default:
			out = append(out, mine[i])
			conflicts = append(conflicts, theirs[j].Key)
			i++
			j++
		}
	}
	out = append(out, mine[i:]...)
	out = append(out, theirs[j:]...)

	merged = t.emptyLike()
	merged.load(out)
	t.log.Info("merged trees", "left", len(mine), "right", len(theirs), "conflicts", len(conflicts))
	return merged, conflicts
}

// MergeFrom adds other's entries to t in place with the same conflict
// policy as Merge. It returns the entries that were added.
func (t *Tree[K, V]) MergeFrom(other *Tree[K, V]) (added []Entry[K, V], conflicts []K) {
	theirs, conflicts := t.sortedFrom(other)
	added = t.batchInsert(theirs)
	if len(added) == len(theirs) {
		return added, conflicts
	}

	// Anything not added collided with an existing key
	k := 0
	for _, e := range theirs {
		if k < len(added) && t.compare(added[k].Key, e.Key) == 0 {
			k++
			continue
		}
		conflicts = append(conflicts, e.Key)
	}
	return added, conflicts
}

// sortedFrom snapshots other in t's order. Trees built with a different
// comparator are re-sorted, and keys that other holds apart but t considers
// equal are collapsed to their first entry; the keys dropped are returned.
func (t *Tree[K, V]) sortedFrom(other *Tree[K, V]) (entries []Entry[K, V], dropped []K) {
	entries = other.flatten(other.root, other.count)
	cmpEntries := func(a, b Entry[K, V]) int {
		return t.compare(a.Key, b.Key)
	}
	if !slices.IsSortedFunc(entries, cmpEntries) {
		slices.SortStableFunc(entries, cmpEntries)
	}

	out := entries[:0]
	for i, e := range entries {
		if i > 0 && t.compare(out[len(out)-1].Key, e.Key) == 0 {
			dropped = append(dropped, e.Key)
			continue
		}
		out = append(out, e)
	}
	return out, dropped
}

// Split moves every entry into two new trees, keys < key in lower and
// keys >= key in upper, and leaves t empty.
func (t *Tree[K, V]) Split(key K) (lower, upper *Tree[K, V]) {
	entries := t.flatten(t.root, t.count)
	cut, _ := slices.BinarySearchFunc(entries, key, func(e Entry[K, V], k K) int {
		return t.compare(e.Key, k)
	})

	lower, upper = t.emptyLike(), t.emptyLike()
	lower.load(entries[:cut])
	upper.load(entries[cut:])

	t.log.Info("split tree", "lower", cut, "upper", len(entries)-cut)
	t.Clear()
	return lower, upper
}

// Digest returns a 64-bit xxhash fingerprint of the inorder key and value
// sequence. Trees that are Equal have equal digests as long as their values
// format identically with %v.
func (t *Tree[K, V]) Digest() uint64 {
	h := xxhash.New()
	for k, v := range t.All() {
		// Digest.Write never fails
		_, _ = fmt.Fprintf(h, "%v\x00%v\x00", k, v)
	}
	return h.Sum64()
}
