package sgtree

import "slices"

// BulkLoader collects entries in strictly ascending order and replaces the
// tree's contents with one balanced tree built from them.
type BulkLoader[K comparable, V any] struct {
	tree    *Tree[K, V]
	entries []Entry[K, V]
}

// Set appends a key-value pair to the bulk loader.
// Keys MUST be added in strictly ascending order.
func (l *BulkLoader[K, V]) Set(key K, value V) error {
	// Enforce sorted order, which also rules out duplicates
	if n := len(l.entries); n > 0 && l.tree.compare(key, l.entries[n-1].Key) <= 0 {
		return ErrKeysUnsorted
	}
	l.entries = append(l.entries, Entry[K, V]{Key: key, Value: value})
	return nil
}

// Len returns the number of entries added so far.
func (l *BulkLoader[K, V]) Len() int {
	return len(l.entries)
}

// BulkLoad runs fn with a fresh loader and, if fn succeeds, replaces the
// tree's contents with the loaded entries in a single O(n) build. If fn
// returns an error the tree is left untouched.
func (t *Tree[K, V]) BulkLoad(fn func(l *BulkLoader[K, V]) error) error {
	l := &BulkLoader[K, V]{tree: t}
	if err := fn(l); err != nil {
		return err
	}
	t.load(l.entries)
	return nil
}

// BatchInsert adds entries with a single rebuild instead of one amortized
// insertion each. Keys already in the tree, and repeats within the batch
// after their first occurrence, are rejected; existing values are kept.
// It returns the number of entries applied.
func (t *Tree[K, V]) BatchInsert(entries []Entry[K, V]) int {
	return len(t.batchInsert(entries))
}

// batchInsert returns the entries that were actually added.
func (t *Tree[K, V]) batchInsert(entries []Entry[K, V]) []Entry[K, V] {
	if len(entries) == 0 {
		return nil
	}

	incoming := slices.Clone(entries)
	slices.SortStableFunc(incoming, func(a, b Entry[K, V]) int {
		return t.compare(a.Key, b.Key)
	})
	// Stable sort keeps the first occurrence of each key in front
	incoming = slices.CompactFunc(incoming, func(a, b Entry[K, V]) bool {
		return t.compare(a.Key, b.Key) == 0
	})

	current := t.flatten(t.root, t.count)
	merged := make([]Entry[K, V], 0, len(current)+len(incoming))
	applied := make([]Entry[K, V], 0, len(incoming))

	i, j := 0, 0
	for i < len(current) && j < len(incoming) {
		c := t.compare(current[i].Key, incoming[j].Key)
		switch {
		case c < 0:
			merged = append(merged, current[i])
			i++
		case c > 0:
			merged = append(merged, incoming[j])
			applied = append(applied, incoming[j])
			j++
		default:
			// Keep existing
			merged = append(merged, current[i])
			i++
			j++
		}
	}
	merged = append(merged, current[i:]...)
	applied = append(applied, incoming[j:]...)
	merged = append(merged, incoming[j:]...)

	if len(applied) == 0 {
		return nil
	}
	t.load(merged)
	return applied
}

// BatchDelete removes every listed key that is present with a single
// rebuild and returns the number of keys removed.
func (t *Tree[K, V]) BatchDelete(keys []K) int {
	return len(t.batchDelete(keys))
}

// batchDelete returns the removed entries with the values they held.
func (t *Tree[K, V]) batchDelete(keys []K) []Entry[K, V] {
	if len(keys) == 0 || t.root == nil {
		return nil
	}

	doomed := slices.Clone(keys)
	slices.SortFunc(doomed, t.compare)
	doomed = slices.CompactFunc(doomed, func(a, b K) bool {
		return t.compare(a, b) == 0
	})

	current := t.flatten(t.root, t.count)
	kept := make([]Entry[K, V], 0, len(current))
	var removed []Entry[K, V]

	j := 0
	for _, e := range current {
		for j < len(doomed) && t.compare(doomed[j], e.Key) < 0 {
			j++
		}
		if j < len(doomed) && t.compare(doomed[j], e.Key) == 0 {
			removed = append(removed, e)
			j++
			continue
		}
		kept = append(kept, e)
	}

	if len(removed) == 0 {
		return nil
	}
	t.load(kept)
	return removed
}
