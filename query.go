package sgtree

import "iter"

// Kth returns the key of 0-indexed rank i in ascending order, or
// ErrOutOfRange.
func (t *Tree[K, V]) Kth(i int) (K, error) {
	if i < 0 || i >= t.count {
		var zero K
		return zero, ErrOutOfRange
	}
	n := t.root
	for {
		left := sizeOf(n.left)
		switch {
		case i < left:
			n = n.left
		case i == left:
			return n.key, nil
		default:
			i -= left + 1
			n = n.right
		}
	}
}

// Rank returns the number of keys strictly less than key. key need not be
// present.
func (t *Tree[K, V]) Rank(key K) int {
	rank := 0
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		switch {
		case c == 0:
			return rank + sizeOf(n.left)
		case c < 0:
			n = n.left
		default:
			rank += sizeOf(n.left) + 1
			n = n.right
		}
	}
	return rank
}

// Successor returns the smallest key strictly greater than key. key need not
// be present. ErrKeyNotFound means no larger key exists.
func (t *Tree[K, V]) Successor(key K) (K, error) {
	// The candidate is the last node where the descent turned left
	var cand *node[K, V]
	n := t.root
	for n != nil {
		if t.compare(key, n.key) < 0 {
			cand = n
			n = n.left
		} else {
			n = n.right
		}
	}
	if cand == nil {
		var zero K
		return zero, ErrKeyNotFound
	}
	return cand.key, nil
}

// Predecessor returns the largest key strictly less than key. key need not
// be present. ErrKeyNotFound means no smaller key exists.
func (t *Tree[K, V]) Predecessor(key K) (K, error) {
	var cand *node[K, V]
	n := t.root
	for n != nil {
		if t.compare(key, n.key) > 0 {
			cand = n
			n = n.right
		} else {
			n = n.left
		}
	}
	if cand == nil {
		var zero K
		return zero, ErrKeyNotFound
	}
	return cand.key, nil
}

// SumInRange returns the total weight of the entries with lo <= key <= hi.
// Subtrees wholly inside the range contribute their cached aggregate, so the
// cost is logarithmic regardless of how many keys match.
func (t *Tree[K, V]) SumInRange(lo, hi K) (float64, error) {
	if t.compare(lo, hi) > 0 {
		return 0, ErrInvalidRange
	}

	// Find the highest node inside the range; the boundaries split below it
	n := t.root
	for n != nil {
		if t.compare(n.key, lo) < 0 {
			n = n.right
		} else if t.compare(n.key, hi) > 0 {
			n = n.left
		} else {
			break
		}
	}
	if n == nil {
		return 0, nil
	}

	sum := t.weigh(n.key, n.value)

	// Left boundary: every node at or above lo brings its right subtree
	for l := n.left; l != nil; {
		if t.compare(l.key, lo) >= 0 {
			sum += t.weigh(l.key, l.value) + aggregateOf(l.right)
			l = l.left
		} else {
			l = l.right
		}
	}

	// Right boundary: every node at or below hi brings its left subtree
	for r := n.right; r != nil; {
		if t.compare(r.key, hi) <= 0 {
			sum += t.weigh(r.key, r.value) + aggregateOf(r.left)
			r = r.right
		} else {
			r = r.left
		}
	}

	return sum, nil
}

// Sum returns the total weight of every entry.
func (t *Tree[K, V]) Sum() float64 {
	return aggregateOf(t.root)
}

// ValuesInRange returns the entries with lo <= key <= hi in ascending order.
// The sequence is lazy and may be ranged over any number of times; each pass
// walks the tree as it is at that moment. The tree must not be modified while
// a pass is in progress.
func (t *Tree[K, V]) ValuesInRange(lo, hi K) (iter.Seq2[K, V], error) {
	if t.compare(lo, hi) > 0 {
		return nil, ErrInvalidRange
	}
	return func(yield func(K, V) bool) {
		var stack []*node[K, V]
		n := t.root
		for {
			for n != nil {
				if t.compare(n.key, lo) < 0 {
					// n and its left subtree are below the range
					n = n.right
					continue
				}
				stack = append(stack, n)
				n = n.left
			}
			if len(stack) == 0 {
				return
			}
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if t.compare(n.key, hi) > 0 {
				return
			}
			if !yield(n.key, n.value) {
				return
			}
			n = n.right
		}
	}, nil
}

// All returns every entry in ascending key order.
func (t *Tree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		c := t.Cursor()
		for ok := c.First(); ok; ok = c.Next() {
			if !yield(c.Key(), c.Value()) {
				return
			}
		}
	}
}

// Entries returns a snapshot of every entry in ascending key order.
func (t *Tree[K, V]) Entries() []Entry[K, V] {
	return t.flatten(t.root, t.count)
}

// Keys returns a snapshot of every key in ascending order.
func (t *Tree[K, V]) Keys() []K {
	keys := make([]K, 0, t.count)
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}
