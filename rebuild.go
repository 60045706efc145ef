package sgtree

// rebuildScapegoat climbs path (root first, new leaf last) looking for the
// deepest ancestor whose heavier child exceeds alpha of its size, and rebuilds
// that subtree.
func (t *Tree[K, V]) rebuildScapegoat(path []*node[K, V]) {
	for i := len(path) - 2; i >= 0; i-- {
		parent, child := path[i], path[i+1]
		if float64(child.size) > t.opts.alpha*float64(parent.size) {
			t.log.Info("scapegoat rebuild",
				"size", parent.size,
				"depth", len(path)-1,
				"count", t.count,
			)
			t.rebuildSubtree(path[:i], parent)
			return
		}
	}
	// Rounding in heightBound can trip the depth test on a tree that is
	// exactly at the bound; nothing needs rebuilding then.
}

// rebuildSubtree replaces s, whose ancestors are recorded in path, with a
// perfectly balanced copy. The copy is built completely before it is linked
// in.
func (t *Tree[K, V]) rebuildSubtree(path []*node[K, V], s *node[K, V]) {
	balanced := t.build(t.flatten(s, s.size))
	t.replaceChild(path, s, balanced)
	t.updatePath(path)
	t.rebuilds++
	if t.rebuilt != nil {
		t.rebuilt(balanced)
	}
}

// rebuildAll rebuilds the whole tree and resets the deletion trigger.
func (t *Tree[K, V]) rebuildAll() {
	if t.root != nil {
		t.root = t.build(t.flatten(t.root, t.count))
	}
	t.maxCount = t.count
	t.rebuilds++
	t.version++
	if t.rebuilt != nil {
		t.rebuilt(t.root)
	}
}

// load replaces the whole tree with one built from sorted entries.
func (t *Tree[K, V]) load(sorted []Entry[K, V]) {
	t.root = t.build(sorted)
	t.count = len(sorted)
	t.maxCount = t.count
	t.rebuilds++
	t.version++
	t.invalidate()
}

// flatten returns the entries of the subtree rooted at n in key order.
// The walk uses an explicit stack so depth never reaches the goroutine stack.
func (t *Tree[K, V]) flatten(n *node[K, V], hint int) []Entry[K, V] {
	out := make([]Entry[K, V], 0, hint)
	var stack []*node[K, V]
	for n != nil || len(stack) > 0 {
		for n != nil {
			stack = append(stack, n)
			n = n.left
		}
		n = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, Entry[K, V]{Key: n.key, Value: n.value})
		n = n.right
	}
	return out
}

// build returns a weight-balanced subtree over sorted by picking the median
// as root at every level; the two halves differ by at most one entry.
// Recursion depth is logarithmic in len(sorted).
func (t *Tree[K, V]) build(sorted []Entry[K, V]) *node[K, V] {
	if len(sorted) == 0 {
		return nil
	}
	mid := len(sorted) / 2
	n := &node[K, V]{
		key:   sorted[mid].Key,
		value: sorted[mid].Value,
		left:  t.build(sorted[:mid]),
		right: t.build(sorted[mid+1:]),
	}
	t.update(n)
	return n
}

// Balance rebuilds the whole tree into a perfectly weight-balanced shape
// regardless of the amortized triggers.
func (t *Tree[K, V]) Balance() {
	t.log.Info("explicit balance", "count", t.count)
	t.rebuildAll()
}
