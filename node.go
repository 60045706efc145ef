package sgtree

// node is a single keyed entry. It exclusively owns its children; there are
// no parent pointers, so every upward walk uses a path recorded on the way
// down.
type node[K comparable, V any] struct {
	key   K
	value V
	left  *node[K, V]
	right *node[K, V]

	size      int     // Nodes in the subtree rooted here, including this one
	aggregate float64 // Sum of weights over the subtree
}

// Entry is a key with its associated value.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

func sizeOf[K comparable, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func aggregateOf[K comparable, V any](n *node[K, V]) float64 {
	if n == nil {
		return 0
	}
	return n.aggregate
}

// update recomputes size and aggregate from the children. It must run
// bottom-up after any splice or rebuild step touching n's children.
func (t *Tree[K, V]) update(n *node[K, V]) {
	n.size = 1 + sizeOf(n.left) + sizeOf(n.right)
	n.aggregate = t.weigh(n.key, n.value) + aggregateOf(n.left) + aggregateOf(n.right)
}

// updatePath reapplies update from the deepest recorded ancestor to the root.
func (t *Tree[K, V]) updatePath(path []*node[K, V]) {
	for i := len(path) - 1; i >= 0; i-- {
		t.update(path[i])
	}
}

func (t *Tree[K, V]) weigh(key K, value V) float64 {
	if t.weight == nil {
		return 0
	}
	return t.weight(key, value)
}
