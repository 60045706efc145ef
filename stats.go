package sgtree

import "fmt"

// Stats describes the shape of a tree.
type Stats struct {
	Count       int     // Keys in the tree
	MaxCount    int     // High-water mark of Count since the last full rebuild
	Height      int     // Levels, 0 for an empty tree
	HeightBound float64 // log_{1/alpha}(Count), the scapegoat depth limit
	Balanced    bool    // Height-1 <= HeightBound
	Alpha       float64
	Rebuilds    int // Subtree and full rebuilds performed so far

	// Lookup cache counters, zero when WithSearchCache is not set
	CacheHits   uint64
	CacheMisses uint64
}

// Stats returns the current shape statistics.
func (t *Tree[K, V]) Stats() Stats {
	height := t.Height()
	bound := t.heightBound(t.count)
	var hits, misses uint64
	if t.cache != nil {
		hits, misses = t.cache.Stats()
	}
	return Stats{
		Count:       t.count,
		MaxCount:    t.maxCount,
		Height:      height,
		HeightBound: bound,
		// Depth of the deepest node is height-1; an empty tree is balanced
		Balanced: height <= 1 || float64(height-1) <= bound+1e-9,
		Alpha:    t.opts.alpha,
		Rebuilds: t.rebuilds,

		CacheHits:   hits,
		CacheMisses: misses,
	}
}

func (s Stats) String() string {
	if s.Count == 0 {
		return "empty tree"
	}
	state := "balanced"
	if !s.Balanced {
		state = "unbalanced"
	}
	return fmt.Sprintf("count=%d height=%d bound=%.2f alpha=%.3f rebuilds=%d %s",
		s.Count, s.Height, s.HeightBound, s.Alpha, s.Rebuilds, state)
}

// Verify checks the BST order and the cached size and aggregate of every
// node. It returns an error wrapping ErrCorruption describing the first
// violation found.
func (t *Tree[K, V]) Verify() error {
	size, err := t.verify(t.root, nil, nil)
	if err != nil {
		return err
	}
	if size != t.count {
		return fmt.Errorf("%w: count %d, root size %d", ErrCorruption, t.count, size)
	}
	if t.maxCount < t.count {
		return fmt.Errorf("%w: maxCount %d below count %d", ErrCorruption, t.maxCount, t.count)
	}
	return nil
}

// verify recurses over the tree; depth is bounded by the tree height.
func (t *Tree[K, V]) verify(n *node[K, V], lo, hi *K) (int, error) {
	if n == nil {
		return 0, nil
	}
	if lo != nil && t.compare(n.key, *lo) <= 0 {
		return 0, fmt.Errorf("%w: key %v not above %v", ErrCorruption, n.key, *lo)
	}
	if hi != nil && t.compare(n.key, *hi) >= 0 {
		return 0, fmt.Errorf("%w: key %v not below %v", ErrCorruption, n.key, *hi)
	}

	left, err := t.verify(n.left, lo, &n.key)
	if err != nil {
		return 0, err
	}
	right, err := t.verify(n.right, &n.key, hi)
	if err != nil {
		return 0, err
	}

	if n.size != 1+left+right {
		return 0, fmt.Errorf("%w: key %v size %d, want %d", ErrCorruption, n.key, n.size, 1+left+right)
	}
	agg := t.weigh(n.key, n.value) + aggregateOf(n.left) + aggregateOf(n.right)
	if n.aggregate != agg {
		return 0, fmt.Errorf("%w: key %v aggregate %v, want %v", ErrCorruption, n.key, n.aggregate, agg)
	}
	return n.size, nil
}

// WeightBalanced reports whether every node satisfies
// size(child) <= alpha*size(node). Freshly rebuilt trees always do.
func (t *Tree[K, V]) WeightBalanced() bool {
	return t.weightBalanced(t.root)
}

// weightBalanced checks the subtree rooted at root.
func (t *Tree[K, V]) weightBalanced(root *node[K, V]) bool {
	if root == nil {
		return true
	}
	stack := []*node[K, V]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		limit := t.opts.alpha * float64(n.size)
		if float64(sizeOf(n.left)) > limit || float64(sizeOf(n.right)) > limit {
			return false
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
	}
	return true
}
