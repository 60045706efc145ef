// Package sgtree implements an in-memory scapegoat tree: an ordered key set
// that keeps itself balanced by rebuilding whole subtrees instead of storing
// per-node balance metadata.
//
// Every node caches the size of its subtree and the sum of a per-entry weight
// over its subtree, which makes rank, select and range-sum queries
// logarithmic. A History layered over a Tree records logical commands so
// mutations can be undone and redone even though rebuilds replace nodes.
//
// A Tree is not safe for concurrent use. Callers sharing a tree between
// goroutines must serialize access themselves.
package sgtree

import (
	"cmp"
	"fmt"
	"math"

	"github.com/alexhholmes/sgtree/internal/lookup"
)

// Number is the set of key types whose natural order and numeric value are
// used by New.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Tree is a scapegoat tree mapping unique keys to values.
type Tree[K comparable, V any] struct {
	compare func(a, b K) int
	weight  func(K, V) float64
	opts    Options
	log     Logger

	root     *node[K, V]
	count    int // Nodes in the tree
	maxCount int // High-water mark of count since the last full rebuild
	rebuilds int // Rebuilds performed, triggered or explicit

	// version changes on every mutation and invalidates open cursors.
	version uint64

	cache *lookup.Cache[K, V] // nil when the search cache is disabled

	// rebuilt, when set, sees the root of every subtree rebuilt by a trigger
	// right after it is linked in. Tests only.
	rebuilt func(root *node[K, V])
}

// New creates an empty tree ordered by the natural order of K. Each entry
// weighs its own key for SumInRange.
func New[K Number, V any](options ...Option) (*Tree[K, V], error) {
	return NewFunc[K, V](cmp.Compare[K], func(key K, _ V) float64 {
		return float64(key)
	}, options...)
}

// NewFunc creates an empty tree ordered by compare, which must be a strict
// total order returning a negative number, zero or a positive number. weight
// gives the contribution of an entry to range sums; a nil weight makes every
// entry weigh zero.
func NewFunc[K comparable, V any](compare func(a, b K) int, weight func(K, V) float64, options ...Option) (*Tree[K, V], error) {
	opts := DefaultOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if compare == nil {
		return nil, fmt.Errorf("sgtree: nil comparator")
	}

	t := &Tree[K, V]{
		compare: compare,
		weight:  weight,
		opts:    opts,
		log:     opts.logger,
	}

	if opts.cacheEntries > 0 {
		t.cache = lookup.New[K, V](opts.cacheEntries)
	}

	return t, nil
}

// emptyLike returns a new empty tree sharing t's order, weight and options.
func (t *Tree[K, V]) emptyLike() *Tree[K, V] {
	out := &Tree[K, V]{
		compare: t.compare,
		weight:  t.weight,
		opts:    t.opts,
		log:     t.log,
	}
	if t.cache != nil {
		out.cache = lookup.New[K, V](t.opts.cacheEntries)
	}
	return out
}

// Alpha returns the balance factor the tree was built with.
func (t *Tree[K, V]) Alpha() float64 {
	return t.opts.alpha
}

// Len returns the number of keys in the tree.
func (t *Tree[K, V]) Len() int {
	return t.count
}

// Empty reports whether the tree holds no keys.
func (t *Tree[K, V]) Empty() bool {
	return t.count == 0
}

// Insert adds key with value. An existing key is never overwritten: the call
// returns ErrDuplicateKey and the tree is unchanged.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if t.root == nil {
		t.root = t.newNode(key, value)
		t.count = 1
		t.maxCount = max(t.maxCount, t.count)
		t.version++
		return nil
	}

	// Record the descent so sizes can be fixed and a scapegoat found without
	// parent pointers
	path := make([]*node[K, V], 0, 32)
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		if c == 0 {
			return ErrDuplicateKey
		}
		path = append(path, n)
		if c < 0 {
			n = n.left
		} else {
			n = n.right
		}
	}

	leaf := t.newNode(key, value)
	parent := path[len(path)-1]
	if t.compare(key, parent.key) < 0 {
		parent.left = leaf
	} else {
		parent.right = leaf
	}
	t.updatePath(path)

	t.count++
	t.maxCount = max(t.maxCount, t.count)
	t.version++

	// The new leaf sits at depth len(path)
	if float64(len(path)) > t.heightBound(t.count) {
		t.rebuildScapegoat(append(path, leaf))
	}
	return nil
}

// Delete removes key and returns the value it held, or ErrKeyNotFound.
func (t *Tree[K, V]) Delete(key K) (V, error) {
	var zero V

	path := make([]*node[K, V], 0, 32)
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		if c == 0 {
			break
		}
		path = append(path, n)
		if c < 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
	if n == nil {
		return zero, ErrKeyNotFound
	}

	removed := n.value
	if n.left != nil && n.right != nil {
		// Two children: move the in-order successor into n and unlink the
		// successor, which has no left child
		path = append(path, n)
		succ := n.right
		for succ.left != nil {
			path = append(path, succ)
			succ = succ.left
		}
		n.key, n.value = succ.key, succ.value

		parent := path[len(path)-1]
		if parent == n {
			parent.right = succ.right
		} else {
			parent.left = succ.right
		}
	} else {
		child := n.left
		if child == nil {
			child = n.right
		}
		t.replaceChild(path, n, child)
	}
	t.updatePath(path)

	t.count--
	t.version++
	t.invalidate()

	if t.count == 0 {
		t.root = nil
		t.maxCount = 0
		return removed, nil
	}

	// Local scapegoat repairs only follow insertions; deletions are bounded
	// by rebuilding everything once the tree shrinks far enough
	if float64(t.count) < t.opts.alpha*float64(t.maxCount) {
		t.log.Info("full rebuild after deletions", "count", t.count, "maxCount", t.maxCount)
		t.rebuildAll()
	}

	return removed, nil
}

// Get returns the value stored for key, or ErrKeyNotFound.
func (t *Tree[K, V]) Get(key K) (V, error) {
	if t.cache != nil {
		if v, ok := t.cache.Get(key); ok {
			return v, nil
		}
	}

	n := t.find(key)
	if n == nil {
		var zero V
		return zero, ErrKeyNotFound
	}

	if t.cache != nil {
		t.cache.Add(key, n.value)
	}
	return n.value, nil
}

// Has reports whether key is present.
func (t *Tree[K, V]) Has(key K) bool {
	return t.find(key) != nil
}

// Min returns the smallest key, or ErrEmptyTree.
func (t *Tree[K, V]) Min() (K, error) {
	if t.root == nil {
		var zero K
		return zero, ErrEmptyTree
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return n.key, nil
}

// Max returns the largest key, or ErrEmptyTree.
func (t *Tree[K, V]) Max() (K, error) {
	if t.root == nil {
		var zero K
		return zero, ErrEmptyTree
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return n.key, nil
}

// Clear drops every node.
func (t *Tree[K, V]) Clear() {
	t.root = nil
	t.count = 0
	t.maxCount = 0
	t.version++
	t.invalidate()
}

func (t *Tree[K, V]) newNode(key K, value V) *node[K, V] {
	n := &node[K, V]{key: key, value: value}
	t.update(n)
	return n
}

func (t *Tree[K, V]) find(key K) *node[K, V] {
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		switch {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// replaceChild swaps old for repl under the last node in path, or at the
// root when path is empty.
func (t *Tree[K, V]) replaceChild(path []*node[K, V], old, repl *node[K, V]) {
	if len(path) == 0 {
		t.root = repl
		return
	}
	parent := path[len(path)-1]
	if parent.left == old {
		parent.left = repl
	} else {
		parent.right = repl
	}
}

// heightBound is log_{1/alpha}(n), the deepest an insertion may land before
// a scapegoat must exist on its path.
func (t *Tree[K, V]) heightBound(n int) float64 {
	if n <= 1 {
		return 0
	}
	return math.Log(float64(n)) / math.Log(1/t.opts.alpha)
}

// invalidate drops cached lookups after a mutation that may remove a key.
// Inserts never change an existing mapping, so they skip this.
func (t *Tree[K, V]) invalidate() {
	if t.cache != nil {
		t.cache.Purge()
	}
}
