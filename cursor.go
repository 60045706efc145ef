package sgtree

// Cursor provides ordered iteration over a tree's keys.
//
// A cursor is bound to the tree state it was created in. Any mutation of the
// tree, including a rebuild, invalidates it: every positioning call then
// returns false and Err reports ErrCursorStale.
type Cursor[K comparable, V any] struct {
	tree    *Tree[K, V]
	version uint64        // Tree version at creation
	stack   []*node[K, V] // Path from the root to the current node
	valid   bool          // Is cursor positioned on a key?
	err     error
}

// Cursor returns an unpositioned cursor over t.
func (t *Tree[K, V]) Cursor() *Cursor[K, V] {
	return &Cursor[K, V]{
		tree:    t,
		version: t.version,
	}
}

// First positions the cursor at the smallest key.
func (c *Cursor[K, V]) First() bool {
	if !c.reset() {
		return false
	}
	c.descendLeft(c.tree.root)
	c.valid = len(c.stack) > 0
	return c.valid
}

// Last positions the cursor at the largest key.
func (c *Cursor[K, V]) Last() bool {
	if !c.reset() {
		return false
	}
	c.descendRight(c.tree.root)
	c.valid = len(c.stack) > 0
	return c.valid
}

// Seek positions the cursor at the smallest key >= key.
func (c *Cursor[K, V]) Seek(key K) bool {
	if !c.reset() {
		return false
	}

	// The target's path is a prefix of the search path; remember how deep
	// the last candidate sat and cut the stack there.
	depth := -1
	n := c.tree.root
	for n != nil {
		c.stack = append(c.stack, n)
		cmp := c.tree.compare(key, n.key)
		if cmp == 0 {
			depth = len(c.stack) - 1
			break
		}
		if cmp < 0 {
			depth = len(c.stack) - 1
			n = n.left
		} else {
			n = n.right
		}
	}

	if depth < 0 {
		c.stack = c.stack[:0]
		return false
	}
	c.stack = c.stack[:depth+1]
	c.valid = true
	return true
}

// Next advances the cursor to the next key.
func (c *Cursor[K, V]) Next() bool {
	if !c.active() || !c.valid {
		return false
	}

	cur := c.stack[len(c.stack)-1]
	if cur.right != nil {
		c.descendLeft(cur.right)
		return true
	}

	// Climb until we leave a left subtree
	for len(c.stack) > 1 {
		child := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if c.stack[len(c.stack)-1].left == child {
			return true
		}
	}

	c.stack = c.stack[:0]
	c.valid = false
	return false
}

// Prev moves the cursor to the previous key.
func (c *Cursor[K, V]) Prev() bool {
	if !c.active() || !c.valid {
		return false
	}

	cur := c.stack[len(c.stack)-1]
	if cur.left != nil {
		c.descendRight(cur.left)
		return true
	}

	for len(c.stack) > 1 {
		child := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if c.stack[len(c.stack)-1].right == child {
			return true
		}
	}

	c.stack = c.stack[:0]
	c.valid = false
	return false
}

// Key returns the current key (only meaningful when Valid() == true)
func (c *Cursor[K, V]) Key() K {
	if !c.Valid() {
		var zero K
		return zero
	}
	return c.stack[len(c.stack)-1].key
}

// Value returns the current value (only meaningful when Valid() == true)
func (c *Cursor[K, V]) Value() V {
	if !c.Valid() {
		var zero V
		return zero
	}
	return c.stack[len(c.stack)-1].value
}

// Valid returns true if cursor is positioned on a key
func (c *Cursor[K, V]) Valid() bool {
	return c.active() && c.valid
}

// Err returns ErrCursorStale once the tree has changed under the cursor.
func (c *Cursor[K, V]) Err() error {
	c.active()
	return c.err
}

// active validates that the tree has not changed since the cursor was made
func (c *Cursor[K, V]) active() bool {
	if c.err != nil {
		return false
	}
	if c.tree.version != c.version {
		c.err = ErrCursorStale
		c.stack = nil
		c.valid = false
		return false
	}
	return true
}

func (c *Cursor[K, V]) reset() bool {
	c.stack = c.stack[:0]
	c.valid = false
	return c.active()
}

func (c *Cursor[K, V]) descendLeft(n *node[K, V]) {
	for n != nil {
		c.stack = append(c.stack, n)
		n = n.left
	}
}

func (c *Cursor[K, V]) descendRight(n *node[K, V]) {
	for n != nil {
		c.stack = append(c.stack, n)
		n = n.right
	}
}
