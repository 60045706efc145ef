package sgtree

import "fmt"

// Order selects a depth-first traversal for Display.
type Order int

const (
	InOrder Order = iota
	PreOrder
	PostOrder
)

func (o Order) String() string {
	switch o {
	case InOrder:
		return "inorder"
	case PreOrder:
		return "preorder"
	case PostOrder:
		return "postorder"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Display returns the keys in the requested depth-first order. All three
// walks use an explicit stack.
func (t *Tree[K, V]) Display(order Order) ([]K, error) {
	switch order {
	case InOrder:
		return t.Keys(), nil
	case PreOrder:
		return t.preorder(), nil
	case PostOrder:
		return t.postorder(), nil
	default:
		return nil, fmt.Errorf("sgtree: unknown traversal %v", order)
	}
}

func (t *Tree[K, V]) preorder() []K {
	out := make([]K, 0, t.count)
	if t.root == nil {
		return out
	}
	stack := []*node[K, V]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.key)
		// Right first so left pops first
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return out
}

func (t *Tree[K, V]) postorder() []K {
	out := make([]K, 0, t.count)
	var (
		stack []*node[K, V]
		last  *node[K, V] // Most recently emitted node
	)
	n := t.root
	for n != nil || len(stack) > 0 {
		for n != nil {
			stack = append(stack, n)
			n = n.left
		}
		top := stack[len(stack)-1]
		if top.right != nil && top.right != last {
			n = top.right
			continue
		}
		stack = stack[:len(stack)-1]
		out = append(out, top.key)
		last = top
	}
	return out
}

// Levels returns the keys breadth-first, one slice per depth starting at the
// root.
func (t *Tree[K, V]) Levels() [][]K {
	var levels [][]K
	if t.root == nil {
		return levels
	}

	// FIFO queue; head advances instead of reslicing from the front
	queue := []*node[K, V]{t.root}
	head := 0
	for head < len(queue) {
		width := len(queue) - head
		level := make([]K, 0, width)
		for i := 0; i < width; i++ {
			n := queue[head]
			head++
			level = append(level, n.key)
			if n.left != nil {
				queue = append(queue, n.left)
			}
			if n.right != nil {
				queue = append(queue, n.right)
			}
		}
		levels = append(levels, level)
	}
	return levels
}

// Height returns the number of levels in the tree; an empty tree has height
// zero and a single node height one.
func (t *Tree[K, V]) Height() int {
	type frame struct {
		n     *node[K, V]
		depth int
	}
	height := 0
	if t.root == nil {
		return height
	}
	stack := []frame{{t.root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		height = max(height, f.depth)
		if f.n.left != nil {
			stack = append(stack, frame{f.n.left, f.depth + 1})
		}
		if f.n.right != nil {
			stack = append(stack, frame{f.n.right, f.depth + 1})
		}
	}
	return height
}
