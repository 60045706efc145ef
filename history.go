package sgtree

import (
	"errors"
	"fmt"
)

// CommandKind identifies the mutating operation a Command records.
type CommandKind int

const (
	CmdInsert CommandKind = iota
	CmdDelete
	CmdBatchInsert
	CmdBatchDelete
	CmdClear
	CmdMerge
	CmdSplit

	// CmdNoop marks a mutating call that left the tree unchanged, so that an
	// undo right after it reverts nothing.
	CmdNoop
)

func (k CommandKind) String() string {
	switch k {
	case CmdInsert:
		return "insert"
	case CmdDelete:
		return "delete"
	case CmdBatchInsert:
		return "batch-insert"
	case CmdBatchDelete:
		return "batch-delete"
	case CmdClear:
		return "clear"
	case CmdMerge:
		return "merge"
	case CmdSplit:
		return "split"
	case CmdNoop:
		return "noop"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is a logical record of one mutation: enough keys and values to
// replay or invert it against whatever nodes the tree has at the time. It
// never points into the tree, because rebuilds replace nodes.
type Command[K comparable, V any] struct {
	Kind  CommandKind
	Key   K // Insert, Delete, Split pivot
	Value V // Insert, Delete

	// Entries holds the applied entries for BatchInsert and Merge, the
	// removed entries for BatchDelete, and the prior contents for Clear and
	// Split.
	Entries []Entry[K, V]
}

// History layers undo and redo over a tree. Mutations made through the
// History are recorded; mutations made on the tree directly are not, and
// undoing past them applies inverses to whatever state they left.
//
// Every mutating call is recorded, including one that changed nothing (a
// rejected duplicate, a missing key, an empty batch), which is recorded as
// CmdNoop. Recording a command clears the redo stack.
type History[K comparable, V any] struct {
	tree  *Tree[K, V]
	undo  []Command[K, V]
	redo  []Command[K, V]
	limit int // Maximum undo depth, 0 for unlimited
	log   Logger
}

// NewHistory returns an empty history over tree. The undo depth comes from
// the tree's WithHistoryLimit option.
func NewHistory[K comparable, V any](tree *Tree[K, V]) *History[K, V] {
	return &History[K, V]{
		tree:  tree,
		limit: tree.opts.historyLimit,
		log:   tree.log,
	}
}

// Tree returns the tree the history operates on.
func (h *History[K, V]) Tree() *Tree[K, V] {
	return h.tree
}

// Insert inserts key and records the command.
func (h *History[K, V]) Insert(key K, value V) error {
	if err := h.tree.Insert(key, value); err != nil {
		h.record(Command[K, V]{Kind: CmdNoop, Key: key})
		return err
	}
	h.record(Command[K, V]{Kind: CmdInsert, Key: key, Value: value})
	return nil
}

// Delete deletes key and records the removed value.
func (h *History[K, V]) Delete(key K) (V, error) {
	value, err := h.tree.Delete(key)
	if err != nil {
		h.record(Command[K, V]{Kind: CmdNoop, Key: key})
		return value, err
	}
	h.record(Command[K, V]{Kind: CmdDelete, Key: key, Value: value})
	return value, nil
}

// BatchInsert inserts entries in one rebuild and records the ones applied.
func (h *History[K, V]) BatchInsert(entries []Entry[K, V]) int {
	applied := h.tree.batchInsert(entries)
	h.recordEntries(CmdBatchInsert, applied)
	return len(applied)
}

// BatchDelete deletes keys in one rebuild and records the removed entries.
func (h *History[K, V]) BatchDelete(keys []K) int {
	removed := h.tree.batchDelete(keys)
	h.recordEntries(CmdBatchDelete, removed)
	return len(removed)
}

// Clear empties the tree and records its prior contents.
func (h *History[K, V]) Clear() {
	snapshot := h.tree.Entries()
	h.tree.Clear()
	h.recordEntries(CmdClear, snapshot)
}

// MergeFrom adds other's entries to the tree, keeping existing values on
// conflict, and records the entries added.
func (h *History[K, V]) MergeFrom(other *Tree[K, V]) (added int, conflicts []K) {
	entries, conflicts := h.tree.MergeFrom(other)
	h.recordEntries(CmdMerge, entries)
	return len(entries), conflicts
}

// Split splits the tree at key, leaving it empty, and records its prior
// contents. Redo splits again and discards the halves.
func (h *History[K, V]) Split(key K) (lower, upper *Tree[K, V]) {
	snapshot := h.tree.Entries()
	lower, upper = h.tree.Split(key)
	if len(snapshot) == 0 {
		h.record(Command[K, V]{Kind: CmdNoop, Key: key})
	} else {
		h.record(Command[K, V]{Kind: CmdSplit, Key: key, Entries: snapshot})
	}
	return lower, upper
}

// Undo reverts the most recent recorded command, or returns ErrEmptyHistory.
func (h *History[K, V]) Undo() error {
	if len(h.undo) == 0 {
		return ErrEmptyHistory
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	h.invert(cmd)
	h.redo = append(h.redo, cmd)
	return nil
}

// Redo reapplies the most recently undone command, or returns
// ErrEmptyHistory.
func (h *History[K, V]) Redo() error {
	if len(h.redo) == 0 {
		return ErrEmptyHistory
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	h.apply(cmd)
	h.undo = append(h.undo, cmd)
	return nil
}

// UndoLen returns the number of commands that can be undone.
func (h *History[K, V]) UndoLen() int {
	return len(h.undo)
}

// RedoLen returns the number of commands that can be redone.
func (h *History[K, V]) RedoLen() int {
	return len(h.redo)
}

// Reset forgets every recorded command without touching the tree.
func (h *History[K, V]) Reset() {
	h.undo = nil
	h.redo = nil
}

func (h *History[K, V]) record(cmd Command[K, V]) {
	h.undo = append(h.undo, cmd)
	if h.limit > 0 && len(h.undo) > h.limit {
		// Drop the oldest; clear the slot so its entries can be collected
		h.undo[0] = Command[K, V]{}
		h.undo = h.undo[1:]
	}
	h.redo = nil
}

// recordEntries records kind with entries, or CmdNoop when nothing changed.
func (h *History[K, V]) recordEntries(kind CommandKind, entries []Entry[K, V]) {
	if len(entries) == 0 {
		kind = CmdNoop
	}
	h.record(Command[K, V]{Kind: kind, Entries: entries})
}

// invert applies the logical inverse of cmd to the current tree.
func (h *History[K, V]) invert(cmd Command[K, V]) {
	switch cmd.Kind {
	case CmdInsert:
		if _, err := h.tree.Delete(cmd.Key); err != nil {
			h.warn("undo", cmd, err)
		}
	case CmdDelete:
		if err := h.tree.Insert(cmd.Key, cmd.Value); err != nil {
			h.warn("undo", cmd, err)
		}
	case CmdBatchInsert, CmdMerge:
		h.tree.batchDelete(keysOf(cmd.Entries))
	case CmdBatchDelete, CmdClear, CmdSplit:
		h.tree.batchInsert(cmd.Entries)
	}
}

// apply replays cmd against the current tree.
func (h *History[K, V]) apply(cmd Command[K, V]) {
	switch cmd.Kind {
	case CmdInsert:
		if err := h.tree.Insert(cmd.Key, cmd.Value); err != nil {
			h.warn("redo", cmd, err)
		}
	case CmdDelete:
		if _, err := h.tree.Delete(cmd.Key); err != nil {
			h.warn("redo", cmd, err)
		}
	case CmdBatchInsert, CmdMerge:
		h.tree.batchInsert(cmd.Entries)
	case CmdBatchDelete:
		h.tree.batchDelete(keysOf(cmd.Entries))
	case CmdClear:
		h.tree.Clear()
	case CmdSplit:
		h.tree.Split(cmd.Key)
	}
}

// warn reports a replay that found the tree in a state the command did not
// leave it in, which only happens after unrecorded direct mutations.
func (h *History[K, V]) warn(action string, cmd Command[K, V], err error) {
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrKeyNotFound) {
		h.log.Warn("history replay found diverged tree",
			"action", action,
			"command", cmd.Kind.String(),
			"key", cmd.Key,
			"error", err,
		)
		return
	}
	h.log.Error("history replay failed", "action", action, "command", cmd.Kind.String(), "error", err)
}

func keysOf[K comparable, V any](entries []Entry[K, V]) []K {
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}
