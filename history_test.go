package sgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHistory(t *testing.T, options ...Option) *History[int, string] {
	t.Helper()
	return NewHistory(setup(t, options...))
}

func TestUndoEmptyHistory(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	assert.ErrorIs(t, h.Undo(), ErrEmptyHistory)
	assert.ErrorIs(t, h.Redo(), ErrEmptyHistory)
}

func TestUndoRedoInsert(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	require.NoError(t, h.Insert(1, "a"))
	require.NoError(t, h.Insert(2, "b"))

	require.NoError(t, h.Undo())
	assert.Equal(t, []int{1}, h.Tree().Keys())

	require.NoError(t, h.Redo())
	assert.Equal(t, []int{1, 2}, h.Tree().Keys())
	verify(t, h.Tree())
}

func TestUnchangedMutationsRecordNoop(t *testing.T) {
	t.Parallel()

	other := setup(t)
	insertAll(t, other, 1)

	tests := []struct {
		name   string
		mutate func(t *testing.T, h *History[int, string])
	}{
		{"duplicate insert", func(t *testing.T, h *History[int, string]) {
			assert.ErrorIs(t, h.Insert(1, "again"), ErrDuplicateKey)
		}},
		{"missing delete", func(t *testing.T, h *History[int, string]) {
			_, err := h.Delete(9)
			assert.ErrorIs(t, err, ErrKeyNotFound)
		}},
		{"batch insert of existing keys", func(t *testing.T, h *History[int, string]) {
			assert.Zero(t, h.BatchInsert(entriesOf(1)))
		}},
		{"batch delete of missing keys", func(t *testing.T, h *History[int, string]) {
			assert.Zero(t, h.BatchDelete([]int{9}))
		}},
		{"merge of nothing new", func(t *testing.T, h *History[int, string]) {
			added, conflicts := h.MergeFrom(other)
			assert.Zero(t, added)
			assert.Equal(t, []int{1}, conflicts)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupHistory(t)
			require.NoError(t, h.Insert(1, "a"))
			require.NoError(t, h.Insert(2, "b"))
			before := h.Tree().Entries()

			tt.mutate(t, h)
			assert.Equal(t, 3, h.UndoLen())

			// Undo reverts the unchanged call, not the insert before it
			require.NoError(t, h.Undo())
			assert.Equal(t, before, h.Tree().Entries())

			require.NoError(t, h.Redo())
			assert.Equal(t, before, h.Tree().Entries())
			verify(t, h.Tree())
		})
	}
}

func TestClearAndSplitOfEmptyTreeRecordNoop(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	h.Clear()
	lower, upper := h.Split(5)
	assert.True(t, lower.Empty())
	assert.True(t, upper.Empty())
	assert.Equal(t, 2, h.UndoLen())

	require.NoError(t, h.Undo())
	require.NoError(t, h.Undo())
	assert.True(t, h.Tree().Empty())
	assert.ErrorIs(t, h.Undo(), ErrEmptyHistory)
}

func TestNoopClearsRedo(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	require.NoError(t, h.Insert(1, "a"))
	require.NoError(t, h.Undo())
	assert.Equal(t, 1, h.RedoLen())

	_, err := h.Delete(1)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Zero(t, h.RedoLen())
	assert.True(t, h.Tree().Empty())
}

func TestUndoRedoRestoresExactSequences(t *testing.T) {
	t.Parallel()

	other := setup(t)
	insertAll(t, other, 3, 30, 31)

	tests := []struct {
		name   string
		mutate func(t *testing.T, h *History[int, string])
	}{
		{"insert", func(t *testing.T, h *History[int, string]) {
			require.NoError(t, h.Insert(100, "new"))
		}},
		{"delete", func(t *testing.T, h *History[int, string]) {
			v, err := h.Delete(5)
			require.NoError(t, err)
			assert.Equal(t, "v5", v)
		}},
		{"delete root", func(t *testing.T, h *History[int, string]) {
			_, err := h.Delete(h.Tree().root.key)
			require.NoError(t, err)
		}},
		{"batch insert", func(t *testing.T, h *History[int, string]) {
			assert.Equal(t, 2, h.BatchInsert(entriesOf(0, 3, 50)))
		}},
		{"batch delete", func(t *testing.T, h *History[int, string]) {
			assert.Equal(t, 3, h.BatchDelete([]int{1, 2, 3, 99}))
		}},
		{"clear", func(t *testing.T, h *History[int, string]) {
			h.Clear()
		}},
		{"merge", func(t *testing.T, h *History[int, string]) {
			added, conflicts := h.MergeFrom(other)
			assert.Equal(t, 2, added)
			assert.Equal(t, []int{3}, conflicts)
		}},
		{"split", func(t *testing.T, h *History[int, string]) {
			lower, upper := h.Split(10)
			assert.Equal(t, 9, lower.Len())
			assert.Equal(t, 11, upper.Len())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupHistory(t)
			h.Tree().BatchInsert(entriesOf(seq(1, 20)...))

			before := h.Tree().Entries()
			tt.mutate(t, h)
			after := h.Tree().Entries()
			require.NotEqual(t, before, after)
			verify(t, h.Tree())

			require.NoError(t, h.Undo())
			assert.Equal(t, before, h.Tree().Entries(), "undo")
			verify(t, h.Tree())

			require.NoError(t, h.Redo())
			assert.Equal(t, after, h.Tree().Entries(), "redo")
			verify(t, h.Tree())

			require.NoError(t, h.Undo())
			assert.Equal(t, before, h.Tree().Entries(), "second undo")
		})
	}
}

func TestUndoAll(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	var snapshots [][]Entry[int, string]
	snapshots = append(snapshots, h.Tree().Entries())

	for _, k := range []int{5, 3, 8, 1, 4, 7, 9} {
		require.NoError(t, h.Insert(k, "x"))
		snapshots = append(snapshots, h.Tree().Entries())
	}
	_, err := h.Delete(5)
	require.NoError(t, err)
	snapshots = append(snapshots, h.Tree().Entries())
	h.BatchInsert(entriesOf(2, 6))
	snapshots = append(snapshots, h.Tree().Entries())

	for i := len(snapshots) - 2; i >= 0; i-- {
		require.NoError(t, h.Undo())
		assert.Equal(t, snapshots[i], h.Tree().Entries(), "after undo to state %d", i)
	}
	assert.ErrorIs(t, h.Undo(), ErrEmptyHistory)

	for i := 1; i < len(snapshots); i++ {
		require.NoError(t, h.Redo())
		assert.Equal(t, snapshots[i], h.Tree().Entries(), "after redo to state %d", i)
	}
	assert.ErrorIs(t, h.Redo(), ErrEmptyHistory)
}

func TestNewCommandClearsRedo(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	require.NoError(t, h.Insert(1, "a"))
	require.NoError(t, h.Insert(2, "b"))
	require.NoError(t, h.Undo())
	assert.Equal(t, 1, h.RedoLen())

	require.NoError(t, h.Insert(3, "c"))
	assert.Zero(t, h.RedoLen())
	assert.ErrorIs(t, h.Redo(), ErrEmptyHistory)
	assert.Equal(t, []int{1, 3}, h.Tree().Keys())
}

func TestHistoryLimit(t *testing.T) {
	t.Parallel()

	h := setupHistory(t, WithHistoryLimit(3))
	for _, k := range seq(1, 5) {
		require.NoError(t, h.Insert(k, "x"))
	}
	assert.Equal(t, 3, h.UndoLen())

	for range 3 {
		require.NoError(t, h.Undo())
	}
	assert.ErrorIs(t, h.Undo(), ErrEmptyHistory)
	assert.Equal(t, []int{1, 2}, h.Tree().Keys())
}

func TestHistoryReset(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	require.NoError(t, h.Insert(1, "a"))
	require.NoError(t, h.Undo())
	require.NoError(t, h.Insert(2, "b"))
	h.Reset()

	assert.Zero(t, h.UndoLen())
	assert.Zero(t, h.RedoLen())
	assert.Equal(t, []int{2}, h.Tree().Keys())
}

func TestUndoAfterDirectMutation(t *testing.T) {
	t.Parallel()

	h := setupHistory(t)
	require.NoError(t, h.Insert(1, "a"))

	// Unrecorded change removes the key the command would delete
	_, err := h.Tree().Delete(1)
	require.NoError(t, err)

	require.NoError(t, h.Undo())
	assert.True(t, h.Tree().Empty())
	verify(t, h.Tree())
}

func TestCommandKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "insert", CmdInsert.String())
	assert.Equal(t, "batch-delete", CmdBatchDelete.String())
	assert.Equal(t, "split", CmdSplit.String())
	assert.Equal(t, "noop", CmdNoop.String())
	assert.Equal(t, "CommandKind(42)", CommandKind(42).String())
}
