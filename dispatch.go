package sgtree

import (
	"errors"
	"fmt"
	"iter"
)

// Request is one operation for Dispatcher.Dispatch. Each opcode has its own
// request type carrying typed arguments.
type Request[K comparable, V any] interface {
	Opcode() Opcode
	request()
}

type (
	InsertRequest[K comparable, V any] struct {
		Key   K
		Value V
	}
	DeleteRequest[K comparable, V any] struct{ Key K }
	SearchRequest[K comparable, V any] struct{ Key K }

	// DisplayRequest selects DISPLAY_INORDER, DISPLAY_PREORDER or
	// DISPLAY_POSTORDER through Order.
	DisplayRequest struct{ Order Order }
	LevelsRequest  struct{}
	BalanceRequest struct{}

	CompareRequest[K comparable, V any] struct{ Other *Tree[K, V] }
	MergeRequest[K comparable, V any]   struct{ Other *Tree[K, V] }

	EmptyRequest struct{}

	BatchInsertRequest[K comparable, V any] struct{ Entries []Entry[K, V] }
	BatchDeleteRequest[K comparable, V any] struct{ Keys []K }

	ClearRequest struct{}
	UndoRequest  struct{}
	RedoRequest  struct{}

	SumInRangeRequest[K comparable, V any]    struct{ Lo, Hi K }
	ValuesInRangeRequest[K comparable, V any] struct{ Lo, Hi K }

	MinRequest struct{}
	MaxRequest struct{}
	KthRequest struct{ Index int }

	SuccRequest[K comparable, V any]  struct{ Key K }
	SplitRequest[K comparable, V any] struct{ Key K }

	ExitRequest struct{}
)

func (InsertRequest[K, V]) Opcode() Opcode        { return OpInsert }
func (DeleteRequest[K, V]) Opcode() Opcode        { return OpDelete }
func (SearchRequest[K, V]) Opcode() Opcode        { return OpSearch }
func (LevelsRequest) Opcode() Opcode              { return OpDisplayLevels }
func (BalanceRequest) Opcode() Opcode             { return OpBalance }
func (CompareRequest[K, V]) Opcode() Opcode       { return OpCompare }
func (MergeRequest[K, V]) Opcode() Opcode         { return OpMerge }
func (EmptyRequest) Opcode() Opcode               { return OpEmpty }
func (BatchInsertRequest[K, V]) Opcode() Opcode   { return OpBatchInsert }
func (BatchDeleteRequest[K, V]) Opcode() Opcode   { return OpBatchDelete }
func (ClearRequest) Opcode() Opcode               { return OpClear }
func (UndoRequest) Opcode() Opcode                { return OpUndo }
func (RedoRequest) Opcode() Opcode                { return OpRedo }
func (SumInRangeRequest[K, V]) Opcode() Opcode    { return OpSumInRange }
func (ValuesInRangeRequest[K, V]) Opcode() Opcode { return OpValuesInRange }
func (MinRequest) Opcode() Opcode                 { return OpMin }
func (MaxRequest) Opcode() Opcode                 { return OpMax }
func (KthRequest) Opcode() Opcode                 { return OpKth }
func (SuccRequest[K, V]) Opcode() Opcode          { return OpSucc }
func (SplitRequest[K, V]) Opcode() Opcode         { return OpSplit }
func (ExitRequest) Opcode() Opcode                { return OpExit }

// Opcode returns the DISPLAY opcode for r.Order, or Opcode(0) when the order
// is unknown.
func (r DisplayRequest) Opcode() Opcode {
	switch r.Order {
	case InOrder:
		return OpDisplayInorder
	case PreOrder:
		return OpDisplayPreorder
	case PostOrder:
		return OpDisplayPostorder
	default:
		return 0
	}
}

func (InsertRequest[K, V]) request()        {}
func (DeleteRequest[K, V]) request()        {}
func (SearchRequest[K, V]) request()        {}
func (DisplayRequest) request()             {}
func (LevelsRequest) request()              {}
func (BalanceRequest) request()             {}
func (CompareRequest[K, V]) request()       {}
func (MergeRequest[K, V]) request()         {}
func (EmptyRequest) request()               {}
func (BatchInsertRequest[K, V]) request()   {}
func (BatchDeleteRequest[K, V]) request()   {}
func (ClearRequest) request()               {}
func (UndoRequest) request()                {}
func (RedoRequest) request()                {}
func (SumInRangeRequest[K, V]) request()    {}
func (ValuesInRangeRequest[K, V]) request() {}
func (MinRequest) request()                 {}
func (MaxRequest) request()                 {}
func (KthRequest) request()                 {}
func (SuccRequest[K, V]) request()          {}
func (SplitRequest[K, V]) request()         {}
func (ExitRequest) request()                {}

// Result carries the outcome of a dispatched request. Only the fields that
// belong to the request's opcode are set.
type Result[K comparable, V any] struct {
	Op     Opcode
	Status Status

	Key    K   // MIN, MAX, KTH, SUCC
	Value  V   // SEARCH
	Keys   []K // DISPLAY_INORDER, DISPLAY_PREORDER, DISPLAY_POSTORDER
	Levels [][]K
	Range  iter.Seq2[K, V] // VALUESINRANGE, lazy
	Sum    float64
	Count  int  // BATCH_INSERT, BATCH_DELETE, MERGE: entries applied
	Empty  bool // EMPTY

	Tree      *Tree[K, V] // MERGE: the tree the entries were merged into
	Conflicts []K         // MERGE: keys of other already present
	Lower     *Tree[K, V] // SPLIT: keys below the pivot
	Upper     *Tree[K, V] // SPLIT: keys at or above the pivot
}

// Dispatcher routes requests to a tree. Mutating requests go through a
// History so they can be undone.
type Dispatcher[K comparable, V any] struct {
	history *History[K, V]
	log     Logger
	exited  bool
}

// NewDispatcher returns a dispatcher over tree with an empty history.
func NewDispatcher[K comparable, V any](tree *Tree[K, V]) *Dispatcher[K, V] {
	return &Dispatcher[K, V]{
		history: NewHistory(tree),
		log:     tree.log,
	}
}

// Tree returns the tree requests are applied to.
func (d *Dispatcher[K, V]) Tree() *Tree[K, V] {
	return d.history.tree
}

// History returns the dispatcher's command log.
func (d *Dispatcher[K, V]) History() *History[K, V] {
	return d.history
}

// Exited reports whether an EXIT request has been dispatched.
func (d *Dispatcher[K, V]) Exited() bool {
	return d.exited
}

// Dispatch executes req. Expected outcomes (duplicate key, missing key,
// nothing to undo) are reported through Result.Status with a nil error.
// Invalid arguments and empty-tree queries are returned as errors. After
// EXIT every call returns ErrDispatcherClosed.
func (d *Dispatcher[K, V]) Dispatch(req Request[K, V]) (Result[K, V], error) {
	if d.exited {
		return Result[K, V]{}, ErrDispatcherClosed
	}
	if req == nil {
		return Result[K, V]{}, fmt.Errorf("%w: nil request", ErrUnknownOpcode)
	}

	res, err := d.dispatch(req)
	res.Op = req.Opcode()
	if err != nil {
		d.log.Warn("request failed", "op", res.Op.String(), "error", err)
	}
	return res, err
}

func (d *Dispatcher[K, V]) dispatch(req Request[K, V]) (Result[K, V], error) {
	var res Result[K, V]
	tree := d.history.tree

	switch r := req.(type) {
	case InsertRequest[K, V]:
		err := d.history.Insert(r.Key, r.Value)
		switch {
		case err == nil:
			res.Status = StatusInserted
		case errors.Is(err, ErrDuplicateKey):
			res.Status = StatusDuplicateRejected
		default:
			return res, err
		}

	case DeleteRequest[K, V]:
		_, err := d.history.Delete(r.Key)
		switch {
		case err == nil:
			res.Status = StatusDeleted
		case errors.Is(err, ErrKeyNotFound):
			res.Status = StatusNotFound
		default:
			return res, err
		}

	case SearchRequest[K, V]:
		v, err := tree.Get(r.Key)
		switch {
		case err == nil:
			res.Status = StatusFound
			res.Value = v
		case errors.Is(err, ErrKeyNotFound):
			res.Status = StatusNotFound
		default:
			return res, err
		}

	case DisplayRequest:
		keys, err := tree.Display(r.Order)
		if err != nil {
			return res, err
		}
		res.Keys = keys

	case LevelsRequest:
		res.Levels = tree.Levels()

	case BalanceRequest:
		tree.Balance()

	case CompareRequest[K, V]:
		if r.Other == nil {
			return res, errors.New("sgtree: compare needs another tree")
		}
		res.Status = StatusNotEqual
		if tree.Equal(r.Other) {
			res.Status = StatusEqual
		}

	case MergeRequest[K, V]:
		if r.Other == nil {
			return res, errors.New("sgtree: merge needs another tree")
		}
		res.Count, res.Conflicts = d.history.MergeFrom(r.Other)
		res.Tree = tree

	case EmptyRequest:
		res.Empty = tree.Empty()

	case BatchInsertRequest[K, V]:
		res.Count = d.history.BatchInsert(r.Entries)

	case BatchDeleteRequest[K, V]:
		res.Count = d.history.BatchDelete(r.Keys)

	case ClearRequest:
		d.history.Clear()

	case UndoRequest:
		if err := d.history.Undo(); errors.Is(err, ErrEmptyHistory) {
			res.Status = StatusEmptyHistory
		}

	case RedoRequest:
		if err := d.history.Redo(); errors.Is(err, ErrEmptyHistory) {
			res.Status = StatusEmptyHistory
		}

	case SumInRangeRequest[K, V]:
		sum, err := tree.SumInRange(r.Lo, r.Hi)
		if err != nil {
			return res, err
		}
		res.Sum = sum

	case ValuesInRangeRequest[K, V]:
		seq, err := tree.ValuesInRange(r.Lo, r.Hi)
		if err != nil {
			return res, err
		}
		res.Range = seq

	case MinRequest:
		k, err := tree.Min()
		if err != nil {
			return res, err
		}
		res.Key = k

	case MaxRequest:
		k, err := tree.Max()
		if err != nil {
			return res, err
		}
		res.Key = k

	case KthRequest:
		k, err := tree.Kth(r.Index)
		if err != nil {
			return res, err
		}
		res.Key = k

	case SuccRequest[K, V]:
		k, err := tree.Successor(r.Key)
		switch {
		case err == nil:
			res.Status = StatusFound
			res.Key = k
		case errors.Is(err, ErrKeyNotFound):
			res.Status = StatusNotFound
		default:
			return res, err
		}

	case SplitRequest[K, V]:
		res.Lower, res.Upper = d.history.Split(r.Key)

	case ExitRequest:
		d.exited = true
		res.Status = StatusExit

	default:
		return res, fmt.Errorf("%w: %v", ErrUnknownOpcode, req.Opcode())
	}

	return res, nil
}
