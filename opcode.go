package sgtree

import (
	"fmt"
	"strings"
)

// Opcode names one operation exposed through Dispatcher.Dispatch. The zero
// Opcode is not a valid operation.
type Opcode int

const (
	OpInsert Opcode = iota + 1
	OpDelete
	OpSearch
	OpDisplayInorder
	OpDisplayPreorder
	OpDisplayPostorder
	OpDisplayLevels
	OpBalance
	OpCompare
	OpMerge
	OpEmpty
	OpBatchInsert
	OpBatchDelete
	OpClear
	OpUndo
	OpRedo
	OpSumInRange
	OpValuesInRange
	OpMin
	OpMax
	OpKth
	OpSucc
	OpSplit
	OpExit
)

var opcodeNames = [...]string{
	OpInsert:           "INSERT",
	OpDelete:           "DELETEOP",
	OpSearch:           "SEARCH",
	OpDisplayInorder:   "DISPLAY_INORDER",
	OpDisplayPreorder:  "DISPLAY_PREORDER",
	OpDisplayPostorder: "DISPLAY_POSTORDER",
	OpDisplayLevels:    "DISPLAY_LEVELS",
	OpBalance:          "BALANCE",
	OpCompare:          "COMPARE",
	OpMerge:            "MERGE",
	OpEmpty:            "EMPTY",
	OpBatchInsert:      "BATCH_INSERT",
	OpBatchDelete:      "BATCH_DELETE",
	OpClear:            "CLEAR",
	OpUndo:             "UNDO",
	OpRedo:             "REDO",
	OpSumInRange:       "SUMINRANGE",
	OpValuesInRange:    "VALUESINRANGE",
	OpMin:              "MIN",
	OpMax:              "MAX",
	OpKth:              "KTH",
	OpSucc:             "SUCC",
	OpSplit:            "SPLIT",
	OpExit:             "EXIT",
}

func (op Opcode) String() string {
	if op > 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Mutating reports whether op changes the tree and is recorded in history.
func (op Opcode) Mutating() bool {
	switch op {
	case OpInsert, OpDelete, OpMerge, OpBatchInsert, OpBatchDelete, OpClear, OpSplit:
		return true
	}
	return false
}

// ParseOpcode maps a name such as "INSERT" or "batch_insert" to its opcode.
// "DELETE" is accepted as an alias for DELETEOP.
func ParseOpcode(name string) (Opcode, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "DELETE" {
		return OpDelete, nil
	}
	for op := OpInsert; op <= OpExit; op++ {
		if opcodeNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
}

// Status is the outcome variant of a dispatched request. Expected outcomes
// such as a missing key are statuses, not errors.
type Status int

const (
	StatusOK Status = iota
	StatusInserted
	StatusDuplicateRejected
	StatusDeleted
	StatusFound
	StatusNotFound
	StatusEqual
	StatusNotEqual
	StatusEmptyHistory
	StatusExit
)

var statusNames = [...]string{
	StatusOK:                "Ok",
	StatusInserted:          "Inserted",
	StatusDuplicateRejected: "DuplicateRejected",
	StatusDeleted:           "Deleted",
	StatusFound:             "Found",
	StatusNotFound:          "NotFound",
	StatusEqual:             "Equal",
	StatusNotEqual:          "NotEqual",
	StatusEmptyHistory:      "EmptyHistory",
	StatusExit:              "Exit",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
