package sgtree

import "errors"

//goland:noinspection GoUnusedGlobalVariable
var (
	ErrDuplicateKey = errors.New("key already exists")
	ErrKeyNotFound  = errors.New("key not found")
	ErrEmptyTree    = errors.New("tree is empty")
	ErrEmptyHistory = errors.New("no command to undo or redo")
	ErrInvalidRange = errors.New("invalid range: lo is greater than hi")
	ErrOutOfRange   = errors.New("rank out of range")
	ErrCorruption   = errors.New("tree invariant violated")

	ErrInvalidAlpha     = errors.New("alpha must be in [0.5, 1)")
	ErrInvalidCacheSize = errors.New("search cache size cannot be negative")

	ErrKeysUnsorted = errors.New("keys must be loaded in strictly ascending order")
	ErrCursorStale  = errors.New("tree was modified after the cursor was created")

	ErrDispatcherClosed = errors.New("dispatcher has exited")
	ErrUnknownOpcode    = errors.New("unknown opcode")
)
