package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull     = errors.New("queue full")
	ErrClosed   = errors.New("queue closed")
	ErrCanceled = errors.New("enqueue canceled")
)
