package session

import (
	"errors"
	"fmt"
)

// -- Sentinels --

var (
	ErrClosed     = errors.New("session is closed")
	ErrNoCapacity = errors.New("query buffer has no capacity")
)

// UsageError reports an operation the caller was not allowed to make, such
// as appending to a closed session.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

func (e *UsageError) InvalidInput() bool { return true }
