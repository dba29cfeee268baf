package billing

import (
	"errors"
	"fmt"
)

// ErrNotFound means the referenced bill does not exist or is not visible to
// the calling user. Callers should treat it as a navigate-away signal, not a
// retryable failure. Cross-owner access is deliberately indistinguishable
// from a missing bill.
var ErrNotFound = errors.New("bill not found")

// PersistenceError wraps a backend failure during a create, update, or
// delete. It is surfaced to the user as a generic retry prompt; no automatic
// retry happens here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
