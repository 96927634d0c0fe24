package hooks

import "errors"

// ErrDataStore is matched by every failed hook operation.
var ErrDataStore = errors.New("data store operation failed")

// ErrNoSprint is returned by sprint scoped writes when no sprint is current.
var ErrNoSprint = errors.New("no active sprint")

// ErrNoTransition is returned when a backlog item cannot move further along
// its status chain.
var ErrNoTransition = errors.New("no status transition")

// OpError describes a failed hook operation. Its message is the underlying
// data store message.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

// Unwrap exposes both the data store kind and the cause.
func (e *OpError) Unwrap() []error {
	return []error{ErrDataStore, e.Err}
}

func opError(op string, err error) *OpError {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe
	}
	return &OpError{Op: op, Err: err}
}
