package board

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed remote call.
type FailureKind string

const (
	FetchFailure  FailureKind = "fetch"
	WriteFailure  FailureKind = "write"
	DeleteFailure FailureKind = "delete"
)

var (
	// ErrRejected is returned when an operation is refused before any remote
	// call is made: empty name or title, or no signed-in user.
	ErrRejected = errors.New("rejected")

	// ErrPartialMove is returned when a cross-list move inserted the copy into
	// the target list but could not delete the original. The task then exists
	// in both lists.
	ErrPartialMove = errors.New("partial move: task exists in both lists")

	// ErrAlreadyBound is returned by a second SessionBinder.Bind.
	ErrAlreadyBound = errors.New("session binder already bound")
)

// RemoteError wraps a failed store call.
type RemoteError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failure: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func remoteErr(kind FailureKind, op string, err error) error {
	return &RemoteError{Kind: kind, Op: op, Err: err}
}

// IsFailure reports whether err is a RemoteError of the given kind.
func IsFailure(err error, kind FailureKind) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == kind
}
