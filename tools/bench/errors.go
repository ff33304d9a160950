package bench

import (
	"errors"
	"fmt"
)

// Kind classifies the failures that end a benchmark run.
type Kind int

const (
	KindOpen Kind = iota + 1
	KindWrite
	KindReadMiss
	KindRead
)

var kindNames = map[Kind]string{
	KindOpen:     "open",
	KindWrite:    "write",
	KindReadMiss: "read miss",
	KindRead:     "read",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ExitCode is the process exit status reported for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindWrite:
		return 2
	case KindRead:
		return 3
	case KindOpen, KindReadMiss:
		return 4
	default:
		return 1
	}
}

// Error is a failure that ended a benchmark run.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{kind, err}
}

// OpenError marks err as a failure to open the store.
func OpenError(err error) error {
	return newError(KindOpen, err)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a run to the process exit
// status: 0 for nil, the kind's code for an *Error and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var benchErr *Error
	if errors.As(err, &benchErr) {
		return benchErr.Kind.ExitCode()
	}
	return 1
}
