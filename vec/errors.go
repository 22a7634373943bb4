package vec

import "github.com/pkg/errors"

var (
	// ErrPrecondition is wrapped by the value of every panic caused by a misuse of a Vec.
	ErrPrecondition = errors.New("vec: precondition violated")
	// ErrAllocationOverflow means the requested capacity cannot be represented.
	ErrAllocationOverflow = errors.New("vec: capacity overflow")
	// ErrAllocationFailure means the storage for the requested capacity could not be allocated.
	ErrAllocationFailure = errors.New("vec: allocation failure")
)

func precondition(format string, args ...interface{}) {
	panic(errors.Wrapf(ErrPrecondition, format, args...))
}
