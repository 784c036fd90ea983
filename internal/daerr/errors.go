// Package daerr defines the typed error kinds core operations return,
// per the error handling design: validation, precondition, state-unsafe,
// merge/sync, backend, IO, hook, and configuration errors. Every core
// component returns these instead of printing, so the caller decides
// how (and whether) to present a failure.
package daerr

import "fmt"

// Kind classifies a core error for callers that branch on it.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindPrecondition  Kind = "precondition"
	KindStateUnsafe   Kind = "state_unsafe"
	KindMerge         Kind = "merge"
	KindBackend       Kind = "backend"
	KindIO            Kind = "io"
	KindHook          Kind = "hook"
	KindConfiguration Kind = "configuration"
)

// Error is the single error type returned by daft's core. The Branch
// field identifies the subject when an error is batched (e.g.
// branch-delete's all-or-nothing validation).
type Error struct {
	Kind    Kind
	Op      string // operation that produced the error, e.g. "checkout"
	Branch  string // optional: the branch/argument this error concerns
	Message string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	prefix := e.Op
	if e.Branch != "" {
		prefix = fmt.Sprintf("%s(%s)", e.Op, e.Branch)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error without a wrapped cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an *Error carrying an underlying cause.
func Wrap(kind Kind, op string, err error, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// WithBranch sets the Branch field and returns the same error, for
// chaining in validation batches.
func (e *Error) WithBranch(branch string) *Error {
	e.Branch = branch
	return e
}

// Is reports whether err is a daerr.Error of the given kind.
func Is(err error, kind Kind) bool {
	var de *Error
	if e, ok := err.(*Error); ok {
		de = e
	} else {
		return false
	}
	return de.Kind == kind
}

// Backend wraps a Git Facade failure, propagating the backend message
// verbatim as required by the Git Facade contract.
func Backend(op string, err error) *Error {
	return Wrap(KindBackend, op, err, "git backend operation failed")
}
