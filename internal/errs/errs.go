// Package errs defines the single error taxonomy surfaced by every public
// entry point of the codec engine, mirroring the outer-API contract in the
// specification: one union error type, never a bare string, always carrying
// enough context (node path, kind) to act on.
package errs

import "fmt"

// Kind enumerates the error categories the codec engine can produce.
type Kind string

const (
	FormatError      Kind = "FormatError"
	ValueOutOfRange  Kind = "ValueOutOfRange"
	EnumMismatch     Kind = "EnumMismatch"
	ExpressionError  Kind = "ExpressionError"
	CyclicDependency Kind = "CyclicDependency"
	MissingNode      Kind = "MissingNode"
	UnalignedSpan    Kind = "UnalignedSpan"
	DecodeUnderrun   Kind = "DecodeUnderrun"
	IoError          Kind = "IoError"
)

// CodecError is the single error type returned from the top-level encode and
// decode entry points. NodePath is the dotted id path from the protocol root
// to the offending node, empty when the error is not node-specific.
type CodecError struct {
	Kind     Kind
	NodePath string
	Message  string
	Cycle    []string // populated only for CyclicDependency
	cause    error
}

func (e *CodecError) Error() string {
	if e.NodePath != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.NodePath)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CodecError) Unwrap() error { return e.cause }

// New builds a CodecError with no node path.
func New(kind Kind, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At attaches a node path to a freshly built error.
func At(path string, kind Kind, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, NodePath: path, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a CodecError that preserves err for errors.Is/As via Unwrap.
func Wrap(kind Kind, path string, err error) *CodecError {
	return &CodecError{Kind: kind, NodePath: path, Message: err.Error(), cause: err}
}

// Cyclic builds a CyclicDependency error carrying the offending cycle.
func Cyclic(cycle []string) *CodecError {
	return &CodecError{
		Kind:    CyclicDependency,
		Message: fmt.Sprintf("dependency cycle: %v", cycle),
		Cycle:   cycle,
	}
}

// Error lets a Kind serve as an error value, e.g. as the target of
// errors.Is(err, errs.FormatError).
func (k Kind) Error() string { return string(k) }

// Is allows errors.Is(err, errs.FormatError) style matching against a Kind.
func (e *CodecError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// MatchKind reports whether err is a *CodecError of the given kind.
func MatchKind(err error, kind Kind) bool {
	ce, ok := err.(*CodecError)
	return ok && ce.Kind == kind
}
