package hbcht

import "fmt"

// Kind identifies a distinct error condition surfaced by the core, per
// spec.md §7. Every core-level failure is reported exactly once at its
// boundary (load, walk, or run) — the core never partially succeeds.
type Kind string

const (
	KindNoProgramData             Kind = "no_program_data"
	KindNoSourceCode               Kind = "no_source_code"
	KindNoCar                      Kind = "no_car"
	KindNoExit                     Kind = "no_exit"
	KindMultipleCars               Kind = "multiple_cars"
	KindMultipleExits              Kind = "multiple_exits"
	KindInfiniteLoop               Kind = "infinite_loop"
	KindUnsupportedBytecodeVersion Kind = "unsupported_bytecode_version"
	KindCorruptBytecode            Kind = "corrupt_bytecode"
	KindTargetOutOfRange           Kind = "target_out_of_range"
	KindUnknownLanguage            Kind = "unknown_language"
	KindOutputFileExists           Kind = "output_file_exists"
	KindInvalidDirection           Kind = "invalid_direction"
	KindNegativeInput              Kind = "negative_input"
)

// Error is the single error type returned by every core-level operation.
// Callers distinguish failure modes with errors.As and Error.Kind, the
// same shape as the standard library's *fs.PathError.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("hbcht: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &Error{Kind: KindNoCar}) match by Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
