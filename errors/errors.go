package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // format string grammar
	PhaseResolve  Phase = "resolve"  // field resolution and layout
	PhasePack     Phase = "pack"     // values to bytes
	PhaseUnpack   Phase = "unpack"   // bytes to values
	PhaseRegistry Phase = "registry" // named struct definitions
	PhaseLoad     Phase = "load"     // definitions file loading
	PhaseMemory   Phase = "memory"   // guest linear memory access
	PhaseInterop  Phase = "interop"  // WIT record mapping
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedFormat    Kind = "malformed_format"
	KindModeMismatch       Kind = "mode_mismatch"
	KindValueTooLarge      Kind = "value_too_large"
	KindValueOutOfRange    Kind = "value_out_of_range"
	KindBufferSizeMismatch Kind = "buffer_size_mismatch"
	KindTypeMismatch       Kind = "type_mismatch"
	KindArityMismatch      Kind = "arity_mismatch"
	KindUnknownStruct      Kind = "unknown_struct"
	KindCyclicReference    Kind = "cyclic_reference"
	KindOverflow           Kind = "overflow"
	KindInvalidInput       Kind = "invalid_input"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindNotFound           Kind = "not_found"
	KindIncompatible       Kind = "incompatible"
)

// Sentinels for errors.Is. They match any phase.
var (
	ErrMalformedFormat    = &Error{Kind: KindMalformedFormat}
	ErrModeMismatch       = &Error{Kind: KindModeMismatch}
	ErrValueTooLarge      = &Error{Kind: KindValueTooLarge}
	ErrValueOutOfRange    = &Error{Kind: KindValueOutOfRange}
	ErrBufferSizeMismatch = &Error{Kind: KindBufferSizeMismatch}
	ErrTypeMismatch       = &Error{Kind: KindTypeMismatch}
	ErrArityMismatch      = &Error{Kind: KindArityMismatch}
	ErrUnknownStruct      = &Error{Kind: KindUnknownStruct}
	ErrCyclicReference    = &Error{Kind: KindCyclicReference}
	ErrOverflow           = &Error{Kind: KindOverflow}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrOutOfBounds        = &Error{Kind: KindOutOfBounds}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrIncompatible       = &Error{Kind: KindIncompatible}
)

// Span is a half-open byte range [Start, End) in a format string.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return strconv.Itoa(s.Start) + ".." + strconv.Itoa(s.End)
}

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Span   *Span
	Phase  Phase
	Kind   Kind
	GoType string
	Tag    string
	Source string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Span != nil {
		b.WriteString(" in ")
		b.WriteString(strconv.Quote(e.Source))
		b.WriteString(" [")
		b.WriteString(e.Span.String())
		b.WriteByte(']')
	}

	if e.GoType != "" || e.Tag != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Tag != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", field type ")
			b.WriteString(e.Tag)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("field type ")
			b.WriteString(e.Tag)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Tag != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
// Same as the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// Same as the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the slot path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Tag sets the field type name
func (b *Builder) Tag(t string) *Builder {
	b.err.Tag = t
	return b
}

// Span sets the offending source range
func (b *Builder) Span(source string, span Span) *Builder {
	b.err.Source = source
	b.err.Span = &span
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedFormat creates a grammar error pointing at span in source
func MalformedFormat(source string, span Span, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformedFormat,
		Source: source,
		Span:   &span,
		Detail: detail,
		Cause:  cause,
	}
}

// ModeMismatch creates an error for a native-only type under an explicit byte order
func ModeMismatch(path []string, tag string, modifier byte) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindModeMismatch,
		Path:   path,
		Tag:    tag,
		Detail: fmt.Sprintf("native-only type not allowed with %q modifier", modifier),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Tag:    tag,
	}
}

// ValueOutOfRange creates an error for a number that does not fit its field
func ValueOutOfRange(phase Phase, path []string, value any, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindValueOutOfRange,
		Path:   path,
		Tag:    tag,
		Detail: fmt.Sprintf("value %v out of range for %s", value, tag),
		Value:  value,
	}
}

// ValueTooLarge creates an error for a byte string longer than its field
func ValueTooLarge(phase Phase, path []string, length, capacity int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindValueTooLarge,
		Path:   path,
		Detail: fmt.Sprintf("%d bytes do not fit in %d-byte field", length, capacity),
		Value:  length,
	}
}

// BufferSizeMismatch creates an error for a buffer of the wrong length
func BufferSizeMismatch(phase Phase, got, want int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferSizeMismatch,
		Detail: fmt.Sprintf("buffer is %d bytes, layout needs %d", got, want),
		Value:  got,
	}
}

// ArityMismatch creates an error for a value tuple of the wrong length
func ArityMismatch(phase Phase, path []string, got, want int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArityMismatch,
		Path:   path,
		Detail: fmt.Sprintf("got %d values, layout has %d slots", got, want),
		Value:  got,
	}
}

// UnknownStruct creates an error for an unresolvable nested struct name
func UnknownStruct(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownStruct,
		Path:   path,
		Detail: fmt.Sprintf("struct %q is not defined", name),
		Value:  name,
	}
}

// CyclicReference creates an error for a struct that contains itself by value
func CyclicReference(chain []string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindCyclicReference,
		Detail: "struct contains itself: " + strings.Join(chain, " -> "),
		Value:  chain,
	}
}

// Overflow creates a size overflow error
func Overflow(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) exceeds %d bytes", offset, offset+length, limit),
		Value:  offset,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Incompatible creates an interop mismatch error
func Incompatible(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseInterop,
		Kind:   KindIncompatible,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a definitions loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
