package icclu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrorCode identifies the class of a construction time error or warning.
type ErrorCode string

const (
	CodeConfig         ErrorCode = "CONFIG"          // inconsistent channel counts or structure
	CodeFormat         ErrorCode = "FORMAT"          // persisted data anomaly
	CodeQuirk          ErrorCode = "QUIRK"           // vendor quirk that was corrected
	CodeRange          ErrorCode = "RANGE"           // index out of range
	CodeGridTooBig     ErrorCode = "GRID_TOO_BIG"    // clut size overflow
	CodeUnknownKind    ErrorCode = "UNKNOWN_KIND"    // unknown node kind or tag
	CodeIncompatible   ErrorCode = "INCOMPATIBLE"    // copy between unrelated kinds
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED" // operation missing for a kind
	CodeInvSeq         ErrorCode = "INVERTED_SEQ"    // sequence wrapped by an inverter
	CodeNestedSeq      ErrorCode = "NESTED_SEQ"      // analysis met an unflattened sequence
	CodeIntent         ErrorCode = "INTENT"          // intent not valid for the request
	CodeFunc           ErrorCode = "FUNC"            // lookup function not valid for class
	CodeNoTransform    ErrorCode = "NO_TRANSFORM"    // no usable candidate tag
	CodeFmtState       ErrorCode = "FMT_STATE"       // format bridge state machine stuck
	CodeTag            ErrorCode = "TAG"             // tag missing or of wrong type
)

// Error is the typed error returned by node constructors and the builder.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("icclu %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("icclu %s: %s %v", e.Code, e.Message, e.Details)
}

// Is reports a match on code so sentinel values can be used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// with attaches a detail value and returns the receiver.
func (e *Error) with(key string, val any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = val
	return e
}

// Sentinels for errors.Is.
var (
	// ErrConfig reports inconsistent channel counts or structure.
	ErrConfig = &Error{Code: CodeConfig, Message: "configuration error"}

	// ErrFormat reports an anomaly in persisted data.
	ErrFormat = &Error{Code: CodeFormat, Message: "format error"}

	// ErrRange reports an out of range container index.
	ErrRange = &Error{Code: CodeRange, Message: "index out of range"}

	// ErrGridTooBig reports a clut whose size overflows.
	ErrGridTooBig = &Error{Code: CodeGridTooBig, Message: "grid too big"}

	// ErrIncompatible reports a copy between kinds that cannot convert.
	ErrIncompatible = &Error{Code: CodeIncompatible, Message: "incompatible kinds"}

	// ErrNotImplemented reports an operation a kind does not provide.
	ErrNotImplemented = &Error{Code: CodeNotImplemented, Message: "not implemented"}

	// ErrInvertedSequence is returned when a sequence wrapped by an inverter
	// has to be inlined. The semantics of that case are not defined.
	ErrInvertedSequence = &Error{Code: CodeInvSeq, Message: "unsupported: inverted nested sequence"}
)

// Errors raised by the builder.
var (
	ErrNestedSequence = &Error{Code: CodeNestedSeq, Message: "unexpected nested sequence"}
	ErrIntent         = &Error{Code: CodeIntent, Message: "intent is inappropriate"}
	ErrFunc           = &Error{Code: CodeFunc, Message: "inappropriate function requested"}
	ErrNoTransform    = &Error{Code: CodeNoTransform, Message: "unable to locate usable conversion"}
	ErrFmtState       = &Error{Code: CodeFmtState, Message: "can't bridge formats"}
	ErrTag            = &Error{Code: CodeTag, Message: "tag error"}
	ErrUnknownKind    = &Error{Code: CodeUnknownKind, Message: "unknown kind"}
)

// WarnFunc receives non-fatal format warnings. Permissive callers can
// collect them and carry on loading.
type WarnFunc func(w *Error)

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the package logger. A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// DefaultWarn logs a format warning.
func DefaultWarn(w *Error) {
	log().Warn(w.Message, "code", string(w.Code))
}

// signalWarning routes a warning to fn, or to the logger when fn is nil.
func signalWarning(fn WarnFunc, code ErrorCode, format string, args ...any) {
	w := newError(code, format, args...)
	if fn == nil {
		DefaultWarn(w)
		return
	}
	fn(w)
}
