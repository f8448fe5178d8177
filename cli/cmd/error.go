package cmd

import (
	"log/slog"
	"slices"
)

// Error is the error type returned by commands. Package-level sentinels
// carry the message; call sites attach a cause and log attributes with
// [Error.Wrap] and [Error.With], which copy rather than mutate so the
// sentinels stay pristine.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	switch {
	case e.msg == "" && e.err == nil:
		return ""
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches any copy derived from the same sentinel, so
// errors.Is(err, ErrBuildFailed) holds after Wrap and With.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

// LogValue renders the error as a group for structured logging. A cause
// that is itself a LogValuer expands in place; anything else is
// flattened to its message.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	switch cause := e.err.(type) {
	case nil:
	case slog.LogValuer:
		attrs = append(attrs, slog.Any("cause", cause))
	default:
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e recording err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e carrying additional log attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = slices.Concat(e.attrs, attrs)

	return &c
}

var (
	ErrYAMLMarshal   = NewError("marshal YAML")
	ErrWriteConfig   = NewError("write configuration file")
	ErrProjectConfig = NewError("read project configuration")
	ErrFileExists    = NewError("file exists (use --force to overwrite)")
	ErrInputNotFound = NewError("input not found")
	ErrWalkInputs    = NewError("walk input directory")
	ErrNoInputs      = NewError("no template inputs")
	ErrReadInput     = NewError("read input")
	ErrWriteOutput   = NewError("write output")
	ErrBuildFailed   = NewError("build failed")
	ErrCheckFailed   = NewError("check failed")
)
