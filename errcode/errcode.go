package errcode

import "errors"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK              Code = "ok"
	NotFound        Code = "not_found"        // descriptor absent (node, property)
	IO              Code = "io"               // bus, chip, register or property write failure
	InvalidArgument Code = "invalid_argument" // EINVAL at the hook boundary
	Unsupported     Code = "unsupported"

	Error Code = "error" // generic fallback
)

// E keeps an operation name and a cause next to the code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += " (" + e.Err.Error() + ")"
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns nil for a nil cause, otherwise an *E with code c.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}
