// Package errs attaches machine-readable codes to errors so callers can tell
// a transport failure from a missing document without string matching.
package errs

import (
	"fmt"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeTransportRequest Code = "transport.request.failure"
	CodeTransportStatus  Code = "transport.status.failure"
	CodeStreamRead       Code = "stream.read.failure"

	CodeDocumentRead     Code = "document.read.failure"
	CodeDocumentRequired Code = "document.required"

	CodeCredentialMissing Code = "credential.missing"
	CodeCredentialStore   Code = "credential.store.failure"

	CodeHistoryStore Code = "history.store.failure"
	CodeConfigLoad   Code = "config.load.failure"
)

// Attr is a structured key/value pair attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf returns the code of the outermost coded error in the chain, or "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	switch code := oopsErr.Code().(type) {
	case Code:
		return code
	case string:
		return Code(code)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", code))
	}
}

func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// FieldsOf returns the structured context carried by err.
func FieldsOf(err error) map[string]any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

func flatten(fields []Attr) []any {
	out := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}
