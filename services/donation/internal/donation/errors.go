package donation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures surfaced by core operations.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindInvalidTransition   Kind = "invalid_transition"
	KindValidation          Kind = "validation"
	KindUnauthorized        Kind = "unauthorized"
	KindAggregationDegraded Kind = "aggregation_degraded"
	KindUnavailable         Kind = "unavailable"
)

// Error is the typed failure returned by core operations. Callers match it
// with errors.Is against the Err* sentinels, which compare by Kind only.
type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Fields []string
	Err    error
}

var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrAggregationDegraded = &Error{Kind: KindAggregationDegraded}
	ErrUnavailable         = &Error{Kind: KindUnavailable}
)

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Fields, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a core error, or an empty Kind for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func notFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func invalidTransition(op, from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Op: op, Msg: fmt.Sprintf("cannot move from %s to %s", from, to)}
}

func validationFailed(op, msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg, Fields: fields}
}

func unauthorized(op, format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func unavailable(op string, err error) *Error {
	return &Error{Kind: KindUnavailable, Op: op, Msg: "store unavailable", Err: err}
}
