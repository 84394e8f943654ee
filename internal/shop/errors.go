package shop

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindStock         Kind = "stock"
	KindAuthorization Kind = "authorization"
	KindState         Kind = "state"
	KindInternal      Kind = "internal"
)

// Error carries a Kind so handlers can map failures to responses without
// string matching. Stock errors additionally carry every failing line.
type Error struct {
	Kind       Kind
	Message    string
	Shortfalls []Shortfall
	cause      error
}

type Shortfall struct {
	ProductID string `json:"product_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Statef(format string, args ...any) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// InsufficientStock names the first offending product in the message and
// keeps the full detail list for callers that want all of them.
func InsufficientStock(shortfalls []Shortfall) *Error {
	first := shortfalls[0]
	return &Error{
		Kind: KindStock,
		Message: fmt.Sprintf("insufficient stock for product %s: need %d, have %d",
			first.ProductID, first.Required, first.Available),
		Shortfalls: shortfalls,
	}
}

// KindOf reports the Kind of err; plain errors count as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
