package domain

import "errors"

// Kind classifies errors that callers can act upon.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
)

// Error is a client-facing error with a fixed kind and a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

// Is matches any *Error with the same kind and message, ignoring the detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrInvalidProduct    = &Error{Kind: KindInvalidInput, Message: "Invalid product data"}
	ErrProductIDMismatch = &Error{Kind: KindInvalidInput, Message: "Product ID mismatch"}
	ErrProductNotFound   = &Error{Kind: KindNotFound, Message: "Product not found"}
)

func invalidProduct(detail string) error {
	return &Error{Kind: ErrInvalidProduct.Kind, Message: ErrInvalidProduct.Message, Detail: detail}
}

// KindOf reports the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
