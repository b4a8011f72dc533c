package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches every ValidationError.
var ErrInvalid = errors.New("invalid")

// Feed and view failures. All are local to the view being rendered.
var (
	ErrFeedUnavailable   = errors.New("feed unavailable")
	ErrInvalidFeedFormat = errors.New("invalid feed format")
	ErrPostNotFound      = errors.New("post not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrEmbedDecode       = errors.New("embed decode failure")
	ErrLoadInProgress    = errors.New("load already in progress")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError collects every problem found in one pass over a config.
type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	switch len(e.Items) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e.Items[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "validation failed (%d problems):\n", len(e.Items))
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{Field: field, Message: msg})
}

func (e ValidationError) Unwrap() error { return ErrInvalid }

// Err is nil when nothing was added, so callers can return it directly.
func (e ValidationError) Err() error {
	if len(e.Items) == 0 {
		return nil
	}
	return e
}
