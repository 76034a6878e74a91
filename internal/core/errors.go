package core

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures by the stage that produced them.
type Kind string

const (
	KindSourceRead  Kind = "source read"
	KindAggregation Kind = "aggregation"
	KindPublish     Kind = "publish"
)

// Sentinels matched by *Error through errors.Is.
var (
	ErrSourceRead  = errors.New("source read failed")
	ErrAggregation = errors.New("aggregation contract violated")
	ErrPublish     = errors.New("publish failed")
)

// Error is a stage failure. The underlying error is preserved unchanged so
// callers can still inspect it with errors.As.
type Error struct {
	Kind   Kind
	Locale string // set for publish failures
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Locale != "" {
		return fmt.Sprintf("%s failed for locale %s: %v", e.Kind, e.Locale, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel that corresponds to e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSourceRead:
		return e.Kind == KindSourceRead
	case ErrAggregation:
		return e.Kind == KindAggregation
	case ErrPublish:
		return e.Kind == KindPublish
	}
	return false
}

func sourceError(err error) *Error {
	return &Error{Kind: KindSourceRead, Err: err}
}

func publishError(locale string, err error) *Error {
	return &Error{Kind: KindPublish, Locale: locale, Err: err}
}
