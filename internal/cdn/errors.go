package cdn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Code classifies asset host failures.
type Code string

const (
	CodeAccessDenied Code = "access_denied"
	CodeNotFound     Code = "not_found"
	CodeRateLimited  Code = "rate_limited"
	CodeUnreachable  Code = "unreachable"
	CodeTimeout      Code = "timeout"
	CodeRejected     Code = "rejected"
	CodeInvalid      Code = "invalid"
)

// Error is a classified asset host failure.
type Error struct {
	Code      Code
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cdn %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapError(code Code, retryable bool, err error) *Error {
	return &Error{Code: code, Retryable: retryable, Err: err}
}

// IsRetryable reports whether err is a transient asset host failure.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// classifyS3Error converts minio-go errors to *Error.
func classifyS3Error(err error) *Error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchBucket", "NoSuchKey":
		return wrapError(CodeNotFound, false, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return wrapError(CodeAccessDenied, false, err)
	case "SlowDown", "SlowDownWrite", "RequestLimitExceeded":
		return wrapError(CodeRateLimited, true, err)
	}
	return classifyMessage(err)
}

// classifyMessage falls back to matching the error text.
func classifyMessage(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(CodeTimeout, true, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist"):
		return wrapError(CodeNotFound, false, err)
	case strings.Contains(msg, "access denied") || strings.Contains(msg, "invalid signature") ||
		strings.Contains(msg, "invalid api_key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission"):
		return wrapError(CodeAccessDenied, false, err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return wrapError(CodeRateLimited, true, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return wrapError(CodeTimeout, true, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "unreachable"):
		return wrapError(CodeUnreachable, true, err)
	}
	return wrapError(CodeRejected, false, err)
}
