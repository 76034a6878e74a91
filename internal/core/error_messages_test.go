package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "missing configuration", err: errors.New("missing configuration for sheets: GOOGLE_API_KEY"), wantCode: "CFG001"},
		{name: "invalid configuration", err: errors.New("validation failed:\n  - SERVER_PORT"), wantCode: "CFG001"},
		{name: "missing column", err: sourceError(errors.New("missing required column: value")), wantCode: "SRC001"},
		{name: "unsupported file", err: errors.New("unsupported source file \"x.ods\""), wantCode: "SRC002"},
		{name: "file not found", err: errors.New("open data.xlsx: no such file or directory"), wantCode: "SRC003"},
		{name: "google api", err: errors.New("googleapi: Error 403: The caller does not have permission"), wantCode: "SRC004"},
		{name: "cdn credentials", err: publishError("en", errors.New("cdn access_denied: invalid signature")), wantCode: "PUB001"},
		{name: "cdn bucket", err: errors.New("cdn not_found: bucket missing"), wantCode: "PUB002"},
		{name: "invalid locale", err: publishError("../x", errors.New(`invalid locale code "../x"`)), wantCode: "PUB003"},
		{name: "manifest write", err: errors.New("write manifest cdn-urls.json: read-only file system"), wantCode: "PUB004"},
		{name: "busy", err: errors.New("sync already running"), wantCode: "RUN001"},
		{name: "deadline", err: sourceError(context.DeadlineExceeded), wantCode: "RUN002"},
		{name: "cancelled", err: fmt.Errorf("upload: %w", context.Canceled), wantCode: "RUN003"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "cdn rate limited", err: errors.New("cdn rate_limited: slow down"), wantCode: "RATE001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
		{name: "case insensitive matching", err: errors.New("MISSING REQUIRED COLUMN: key"), wantCode: "SRC001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("missing required column: locale")
	result := FormatUserError(err)

	expected := "The source file is missing a required column (Code: SRC001). Add locale, key and value headers to the first row"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: errors.New("sync already running"), want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
