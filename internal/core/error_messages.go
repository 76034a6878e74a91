// Package core turns translation rows into published locale files.
//
// # Error Codes Reference
//
// User-facing errors carry a code that can be quoted when asking for help.
// The CLI prints them on failure and the HTTP API returns them in the
// "code" field.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Missing or invalid configuration
//	         Action: Set the listed environment variables (see .env.example)
//	         Patterns: "missing configuration", "validation failed"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Missing column: The local file lacks locale, key or value
//	         Action: Add the three headers to the first row
//	         Patterns: "missing required column"
//
//	SRC002 - Unsupported file: The local source is not .xlsx or .csv
//	         Action: Convert the file or point SOURCE_FILE elsewhere
//	         Patterns: "unsupported source file"
//
//	SRC003 - File not found: The local source file does not exist
//	         Action: Check SOURCE_FILE
//	         Patterns: "no such file"
//
//	SRC004 - Sheets request failed: Google rejected the request
//	         Action: Check GOOGLE_SHEET_ID, GOOGLE_API_KEY and sharing settings
//	         Patterns: "googleapi"
//
// # Publish Errors (PUB001-PUB099)
//
//	PUB001 - Asset host rejected the credentials
//	         Action: Check the CDN credentials
//	         Patterns: "cdn access_denied"
//
//	PUB002 - Asset host target not found
//	         Action: Check the bucket or cloud name
//	         Patterns: "cdn not_found"
//
//	PUB003 - Invalid locale code
//	         Action: Fix the locale header in the source
//	         Patterns: "invalid locale code", "empty locale code"
//
//	PUB004 - Local write failed
//	         Action: Check permissions on OUTPUT_DIR and MANIFEST_PATH
//	         Patterns: "create output dir", "manifest", "permission denied"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - A sync is already running
//	RUN002 - The run exceeded RUN_TIMEOUT ("context deadline exceeded")
//	RUN003 - The run was cancelled ("context canceled")
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests ("rate limit", "rate_limited")
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. The technical error is in the log.
//
// Patterns are matched case-insensitively with strings.Contains against the
// full error chain text. The first match wins.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered specific before general.
var errorPatterns = []errorPattern{
	// Run control first: a timeout anywhere in the chain is reported as such.
	{
		pattern: "sync already running",
		msg: UserMessage{
			Message: "A sync is already in progress",
			Action:  "Wait for it to finish and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The run timed out",
			Action:  "Increase RUN_TIMEOUT or check network connectivity",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was cancelled",
			Action:  "Start it again when ready",
			Code:    "RUN003",
		},
	},

	// Configuration
	{
		pattern: "missing configuration",
		msg: UserMessage{
			Message: "Required configuration is missing",
			Action:  "Set the listed environment variables (see .env.example)",
			Code:    "CFG001",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "Configuration is invalid",
			Action:  "Fix the listed environment variables",
			Code:    "CFG001",
		},
	},

	// Source
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "The source file is missing a required column",
			Action:  "Add locale, key and value headers to the first row",
			Code:    "SRC001",
		},
	},
	{
		pattern: "unsupported source file",
		msg: UserMessage{
			Message: "Unsupported source file type",
			Action:  "Use an .xlsx or .csv file",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check SOURCE_FILE and MANIFEST_PATH",
			Code:    "SRC003",
		},
	},
	{
		pattern: "googleapi",
		msg: UserMessage{
			Message: "Google Sheets request failed",
			Action:  "Check GOOGLE_SHEET_ID, GOOGLE_API_KEY and that the sheet is shared",
			Code:    "SRC004",
		},
	},

	// Publish
	{
		pattern: "cdn access_denied",
		msg: UserMessage{
			Message: "The asset host rejected the credentials",
			Action:  "Check the CDN credentials",
			Code:    "PUB001",
		},
	},
	{
		pattern: "cdn not_found",
		msg: UserMessage{
			Message: "The asset host target was not found",
			Action:  "Check the bucket or cloud name",
			Code:    "PUB002",
		},
	},
	{
		pattern: "invalid locale code",
		msg: UserMessage{
			Message: "A locale code cannot be used as a file name",
			Action:  "Fix the locale header in the source",
			Code:    "PUB003",
		},
	},
	{
		pattern: "empty locale code",
		msg: UserMessage{
			Message: "A locale code cannot be used as a file name",
			Action:  "Fix the locale header in the source",
			Code:    "PUB003",
		},
	},
	{
		pattern: "create output dir",
		msg: UserMessage{
			Message: "Could not write local files",
			Action:  "Check permissions on OUTPUT_DIR and MANIFEST_PATH",
			Code:    "PUB004",
		},
	},
	{
		pattern: "manifest",
		msg: UserMessage{
			Message: "Could not write local files",
			Action:  "Check permissions on OUTPUT_DIR and MANIFEST_PATH",
			Code:    "PUB004",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "Could not write local files",
			Action:  "Check permissions on OUTPUT_DIR and MANIFEST_PATH",
			Code:    "PUB004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "rate_limited",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the log output",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-friendly message.
// Returns an empty UserMessage for nil errors.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError returns a single-line user-facing error string.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
