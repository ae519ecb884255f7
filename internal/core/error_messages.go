package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// Users can quote the code to support staff. Codes are grouped by category.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - No columns: Please select at least one column
//	         Patterns: "no columns selected"
//	VAL002 - Empty custom value: Please enter a custom value
//	         Patterns: "custom fill value is empty"
//	VAL003 - Non-numeric column: Mean and median need numeric columns
//	         Patterns: "column is not numeric"
//	VAL004 - Bad threshold: Threshold must be between 0 and 100
//	         Patterns: "invalid missing-value threshold"
//	VAL005 - Unknown column: Column does not exist in this file
//	         Patterns: "column not found"
//	VAL006 - Unknown option: The selected option is not supported
//	         Patterns: "unknown duplicate behavior", "unknown fill method", "unknown export format"
//	VAL007 - Invalid request: The request could not be understood
//	         Patterns: "invalid request"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid CSV             Patterns: "invalid csv"
//	FILE003 - Encoding error          Patterns: "encoding error"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "empty file"
//	FILE006 - Unsupported type        Patterns: "unsupported file type"
//	FILE007 - Invalid spreadsheet     Patterns: "invalid spreadsheet"
//
// # Workspace Errors (WS001-WS099)
//
//	WS001 - File not loaded           Patterns: "file not found in workspace"
//	WS002 - Server busy               Patterns: "too many active sessions"
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - No numeric columns     Patterns: "chart: no numeric columns"
//	CHART002 - No chart columns       Patterns: "chart: no columns selected"
//	CHART003 - Column not numeric     Patterns: "chart: column is not numeric"
//	CHART004 - Scatter axes           Patterns: "chart: scatter needs"
//	CHART005 - Chart failed           Patterns: "chart:"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy              Patterns: "too many concurrent uploads"
//	UPL004 - Request cancelled        Patterns: "context canceled"
//	UPL005 - Request timeout          Patterns: "context deadline exceeded"
//
// # Rate Limiting
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

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

var errorPatterns = []errorPattern{
	// Chart errors come first: their text overlaps the validation patterns.
	{
		pattern: "chart: no numeric columns",
		msg: UserMessage{
			Message: "No numeric columns found for visualization",
			Action:  "Please ensure your dataset contains numeric data",
			Code:    "CHART001",
		},
	},
	{
		pattern: "chart: no columns selected",
		msg: UserMessage{
			Message: "No columns selected to visualize",
			Action:  "Please select at least one column to visualize",
			Code:    "CHART002",
		},
	},
	{
		pattern: "chart: column is not numeric",
		msg: UserMessage{
			Message: "Only numeric columns can be charted",
			Action:  "Pick columns from the numeric column list",
			Code:    "CHART003",
		},
	},
	{
		pattern: "chart: scatter needs",
		msg: UserMessage{
			Message: "Scatter charts need an X and a Y column",
			Action:  "Select two numerical columns",
			Code:    "CHART004",
		},
	},
	{
		pattern: "chart:",
		msg: UserMessage{
			Message: "Couldn't create chart",
			Action:  "Try a different chart type or columns",
			Code:    "CHART005",
		},
	},

	{
		pattern: "no columns selected",
		msg: UserMessage{
			Message: "Please select at least one column",
			Action:  "Choose one or more columns and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "custom fill value is empty",
		msg: UserMessage{
			Message: "Please enter a custom value",
			Action:  "Type the value used to fill missing cells",
			Code:    "VAL002",
		},
	},
	{
		pattern: "column is not numeric",
		msg: UserMessage{
			Message: "Mean and median need numeric columns",
			Action:  "Use Mode or a custom value for text columns",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid missing-value threshold",
		msg: UserMessage{
			Message: "Threshold must be between 0 and 100",
			Action:  "Pick a percentage between 0 and 100",
			Code:    "VAL004",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column does not exist in this file",
			Action:  "Refresh the page to see the current columns",
			Code:    "VAL005",
		},
	},
	{
		pattern: "unknown duplicate behavior",
		msg:     unknownOption,
	},
	{
		pattern: "unknown fill method",
		msg:     unknownOption,
	},
	{
		pattern: "unknown export format",
		msg:     unknownOption,
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the submitted values and try again",
			Code:    "VAL007",
		},
	},

	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or Excel file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only CSV and Excel files are supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Re-save the file as .xlsx and try again",
			Code:    "FILE007",
		},
	},

	{
		pattern: "file not found in workspace",
		msg: UserMessage{
			Message: "This file is no longer loaded",
			Action:  "Upload the file again",
			Code:    "WS001",
		},
	},
	{
		pattern: "too many active sessions",
		msg: UserMessage{
			Message: "The server is handling too many sessions",
			Action:  "Please try again in a few minutes",
			Code:    "WS002",
		},
	},

	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var unknownOption = UserMessage{
	Message: "The selected option is not supported",
	Action:  "Pick one of the listed options",
	Code:    "VAL006",
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
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

// FormatUserError formats an error as a single display line.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic fallback. Validation failures are user facing; they are shown
// as warnings instead of failures.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
