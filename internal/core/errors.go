package core

import "errors"

// Input validation errors. Operations returning these leave the workspace
// untouched.
var (
	ErrNoColumnsSelected = errors.New("no columns selected")
	ErrColumnNotFound    = errors.New("column not found")
	ErrEmptyCustomValue  = errors.New("custom fill value is empty")
	ErrNonNumericColumn  = errors.New("column is not numeric")
	ErrInvalidThreshold  = errors.New("invalid missing-value threshold")
	ErrUnknownBehavior   = errors.New("unknown duplicate behavior")
	ErrUnknownMethod     = errors.New("unknown fill method")
	ErrUnknownFormat     = errors.New("unknown export format")
)

// Ingestion errors.
var (
	ErrUnsupportedFormat  = errors.New("unsupported file type")
	ErrEmptyFile          = errors.New("empty file")
	ErrInvalidCSV         = errors.New("invalid csv")
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
	ErrEncoding           = errors.New("encoding error")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNoFile             = errors.New("no file provided")
)

// Workspace and session errors.
var (
	ErrFileNotFound    = errors.New("file not found in workspace")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrTooManyUploads  = errors.New("too many concurrent uploads, please try again later")
)
