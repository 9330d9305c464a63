// Package xerrors defines the stable error taxonomy for the transcoder
// pipeline: one Code per failure mode named in the error handling design,
// wrapping the underlying cause for errors.As/errors.Is callers.
package xerrors

import "fmt"

// Code is a stable identifier for a class of pipeline failure.
type Code string

const (
	// MalformedIndex: the SCIP index failed to decode (framing, varint,
	// or field tag error). Fatal.
	MalformedIndex Code = "MALFORMED_INDEX"
	// UnsupportedSchema: a required SCIP field was absent. Fatal.
	UnsupportedSchema Code = "UNSUPPORTED_SCHEMA"
	// IoRead: a source file could not be read. Local to one file.
	IoRead Code = "IO_READ"
	// ParseFailed: a source file failed to parse. Local to one file.
	ParseFailed Code = "PARSE_FAILED"
	// SignatureUnavailable: signature extraction produced nothing. Silent.
	SignatureUnavailable Code = "SIGNATURE_UNAVAILABLE"
	// LogicUnavailable: logic lifting produced nothing. Silent.
	LogicUnavailable Code = "LOGIC_UNAVAILABLE"
	// UnresolvedReference: an occurrence's symbol had no short id. Silent
	// below LOD=High, synthesized as an external node at LOD=High.
	UnresolvedReference Code = "UNRESOLVED_REFERENCE"
	// OutputWrite: the serialized document could not be written. Fatal.
	OutputWrite Code = "OUTPUT_WRITE"
	// ConfigConflict: two configuration options contradict each other. Fatal.
	ConfigConflict Code = "CONFIG_CONFLICT"
)

// Fatal reports whether errors of this code abort the run with no output,
// per the error handling design's fatal/local/silent split.
func (c Code) Fatal() bool {
	switch c {
	case MalformedIndex, UnsupportedSchema, OutputWrite, ConfigConflict:
		return true
	default:
		return false
	}
}

// ExitCode maps a code to the process exit code cmd/transcode uses:
// 2 for index decoding failures, 3 for I/O failures (OutputWrite, and
// also the local IoRead and ParseFailed codes), 4 for configuration
// conflicts. The silent codes return 0.
func (c Code) ExitCode() int {
	switch c {
	case MalformedIndex, UnsupportedSchema:
		return 2
	case OutputWrite, IoRead, ParseFailed:
		return 3
	case ConfigConflict:
		return 4
	default:
		return 0
	}
}

// Error is a pipeline failure tagged with a stable Code and the operation
// that raised it, wrapping the underlying cause when there is one.
type Error struct {
	Code  Code
	Op    string // e.g. "scipindex.Decode", "sourcecache.Get"
	Path  string // file or index path involved, when relevant
	cause error
}

// New creates an Error with no underlying cause.
func New(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, cause: errString(msg)}
}

// Wrap attaches a Code and Op to an underlying error.
func Wrap(code Code, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, cause: err}
}

// WithPath records the file or index path the error occurred on.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s (%s): %v", e.Code, e.Op, e.Path, e.cause)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Op, e.cause)
}

// Unwrap returns the underlying cause so errors.Is/errors.As see through it.
func (e *Error) Unwrap() error {
	return e.cause
}

type errString string

func (e errString) Error() string { return string(e) }
