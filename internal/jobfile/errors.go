package jobfile

import (
	"errors"
	"fmt"
)

// Error codes carried by Error. A failed run exits with the code of the
// job file error that stopped it.
const (
	CodeBadPath      = 1
	CodeUnreadable   = 2
	CodeNoAssignment = 3
	CodeUnknownTag   = 4
	CodeDuplicateTag = 5
	CodeInvalidValue = 6
	CodeMissingTag   = 7
	CodeConflict     = 8
)

// Error describes why a job file could not be loaded.
type Error struct {
	Msg  string
	Code int
	// Line is the 1-based line number, or 0 when the problem is not tied to
	// a single line.
	Line int
	// Tag is the tag the problem concerns, if any.
	Tag Tag
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("%s @ line %d", msg, e.Line)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s; %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for e.
func (e *Error) ExitCode() int {
	return e.Code
}

// CodeOf returns the job file error code of err, or 0 if err is not a job
// file error.
func CodeOf(err error) int {
	var jerr *Error
	if errors.As(err, &jerr) {
		return jerr.Code
	}
	return 0
}

func lineError(code, line int, msg string) *Error {
	return &Error{Msg: msg, Code: code, Line: line}
}

func valueError(tag Tag, line int, err error) *Error {
	return &Error{
		Msg:  fmt.Sprintf("job file invalid (bad value for %s)", tag),
		Code: CodeInvalidValue,
		Line: line,
		Tag:  tag,
		Err:  err,
	}
}
