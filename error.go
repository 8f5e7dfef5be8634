package cli

import "fmt"

// NewError creates a new error with the given error code and error.
func NewError(code ErrorCode, err error) error {
	return &Error{code: code, err: err}
}

// ErrorCode represents an error code for a specific error type.
type ErrorCode int

const (
	// ErrShowHelp is returned when help was explicitly requested with -h or --help.
	ErrShowHelp ErrorCode = iota + 1
	// ErrNoCommand is returned when the selected command only groups subcommands and none was
	// given.
	ErrNoCommand
)

func (c ErrorCode) String() string {
	switch c {
	case ErrShowHelp:
		return "show help"
	case ErrNoCommand:
		return "no command"
	default:
		return "unknown error"
	}
}

// Error represents an error with an error code and an underlying error. It also records the command
// that was selected when the error occurred, so callers can print the right usage text.
type Error struct {
	code    ErrorCode
	err     error
	command *Command
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return e.code.String() + ": <nil>"
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Command returns the command that was selected when the error occurred. May be nil.
func (e *Error) Command() *Command {
	return e.command
}

// NoExecError is returned when a leaf command has no execution function.
type NoExecError struct {
	Command *Command
}

func (e *NoExecError) Error() string {
	return fmt.Sprintf("command %q has no execution function", e.Command.Path())
}
