package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is matched by errors.Is for any *UnknownCommandError.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMissingPermission is returned before any side effect when the
	// invoker is not an administrator.
	ErrMissingPermission = errors.New("missing administrator permission")
)

// UnknownCommandError names the command that was not found.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("command %q is not found", e.Name)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// InputError is a malformed invocation. Message is shown to the user as is,
// followed by the usage of Command.
type InputError struct {
	Command string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func inputErrorf(command, format string, args ...any) error {
	return &InputError{Command: command, Message: fmt.Sprintf(format, args...)}
}
