package cli

import (
	"errors"
	"fmt"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// Exit codes returned by the costkatana command.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps err to a process exit code. Invalid input and invalid
// configuration exit with ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		cfgErr   *ConfigError
		fieldErr config.ValidationError
		inputErr *usage.ValidationError
		queryErr *usage.QueryError
	)
	switch {
	case errors.As(err, &cfgErr),
		errors.As(err, &fieldErr),
		errors.As(err, &inputErr),
		errors.As(err, &queryErr):
		return ExitUsage
	default:
		return ExitFailure
	}
}
