package errors

import (
	"errors"
	"fmt"
	"time"
)

// AgentExecError is the base interface for all agentexec errors.
type AgentExecError interface {
	error
	IsAgentExecError() bool
}

// Compile-time verification that all error types implement AgentExecError.
var (
	_ AgentExecError = (*CLINotFoundError)(nil)
	_ AgentExecError = (*SpawnError)(nil)
	_ AgentExecError = (*ProcessError)(nil)
	_ AgentExecError = (*JSONDecodeError)(nil)
	_ AgentExecError = (*IdleTimeoutError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrAlreadyStarted indicates Start was called twice on the same process.
	ErrAlreadyStarted = errors.New("process already started: processes are single-use")

	// ErrInputClosed indicates stdin was already closed.
	ErrInputClosed = errors.New("input closed")

	// ErrNoInput indicates an input write was attempted on a process whose
	// stdin was never connected.
	ErrNoInput = errors.New("stdin not connected")
)

// CLINotFoundError indicates an agent CLI binary was not found.
type CLINotFoundError struct {
	Agent         string
	SearchedPaths []string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("%s CLI not found in: %v", e.Agent, e.SearchedPaths)
}

// IsAgentExecError implements AgentExecError.
func (e *CLINotFoundError) IsAgentExecError() bool { return true }

// SpawnError indicates the subprocess could not be created. The caller never
// receives any output records when this is returned.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsAgentExecError implements AgentExecError.
func (e *SpawnError) IsAgentExecError() bool { return true }

// ProcessError indicates the subprocess exited with a non-zero status or was
// killed by a signal.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process failed (exit %d): %s", e.ExitCode, e.Stderr)
	}

	return fmt.Sprintf("process exited with code %d", e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsAgentExecError implements AgentExecError.
func (e *ProcessError) IsAgentExecError() bool { return true }

// JSONDecodeError indicates a single output line was not valid JSON.
// This error preserves the original raw line that failed to parse.
// It is recoverable: the stream continues with the next line.
type JSONDecodeError struct {
	RawData string
	Err     error
}

func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON line: %v: %s", e.Err, e.RawData)
}

func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}

// IsAgentExecError implements AgentExecError.
func (e *JSONDecodeError) IsAgentExecError() bool { return true }

// IdleTimeoutError indicates the process was terminated because it produced
// no output for longer than the configured idle timeout.
type IdleTimeoutError struct {
	Timeout time.Duration
	Stderr  string
}

func (e *IdleTimeoutError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process terminated after %s of inactivity: %s", e.Timeout, e.Stderr)
	}

	return fmt.Sprintf("process terminated after %s of inactivity", e.Timeout)
}

// IsAgentExecError implements AgentExecError.
func (e *IdleTimeoutError) IsAgentExecError() bool { return true }
