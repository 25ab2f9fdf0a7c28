package agentexec

import "github.com/automaker/agentexec/internal/errors"

// Re-export error types from internal package

// CLINotFoundError indicates an agent CLI binary was not found.
type CLINotFoundError = errors.CLINotFoundError

// SpawnError indicates the subprocess could not be created.
type SpawnError = errors.SpawnError

// ProcessError indicates the subprocess exited with a non-zero status or
// was killed by a signal.
type ProcessError = errors.ProcessError

// JSONDecodeError indicates a single output line was not valid JSON.
type JSONDecodeError = errors.JSONDecodeError

// IdleTimeoutError indicates the process was terminated for producing no
// output within the idle timeout.
type IdleTimeoutError = errors.IdleTimeoutError

// AgentExecError is the base interface for all agentexec errors.
type AgentExecError = errors.AgentExecError

// Re-export sentinel errors from internal package.
var (
	// ErrAlreadyStarted indicates Start was called twice on the same process.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrInputClosed indicates stdin was already closed.
	ErrInputClosed = errors.ErrInputClosed

	// ErrNoInput indicates an input write was attempted on a process whose
	// stdin was never connected.
	ErrNoInput = errors.ErrNoInput
)
