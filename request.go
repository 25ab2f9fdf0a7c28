package agentexec

import (
	"time"

	"github.com/automaker/agentexec/internal/proc"
)

// Record is one parsed line of subprocess output: an independent JSON
// document decoded into a map. Use IsError and ErrorText to inspect error
// records (synthesized or agent-emitted).
type Record = proc.Record

// Result holds the accumulated output of a Collect invocation.
type Result = proc.Result

// DefaultIdleTimeout is the liveness window used when Request.IdleTimeout
// is zero.
const DefaultIdleTimeout = proc.DefaultIdleTimeout

// Request describes one agent CLI invocation. It is immutable once passed
// to Stream or Collect.
type Request struct {
	// Agent names a known agent CLI ("claude", "cursor") to locate via
	// discovery. Ignored when Command is set.
	Agent string

	// Command is the executable name or path to run. When empty, the Agent
	// binary is discovered instead.
	Command string

	// Args are passed verbatim to the process; no shell interpretation.
	Args []string

	// Dir is the working directory. Empty means the current directory; a
	// directory that does not exist fails the spawn.
	Dir string

	// Env holds environment overrides layered onto the parent environment.
	Env map[string]string

	// Input, when non-nil, is written to the child's stdin which is then
	// half-closed. When nil, stdin is not connected at all. The distinction
	// matters: some agent CLIs hang waiting for input if stdin is left open
	// but unwritten.
	Input *string

	// IdleTimeout is the liveness window for Stream, measured since the
	// last output line (not total runtime). Zero means DefaultIdleTimeout;
	// negative disables the check. Collect ignores it.
	IdleTimeout time.Duration
}
