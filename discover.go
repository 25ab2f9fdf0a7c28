package agentexec

import (
	"context"

	"github.com/automaker/agentexec/internal/discover"
)

// Known agent names for Request.Agent.
const (
	// AgentClaude selects the Claude Code CLI.
	AgentClaude = "claude"

	// AgentCursor selects the Cursor CLI.
	AgentCursor = "cursor"
)

// DiscoverCLI locates the binary for a known agent without running it.
// Discovery searches an explicit path (WithCLIPath), then the system PATH
// (with an .exe fallback under WSL), then common install directories, and
// probes the binary's version against the agent's supported minimum.
//
// Returns CLINotFoundError if the binary cannot be located.
func DiscoverCLI(ctx context.Context, agent string, opts ...Option) (string, error) {
	options := applyOptions(opts)

	a, ok := discover.ByName(agent)
	if !ok {
		return "", &CLINotFoundError{Agent: agent, SearchedPaths: nil}
	}

	d := discover.NewDiscoverer(a, &discover.Config{
		Path:             options.cliPath,
		SkipVersionCheck: options.skipVersionCheck,
		Logger:           options.effectiveLogger(),
	})

	return d.Discover(ctx)
}

// IsWSL reports whether the current environment is Windows Subsystem for
// Linux. Discovery uses this to consider Windows-side agent installs.
func IsWSL() bool {
	return discover.IsWSL()
}
