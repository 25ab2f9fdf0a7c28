package agentexec

import "log/slog"

// Option configures a Stream, Collect, or DiscoverCLI call using the
// functional options pattern.
type Option func(*runOptions)

// runOptions holds the per-call configuration that is not part of the
// invocation request itself.
type runOptions struct {
	logger           *slog.Logger
	stderrLine       func(string)
	maxLineSize      int
	cliPath          string
	skipVersionCheck bool
}

// applyOptions applies functional options to a runOptions struct.
func applyOptions(opts []Option) *runOptions {
	options := &runOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// effectiveLogger returns the configured logger or a silent one.
func (o *runOptions) effectiveLogger() *slog.Logger {
	if o.logger == nil {
		return NopLogger()
	}

	return o.logger
}

// WithLogger sets the logger for operation tracking.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// WithStderrLine registers a callback that receives each stderr line as it
// arrives. Stderr is accumulated for diagnostics regardless.
func WithStderrLine(fn func(string)) Option {
	return func(o *runOptions) {
		o.stderrLine = fn
	}
}

// WithMaxLineSize overrides the stdout line buffer size (default 1MB).
// Lines longer than this abort the stream with a scanner error.
func WithMaxLineSize(n int) Option {
	return func(o *runOptions) {
		o.maxLineSize = n
	}
}

// WithCLIPath sets an explicit agent CLI binary path, skipping discovery
// search. Only used when the request names an Agent.
func WithCLIPath(path string) Option {
	return func(o *runOptions) {
		o.cliPath = path
	}
}

// WithSkipVersionCheck disables the CLI version probe during discovery.
func WithSkipVersionCheck() Option {
	return func(o *runOptions) {
		o.skipVersionCheck = true
	}
}
