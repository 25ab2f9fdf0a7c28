// Package discover locates and validates agent CLI binaries.
//
// The Discoverer interface finds the binary for a known agent (Claude or
// Cursor):
//
//	d := discover.NewDiscoverer(discover.AgentClaude, &discover.Config{
//	    Path:   "",           // Optional explicit path
//	    Logger: slog.Default(),
//	})
//	cliPath, err := d.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.Path (if provided)
//  2. System PATH (with an .exe fallback under WSL)
//  3. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
//
// During discovery the CLI version is probed and compared against the
// agent's minimum supported version; an unsupported version logs a warning
// but does not fail discovery. The probe can be skipped via
// Config.SkipVersionCheck or the AUTOMAKER_SKIP_CLI_VERSION_CHECK
// environment variable.
package discover
