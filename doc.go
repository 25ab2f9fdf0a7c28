// Package agentexec runs AI coding-agent CLIs (Claude, Cursor) as
// subprocesses and streams their line-delimited JSON output.
//
// This is the execution core of Automaker. It isolates callers from raw
// process and pipe plumbing: a command is spawned with an explicit argument
// vector (never a shell), its stdout is decoded line-by-line as JSONL, and
// the records are exposed as a lazy sequence with liveness enforcement (an
// idle-output timeout) and cooperative cancellation via context.
//
// # Streaming
//
// Stream yields one Record per stdout line:
//
//	ctx := context.Background()
//	for rec, err := range agentexec.Stream(ctx, agentexec.Request{
//	    Command: "claude",
//	    Args:    []string{"-p", "fix the failing test", "--output-format", "stream-json"},
//	    Dir:     "/path/to/project",
//	}) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if rec.IsError() {
//	        log.Printf("agent error: %s", rec.ErrorText())
//	        continue
//	    }
//	    // handle rec["type"], rec["message"], ...
//	}
//
// A line that fails to parse yields a synthesized error record and the
// stream continues; a process that exits non-zero (or is killed by the idle
// timeout) yields one final error record carrying its stderr before the
// sequence ends. Spawn failures are yielded as typed Go errors and never
// produce records.
//
// # Collecting
//
// Collect is the degenerate variant for commands whose output is wanted
// whole: no line parsing, no idle timeout.
//
//	res, err := agentexec.Collect(ctx, agentexec.Request{
//	    Command: "git",
//	    Args:    []string{"status", "--porcelain"},
//	    Dir:     workdir,
//	})
//
// # Discovery
//
// Requests may name an agent instead of a command; the binary is then
// located on PATH and in common install directories:
//
//	for rec, err := range agentexec.Stream(ctx, agentexec.Request{
//	    Agent: agentexec.AgentClaude,
//	    Args:  []string{"-p", prompt, "--output-format", "stream-json"},
//	}) { ... }
//
// # Logging
//
// By default the package is silent. Use WithLogger for operation tracking;
// every run is tagged with a ULID run_id:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	agentexec.Stream(ctx, req, agentexec.WithLogger(logger))
//
// # Error Handling
//
// Typed errors cover the failure taxonomy:
//
//	res, err := agentexec.Collect(ctx, req)
//	if err != nil {
//	    if procErr, ok := errors.AsType[*agentexec.ProcessError](err); ok {
//	        log.Fatalf("exit %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    if _, ok := errors.AsType[*agentexec.CLINotFoundError](err); ok {
//	        log.Fatal("agent CLI not installed")
//	    }
//	    log.Fatal(err)
//	}
package agentexec
