package proc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/automaker/agentexec/internal/errors"
)

const (
	// DefaultIdleTimeout is the liveness window used when Spec.IdleTimeout
	// is zero. Time is measured since the last stdout line, not total
	// runtime, so a long-running but chatty process never trips it.
	DefaultIdleTimeout = 30 * time.Second

	// maxScanTokenSize is the maximum buffer size for reading output lines.
	maxScanTokenSize = 1024 * 1024 // 1MB

	// maxStderrBufferSize caps the accumulated stderr buffer. Stderr reading
	// continues past the cap (callbacks still receive lines), but the buffer
	// stops growing to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB

	// killGracePeriod is how long a terminated process gets to exit before
	// it is forcibly killed.
	killGracePeriod = 5 * time.Second
)

// Spec describes one subprocess invocation. It is immutable once passed to New.
type Spec struct {
	// Command is the executable name or path.
	Command string

	// Args are passed verbatim; no shell interpretation occurs.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds environment overrides layered onto the parent environment.
	Env map[string]string

	// Input, when non-nil, is written to the child's stdin which is then
	// half-closed. When nil, stdin is not connected at all: some agent CLIs
	// hang waiting for input if stdin is left open but unwritten.
	Input *string

	// IdleTimeout is the liveness window. Zero means DefaultIdleTimeout;
	// negative disables the check.
	IdleTimeout time.Duration

	// StderrLine, if set, receives each stderr line as it arrives.
	StderrLine func(string)

	// MaxLineSize overrides the stdout line buffer size. Zero means
	// maxScanTokenSize.
	MaxLineSize int
}

// idleTimeout returns the effective liveness window, or 0 when disabled.
func (s Spec) idleTimeout() time.Duration {
	switch {
	case s.IdleTimeout < 0:
		return 0
	case s.IdleTimeout == 0:
		return DefaultIdleTimeout
	default:
		return s.IdleTimeout
	}
}

// Process is a single agent CLI subprocess. It is single-use: create with
// New, Start once, consume Records once.
type Process struct {
	log    *slog.Logger
	spec   Spec
	runID  string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	mu          sync.Mutex // Protects the fields below; never held across stdin writes
	started     bool
	closing     bool // Close() was called (intentional shutdown)
	stdinClosed bool
	terminated  bool        // A termination signal has been sent
	timedOut    bool        // Termination was caused by the idle timeout
	killTimer   *time.Timer // Pending SIGKILL escalation after Terminate
}

// New creates a process for the given spec. Every process gets a ULID run
// identifier that tags all of its log output.
func New(log *slog.Logger, spec Spec) *Process {
	runID := ulid.Make().String()

	return &Process{
		log:   log.With("component", "proc", "run_id", runID),
		spec:  spec,
		runID: runID,
	}
}

// RunID returns the process's unique run identifier.
func (p *Process) RunID() string {
	return p.runID
}

// Start spawns the subprocess and wires up its pipes.
//
// The context cancels the process: cancellation sends a termination signal
// and, after a grace period, a forced kill. If the context is already
// cancelled, Start returns its error and no process is left running.
//
// Returns SpawnError if the process could not be created (bad command,
// missing working directory, permission denied).
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.ErrAlreadyStarted
	}

	if p.spec.Command == "" {
		return &errors.SpawnError{Command: "", Err: stderrors.New("empty command")}
	}

	p.log.Info("Starting agent subprocess", "command", p.spec.Command, "dir", p.spec.Dir)

	//nolint:gosec // G204: spawning caller-supplied commands is the purpose of this package
	cmd := exec.CommandContext(ctx, p.spec.Command, p.spec.Args...)
	cmd.Dir = p.spec.Dir
	cmd.Env = buildEnv(p.spec.Env)

	// Graceful cancellation: ask the process to terminate, escalate to a
	// forced kill if it ignores the request for longer than the grace period.
	cmd.Cancel = func() error {
		return p.terminate()
	}
	cmd.WaitDelay = killGracePeriod

	if p.spec.Input != nil {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return &errors.SpawnError{Command: p.spec.Command, Err: fmt.Errorf("stdin pipe: %w", err)}
		}

		p.stdin = stdin
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &errors.SpawnError{Command: p.spec.Command, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	p.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &errors.SpawnError{Command: p.spec.Command, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	p.stderr = stderr

	if err := cmd.Start(); err != nil {
		p.log.Error("Failed to start subprocess", "error", err)

		return &errors.SpawnError{Command: p.spec.Command, Err: err}
	}

	p.cmd = cmd
	p.started = true
	p.log.Info("Agent subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// Records reads JSONL records from the subprocess stdout.
//
// This method starts goroutines that read line-delimited JSON from stdout
// and accumulate stderr for diagnostics. Each stdout line is parsed and sent
// to the record channel; a line that fails to parse produces a synthesized
// error record instead and does not stop the stream.
//
// The stream ends when the process exits or is killed:
//   - exit code 0: the record channel closes with no trailing record
//   - non-zero or signal-killed exit: one final error record carrying the
//     accumulated stderr (or a generic exit message) precedes the close
//   - idle-timeout kill: the final record's message names the inactivity
//     window instead of the exit code
//
// Context cancellation and unrecoverable read errors are reported on the
// error channel. Both channels are closed when reading completes.
func (p *Process) Records(ctx context.Context) (<-chan Record, <-chan error) {
	records := make(chan Record)
	errs := make(chan error, 1)

	var (
		stderrWg     sync.WaitGroup
		stderrBuffer strings.Builder
		stderrMu     sync.Mutex
	)

	// Stderr must be fully read before Wait(); see os/exec.Cmd.StderrPipe.
	// When the process is killed, the OS closes the pipe and unblocks Scan().
	stderrWg.Go(func() {
		scanner := bufio.NewScanner(p.stderr)
		for scanner.Scan() {
			line := scanner.Text()

			stderrMu.Lock()

			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			if p.spec.StderrLine != nil {
				p.spec.StderrLine(line)
			}
		}

		if err := scanner.Err(); err != nil {
			p.log.Debug("Stderr scanner error", "error", err)
		}
	})

	go func() {
		defer close(records)
		defer close(errs)
		defer p.log.Debug("Record reader stopped")

		// reap finishes the process on early exits (cancellation, blocked
		// send). The context kill plus WaitDelay bound how long this blocks.
		reap := func() {
			stderrWg.Wait()
			_ = p.cmd.Wait()
			p.stopKillTimer()
		}

		// Liveness timer: rearmed on every line, fires when the process has
		// been silent for the whole idle window.
		var idleTimer *time.Timer

		if idle := p.spec.idleTimeout(); idle > 0 {
			idleTimer = time.AfterFunc(idle, func() {
				p.log.Warn("Idle timeout expired, terminating process", "idle_timeout", idle)
				p.terminateIdle()
			})
			defer idleTimer.Stop()
		}

		scanner := bufio.NewScanner(p.stdout)

		bufSize := p.spec.MaxLineSize
		if bufSize <= 0 {
			bufSize = maxScanTokenSize
		}

		scanner.Buffer(make([]byte, bufSize), bufSize)

		recordCount := 0

		for scanner.Scan() {
			if idleTimer != nil {
				idleTimer.Reset(p.spec.idleTimeout())
			}

			select {
			case <-ctx.Done():
				p.log.Debug("Context cancelled during scan", "error", ctx.Err())

				errs <- ctx.Err()

				reap()

				return
			default:
			}

			line := scanner.Bytes()

			var rec Record

			if err := json.Unmarshal(line, &rec); err != nil {
				decodeErr := &errors.JSONDecodeError{RawData: string(line), Err: err}
				p.log.Debug("Failed to decode JSONL line", "error", err, "line", string(line))

				// Malformed lines are reported in-band so the caller keeps
				// its position in the stream.
				select {
				case records <- ErrorRecord(decodeErr.Error()):
				case <-ctx.Done():
					errs <- ctx.Err()

					reap()

					return
				}

				continue
			}

			recordCount++
			p.log.Debug("Received record", "record_count", recordCount, "type", rec.Type())

			select {
			case records <- rec:
			case <-ctx.Done():
				p.log.Debug("Context cancelled during record send", "error", ctx.Err())

				errs <- ctx.Err()

				reap()

				return
			}
		}

		// The process is exiting: no more output can arrive, so the liveness
		// check is over regardless of how long the exit takes.
		if idleTimer != nil {
			idleTimer.Stop()
		}

		if err := scanner.Err(); err != nil {
			p.log.Error("Scanner error while reading subprocess output", "error", err)

			errs <- fmt.Errorf("scanner error: %w", err)

			// The stream is unreadable but the child may still be running
			// (an over-long line leaves the pipe mid-stream). Terminate it
			// so reap's Wait is bounded by the kill escalation.
			_ = p.terminate()

			reap()

			return
		}

		// Stderr reads must complete before Wait()
		stderrWg.Wait()

		p.log.Debug("Waiting for subprocess to exit")

		err := p.cmd.Wait()
		p.stopKillTimer()

		if err == nil {
			p.log.Info("Subprocess exited successfully")

			return
		}

		p.mu.Lock()
		isClosing := p.closing
		isTimedOut := p.timedOut
		p.mu.Unlock()

		if isClosing {
			p.log.Debug("Subprocess terminated during shutdown")

			return
		}

		if ctx.Err() != nil {
			// Cancellation is surfaced as an error, not a record.
			errs <- ctx.Err()

			return
		}

		stderrMu.Lock()
		stderrOutput := cleanStderr(stderrBuffer.String())
		stderrMu.Unlock()

		exitCode := exitCodeFrom(err, p.cmd.ProcessState)

		var failure error

		if isTimedOut {
			failure = &errors.IdleTimeoutError{Timeout: p.spec.idleTimeout(), Stderr: stderrOutput}
		} else {
			failure = &errors.ProcessError{ExitCode: exitCode, Stderr: stderrOutput, Err: err}
		}

		p.log.Error("Subprocess exited with error",
			"exit_code", exitCode, "timed_out", isTimedOut, "stderr", stderrOutput)

		// Process failure is folded into the record stream as one final
		// error record; the stream then ends.
		select {
		case records <- ErrorRecord(failure.Error()):
		case <-ctx.Done():
			errs <- ctx.Err()
		}
	}()

	return records, errs
}

// TimedOut reports whether the process was terminated by the idle timeout.
func (p *Process) TimedOut() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.timedOut
}

// WriteInput writes the given payload to the child's stdin. It respects
// context cancellation even during a blocked write by closing stdin to
// unblock the writer.
//
// The write itself runs without holding the process mutex: a child that
// never drains its stdin pipe must not be able to block termination.
func (p *Process) WriteInput(ctx context.Context, data []byte) error {
	p.mu.Lock()

	if p.stdin == nil {
		p.mu.Unlock()

		return errors.ErrNoInput
	}

	if p.stdinClosed {
		p.mu.Unlock()

		return errors.ErrInputClosed
	}

	stdin := p.stdin
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p.log.Debug("Writing input payload", "bytes", len(data))

	done := make(chan error, 1)

	go func() {
		_, err := stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		p.log.Debug("Context cancelled during input write, closing stdin")

		p.closeStdin()

		// Wait briefly for the writer goroutine to observe the close
		select {
		case <-done:
		case <-time.After(1 * time.Second):
			p.log.Warn("Input writer did not exit after stdin close")
		}

		return ctx.Err()
	}
}

// closeStdin closes the child's stdin at most once.
func (p *Process) closeStdin() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin != nil && !p.stdinClosed {
		_ = p.stdin.Close()
		p.stdinClosed = true
	}
}

// CloseInput half-closes the child's stdin, signalling that no more input
// will arrive. Safe to call more than once.
func (p *Process) CloseInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin != nil && !p.stdinClosed {
		p.log.Debug("Half-closing stdin")

		err := p.stdin.Close()
		p.stdinClosed = true

		return err
	}

	return nil
}

// terminateIdle marks the process as timed out and sends the termination
// signal. Called from the idle timer goroutine.
func (p *Process) terminateIdle() {
	p.mu.Lock()
	p.timedOut = true
	p.mu.Unlock()

	_ = p.terminate()
}

// terminate asks the process to exit and arms a forced kill for the grace
// period. It is idempotent: the signal is sent at most once, and calling it
// on an already-exited process is not an error.
func (p *Process) terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.terminated || p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	p.terminated = true
	p.log.Debug("Sending termination signal", "pid", p.cmd.Process.Pid)

	if err := terminateProcess(p.cmd.Process); err != nil {
		if stderrors.Is(err, os.ErrProcessDone) {
			return nil
		}

		// Signal delivery failed, fall back to a hard kill
		p.log.Debug("Termination signal failed, killing", "error", err)

		return killIgnoringDone(p.cmd.Process)
	}

	proc := p.cmd.Process
	p.killTimer = time.AfterFunc(killGracePeriod, func() {
		p.log.Warn("Process ignored termination signal, killing", "pid", proc.Pid)

		_ = killIgnoringDone(proc)
	})

	return nil
}

// stopKillTimer cancels a pending forced-kill escalation.
func (p *Process) stopKillTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
}

// Close terminates the subprocess immediately. It's safe to call Close
// multiple times or on an already-exited process.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closing = true
	p.stdinClosed = true

	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}

	if p.cmd != nil && p.cmd.Process != nil {
		p.log.Debug("Killing subprocess", "pid", p.cmd.Process.Pid)

		if err := killIgnoringDone(p.cmd.Process); err != nil {
			return fmt.Errorf("kill subprocess (pid %d): %w", p.cmd.Process.Pid, err)
		}
	}

	return nil
}

// killIgnoringDone force-kills a process, treating "already exited" as success.
func killIgnoringDone(proc *os.Process) error {
	if err := proc.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return err
	}

	return nil
}

// buildEnv layers the overrides onto the parent environment.
func buildEnv(overrides map[string]string) []string {
	env := os.Environ()
	env = append(env, "AUTOMAKER_ENTRYPOINT=agentexec")

	for key, value := range overrides {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}

// exitCodeFrom extracts the exit code from a Wait error and process state.
// Returns -1 when the process was killed by a signal.
func exitCodeFrom(waitErr error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}

	if waitErr == nil {
		return 0
	}

	if exitErr, ok := stderrors.AsType[*exec.ExitError](waitErr); ok && exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode()
	}

	return -1
}

// Result holds the accumulated output of a collect-all invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Collect runs the spec to completion and returns its accumulated output.
// This is the degenerate variant of the streaming runner: no line parsing
// and no idle timeout, but the same cancellation and teardown contract.
//
// On non-zero exit the Result is still populated and the error is a
// ProcessError carrying the stderr text. On cancellation the context error
// is returned.
func Collect(ctx context.Context, log *slog.Logger, spec Spec) (*Result, error) {
	runID := ulid.Make().String()
	log = log.With("component", "proc", "run_id", runID)

	if spec.Command == "" {
		return nil, &errors.SpawnError{Command: "", Err: stderrors.New("empty command")}
	}

	log.Info("Collecting agent subprocess output", "command", spec.Command, "dir", spec.Dir)

	//nolint:gosec // G204: spawning caller-supplied commands is the purpose of this package
	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = buildEnv(spec.Env)
	cmd.WaitDelay = killGracePeriod

	cmd.Cancel = func() error {
		if err := terminateProcess(cmd.Process); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			return killIgnoringDone(cmd.Process)
		}

		return nil
	}

	if spec.Input != nil {
		// exec half-closes stdin after the reader drains
		cmd.Stdin = strings.NewReader(*spec.Input)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start subprocess", "error", err)

		return nil, &errors.SpawnError{Command: spec.Command, Err: err}
	}

	err := cmd.Wait()

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCodeFrom(err, cmd.ProcessState),
	}

	if ctx.Err() != nil {
		log.Debug("Collect cancelled", "error", ctx.Err())

		return res, ctx.Err()
	}

	if err != nil {
		log.Error("Subprocess exited with error", "exit_code", res.ExitCode, "stderr", res.Stderr)

		return res, &errors.ProcessError{
			ExitCode: res.ExitCode,
			Stderr:   cleanStderr(res.Stderr),
			Err:      err,
		}
	}

	log.Info("Subprocess exited successfully")

	return res, nil
}
