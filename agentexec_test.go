package agentexec

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// shRequest builds a request that runs a shell script as the child process.
func shRequest(t *testing.T, script string) Request {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("tests use /bin/sh child processes")
	}

	return Request{
		Command: "/bin/sh",
		Args:    []string{"-c", script},
	}
}

// run consumes the whole stream, failing the test on any fatal error.
func run(t *testing.T, req Request, opts ...Option) []Record {
	t.Helper()

	var recs []Record

	for rec, err := range Stream(t.Context(), req, opts...) {
		require.NoError(t, err)

		recs = append(recs, rec)
	}

	return recs
}

func TestStream_EmitterScenario(t *testing.T) {
	req := shRequest(t, `printf '{"n":1}\n{"n":2}\n{"n":3}\n'`)

	recs := run(t, req)
	require.Len(t, recs, 3)

	for i, rec := range recs {
		require.False(t, rec.IsError())
		require.Equal(t, float64(i+1), rec["n"])
	}
}

func TestStream_OrderingAcrossManyLines(t *testing.T) {
	const n = 200

	script := "i=1; while [ $i -le " + fmt.Sprint(n) + ` ]; do echo "{\"seq\":$i}"; i=$((i+1)); done`
	recs := run(t, shRequest(t, script))

	require.Len(t, recs, n)

	for i, rec := range recs {
		require.Equal(t, float64(i+1), rec["seq"])
	}
}

func TestStream_MalformedLineResilience(t *testing.T) {
	req := shRequest(t, `printf '{"ok":1}\ngarbage line\n{"ok":2}\n'`)

	recs := run(t, req)
	require.Len(t, recs, 3)
	require.False(t, recs[0].IsError())
	require.True(t, recs[1].IsError())
	require.Contains(t, recs[1].ErrorText(), "garbage line")
	require.False(t, recs[2].IsError())
}

func TestStream_IdleTimeout(t *testing.T) {
	req := shRequest(t, `exec sleep 30`)
	req.IdleTimeout = 200 * time.Millisecond

	start := time.Now()
	recs := run(t, req)

	require.Less(t, time.Since(start), 15*time.Second)
	require.Len(t, recs, 1)
	require.True(t, recs[0].IsError())
	require.Contains(t, recs[0].ErrorText(), "inactivity")
}

func TestStream_IdleTimerRearms(t *testing.T) {
	// Output every ~100ms against a 500ms window: the run outlives several
	// idle windows without tripping the timeout.
	req := shRequest(t, `for i in 1 2 3 4 5; do echo "{\"n\":$i}"; sleep 0.1; done`)
	req.IdleTimeout = 500 * time.Millisecond

	recs := run(t, req)
	require.Len(t, recs, 5)

	for _, rec := range recs {
		require.False(t, rec.IsError())
	}
}

func TestStream_AlreadyCancelledContext(t *testing.T) {
	req := shRequest(t, `echo '{"never":true}'`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var (
		recs []Record
		errs []error
	)

	for rec, err := range Stream(ctx, req) {
		if err != nil {
			errs = append(errs, err)

			continue
		}

		recs = append(recs, rec)
	}

	require.Empty(t, recs)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], context.Canceled)
}

func TestStream_CancellationMidStream(t *testing.T) {
	req := shRequest(t, `echo '{"first":true}'; exec sleep 30`)
	req.IdleTimeout = -1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		successes int
		finalErr  error
	)

	for rec, err := range Stream(ctx, req) {
		if err != nil {
			finalErr = err

			break
		}

		if !rec.IsError() {
			successes++
		}

		cancel()
	}

	require.Equal(t, 1, successes)
	require.ErrorIs(t, finalErr, context.Canceled)
}

func TestStream_ExitCodeAndStderrPropagation(t *testing.T) {
	req := shRequest(t, `echo '{"ok":1}'; echo boom >&2; exit 7`)

	recs := run(t, req)
	require.Len(t, recs, 2)

	final := recs[1]
	require.True(t, final.IsError())
	require.Contains(t, final.ErrorText(), "boom")
}

func TestStream_CleanExitHasNoTrailingRecord(t *testing.T) {
	req := shRequest(t, `echo '{"done":true}'`)

	recs := run(t, req)
	require.Len(t, recs, 1)
	require.False(t, recs[0].IsError())
}

func TestStream_SpawnFailureYieldsErrorNotRecord(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tests use unix path semantics")
	}

	req := Request{Command: "/nonexistent/agent-cli"}

	var (
		recs []Record
		errs []error
	)

	for rec, err := range Stream(context.Background(), req) {
		if err != nil {
			errs = append(errs, err)

			continue
		}

		recs = append(recs, rec)
	}

	require.Empty(t, recs)
	require.Len(t, errs, 1)

	var spawnErr *SpawnError

	require.ErrorAs(t, errs[0], &spawnErr)
}

func TestStream_InputPayloadHalfClose(t *testing.T) {
	req := shRequest(t, `cat`)
	input := `{"a":1}` + "\n" + `{"b":2}` + "\n"
	req.Input = &input

	recs := run(t, req)
	require.Len(t, recs, 2)
	require.Equal(t, float64(1), recs[0]["a"])
	require.Equal(t, float64(2), recs[1]["b"])
}

func TestStream_OversizedLineAbortsStream(t *testing.T) {
	long := strings.Repeat("x", 4096)
	req := shRequest(t, `echo `+long+`; exec sleep 30`)
	req.IdleTimeout = -1

	start := time.Now()

	var fatal error

	for _, err := range Stream(t.Context(), req, WithMaxLineSize(256)) {
		if err != nil {
			fatal = err

			break
		}
	}

	require.Error(t, fatal)
	require.ErrorIs(t, fatal, bufio.ErrTooLong)
	require.Less(t, time.Since(start), 15*time.Second)
}

func TestStream_EarlyBreakTerminatesProcess(t *testing.T) {
	req := shRequest(t, `echo '{"first":true}'; exec sleep 30`)
	req.IdleTimeout = -1

	start := time.Now()

	for rec, err := range Stream(t.Context(), req) {
		require.NoError(t, err)
		require.False(t, rec.IsError())

		break
	}

	// Breaking out must not leave the iterator waiting out the full sleep.
	require.Less(t, time.Since(start), 15*time.Second)
}

func TestStream_StderrCallback(t *testing.T) {
	req := shRequest(t, `echo '{"ok":1}'; echo progress-note >&2`)

	lines := make(chan string, 4)
	recs := run(t, req, WithStderrLine(func(line string) { lines <- line }))

	require.Len(t, recs, 1)

	select {
	case line := <-lines:
		require.Equal(t, "progress-note", line)
	case <-time.After(5 * time.Second):
		t.Fatal("stderr callback never invoked")
	}
}

func TestStream_UnknownAgent(t *testing.T) {
	req := Request{Agent: "copilot"}

	var errs []error

	for _, err := range Stream(context.Background(), req) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "unknown agent")
}

func TestCollect_Success(t *testing.T) {
	req := shRequest(t, `echo out; echo err >&2`)

	res, err := Collect(t.Context(), req)
	require.NoError(t, err)
	require.Equal(t, "out\n", res.Stdout)
	require.Equal(t, "err\n", res.Stderr)
	require.Equal(t, 0, res.ExitCode)
}

func TestCollect_ProcessError(t *testing.T) {
	req := shRequest(t, `echo boom >&2; exit 5`)

	res, err := Collect(t.Context(), req)
	require.Error(t, err)

	var procErr *ProcessError

	require.ErrorAs(t, err, &procErr)
	require.Equal(t, 5, procErr.ExitCode)
	require.Contains(t, procErr.Stderr, "boom")
	require.NotNil(t, res)
	require.Equal(t, 5, res.ExitCode)
}

func TestCollect_Cancellation(t *testing.T) {
	req := shRequest(t, `exec sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()

	_, err := Collect(ctx, req)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 15*time.Second)
}

func TestDiscoverCLI_ExplicitPathMiss(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "claude")

	_, err := DiscoverCLI(context.Background(), AgentClaude, WithCLIPath(missing))
	require.Error(t, err)

	var notFound *CLINotFoundError

	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "claude", notFound.Agent)
	require.Equal(t, []string{missing}, notFound.SearchedPaths)
}

func TestDiscoverCLI_UnknownAgent(t *testing.T) {
	_, err := DiscoverCLI(context.Background(), "copilot")
	require.Error(t, err)
}
