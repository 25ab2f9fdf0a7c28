package agentexec

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/automaker/agentexec/internal/discover"
	sdkerrors "github.com/automaker/agentexec/internal/errors"
	"github.com/automaker/agentexec/internal/proc"
)

// buildSpec resolves a request into a process spec, running agent CLI
// discovery when the request names an agent instead of a command.
func buildSpec(
	ctx context.Context,
	log *slog.Logger,
	req Request,
	options *runOptions,
) (proc.Spec, error) {
	command := req.Command

	if command == "" && req.Agent != "" {
		agent, ok := discover.ByName(req.Agent)
		if !ok {
			return proc.Spec{}, fmt.Errorf("unknown agent %q", req.Agent)
		}

		d := discover.NewDiscoverer(agent, &discover.Config{
			Path:             options.cliPath,
			SkipVersionCheck: options.skipVersionCheck,
			Logger:           log,
		})

		path, err := d.Discover(ctx)
		if err != nil {
			return proc.Spec{}, fmt.Errorf("discover CLI: %w", err)
		}

		command = path
	}

	return proc.Spec{
		Command:     command,
		Args:        req.Args,
		Dir:         req.Dir,
		Env:         req.Env,
		Input:       req.Input,
		IdleTimeout: req.IdleTimeout,
		StderrLine:  options.stderrLine,
		MaxLineSize: options.maxLineSize,
	}, nil
}

// Stream executes the request and returns a lazy sequence of output records.
//
// The subprocess is spawned when Stream is called; each stdout line becomes
// one Record, in arrival order. The sequence is forward-only and
// non-restartable: consuming it drives the process, and breaking out of the
// loop terminates the process.
//
// Error Handling:
//
// Errors are yielded inline as the second return value. The sequence
// distinguishes recoverable from fatal conditions:
//
//   - A line that is not valid JSON yields a synthesized in-band error
//     Record (not an error) and the stream continues.
//
//   - A non-zero or signal-killed exit yields one final in-band error
//     Record carrying the accumulated stderr, then the sequence ends
//     cleanly. An idle-timeout kill is reported the same way, with the
//     inactivity window named in the record's message.
//
//   - Spawn failures, context cancellation, and read errors are yielded as
//     Go errors and end the sequence. A spawn failure is always the first
//     and only element: no stream was established.
func Stream(
	ctx context.Context,
	req Request,
	opts ...Option,
) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		options := applyOptions(opts)

		log := options.effectiveLogger().With("component", "stream")
		log.Debug("Starting streaming execution")

		// Early termination (caller break) must unblock the record producer
		// and kill the process.
		ctx, cancel := context.WithCancel(ctx)

		spec, err := buildSpec(ctx, log, req, options)
		if err != nil {
			cancel()
			yield(nil, err)

			return
		}

		p := proc.New(log, spec)

		if err := p.Start(ctx); err != nil {
			cancel()
			log.Error("Failed to start process", "error", err)
			yield(nil, err)

			return
		}

		defer p.Close()

		// Pump the input payload beside the read loop, then half-close
		// stdin so the child sees end of input.
		g, gCtx := errgroup.WithContext(ctx)

		if req.Input != nil {
			payload := []byte(*req.Input)

			g.Go(func() error {
				defer func() {
					if err := p.CloseInput(); err != nil {
						log.Debug("Failed to close stdin", "error", err)
					}
				}()

				return p.WriteInput(gCtx, payload)
			})
		}

		defer func() { _ = g.Wait() }()

		records, errs := p.Records(ctx)

		// Registered after g.Wait so it runs first: cancellation unblocks
		// both the input pump and the record producer.
		defer cancel()

		for rec := range records {
			if !yield(rec, nil) {
				log.Debug("Yield returned false, stopping iteration")

				return
			}
		}

		// The record channel closed: surface any fatal error. The error
		// channel is buffered and closed by the same producer, so this
		// never blocks.
		if err := <-errs; err != nil {
			log.Error("Stream failed", "error", err)
			yield(nil, err)

			return
		}

		if err := g.Wait(); err != nil &&
			!stderrors.Is(err, sdkerrors.ErrInputClosed) &&
			!stderrors.Is(err, context.Canceled) {
			yield(nil, fmt.Errorf("write input: %w", err))

			return
		}

		log.Debug("Stream completed")
	}
}

// Collect executes the request to completion and returns its accumulated
// output. This is the degenerate variant of Stream: no line parsing and no
// idle timeout, with the same spawn and cancellation contract.
//
// On a non-zero exit the Result is still populated and the error is a
// ProcessError carrying the stderr text. On cancellation the context error
// is returned.
func Collect(
	ctx context.Context,
	req Request,
	opts ...Option,
) (*Result, error) {
	options := applyOptions(opts)

	log := options.effectiveLogger().With("component", "collect")

	spec, err := buildSpec(ctx, log, req, options)
	if err != nil {
		return nil, err
	}

	return proc.Collect(ctx, log, spec)
}
