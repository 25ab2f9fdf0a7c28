// Package proc runs agent CLI subprocesses and streams their JSONL output.
//
// This package owns the process lifecycle: spawning with an explicit argv
// (never a shell), stdin half-close for input payloads, line-by-line JSON
// decoding of stdout, capped stderr accumulation for diagnostics, and
// liveness enforcement via an idle-output timeout.
package proc
