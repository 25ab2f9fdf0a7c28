// Package errors defines error types for agent CLI execution.
//
// This package provides structured error types that wrap different failure
// scenarios when spawning and streaming from agent CLI subprocesses. All
// error types support error unwrapping and can be checked using errors.Is,
// errors.As, and errors.AsType.
package errors
