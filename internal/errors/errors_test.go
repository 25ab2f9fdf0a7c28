package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCLINotFoundError(t *testing.T) {
	err := &CLINotFoundError{
		Agent:         "claude",
		SearchedPaths: []string{"/usr/bin/claude", "/opt/bin/claude"},
	}

	require.Equal(
		t,
		"claude CLI not found in: [/usr/bin/claude /opt/bin/claude]",
		err.Error(),
	)
	require.True(t, err.IsAgentExecError())
}

func TestSpawnError(t *testing.T) {
	root := errors.New("no such file or directory")
	err := &SpawnError{Command: "claude", Err: root}

	require.Equal(t, `failed to spawn "claude": no such file or directory`, err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsAgentExecError())
}

func TestProcessError_WithStderr(t *testing.T) {
	err := &ProcessError{
		ExitCode: 2,
		Stderr:   "permission denied",
	}

	require.Equal(t, "process failed (exit 2): permission denied", err.Error())
	require.NoError(t, err.Unwrap())
	require.True(t, err.IsAgentExecError())
}

func TestProcessError_WithoutStderr(t *testing.T) {
	root := errors.New("exit status 7")
	err := &ProcessError{ExitCode: 7, Err: root}

	require.Equal(t, "process exited with code 7", err.Error())
	require.ErrorIs(t, err, root)
}

func TestJSONDecodeError(t *testing.T) {
	root := errors.New("invalid character 'n'")
	err := &JSONDecodeError{RawData: "not-json", Err: root}

	require.Equal(t, "failed to decode JSON line: invalid character 'n': not-json", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsAgentExecError())
}

func TestIdleTimeoutError(t *testing.T) {
	err := &IdleTimeoutError{Timeout: 30 * time.Second}

	require.Equal(t, "process terminated after 30s of inactivity", err.Error())
	require.True(t, err.IsAgentExecError())

	withStderr := &IdleTimeoutError{Timeout: time.Second, Stderr: "stuck on network"}
	require.Equal(t, "process terminated after 1s of inactivity: stuck on network", withStderr.Error())
}
