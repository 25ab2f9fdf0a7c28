package discover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/automaker/agentexec/internal/errors"
)

// VersionCheckTimeout is the timeout for the CLI version probe.
const VersionCheckTimeout = 2 * time.Second

// skipVersionCheckEnv disables the version probe when set.
const skipVersionCheckEnv = "AUTOMAKER_SKIP_CLI_VERSION_CHECK"

// Agent identifies a supported agent CLI and how to find and probe it.
type Agent struct {
	// Name is the agent identifier ("claude", "cursor").
	Name string

	// Binary is the executable name searched for in PATH.
	Binary string

	// MinVersion is the minimum supported CLI version. Older versions log
	// a warning but are still used.
	MinVersion string
}

// Known agents.
var (
	// AgentClaude is the Claude Code CLI.
	AgentClaude = Agent{Name: "claude", Binary: "claude", MinVersion: "2.0.0"}

	// AgentCursor is the Cursor CLI.
	AgentCursor = Agent{Name: "cursor", Binary: "cursor-agent", MinVersion: "1.0.0"}
)

// ByName returns the known agent with the given name, or false.
func ByName(name string) (Agent, bool) {
	switch name {
	case AgentClaude.Name:
		return AgentClaude, true
	case AgentCursor.Name:
		return AgentCursor, true
	default:
		return Agent{}, false
	}
}

// Config holds configuration for CLI discovery.
type Config struct {
	// Path is an explicit CLI path that skips PATH search.
	Path string

	// SkipVersionCheck skips version validation during discovery.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and validates an agent CLI binary.
type Discoverer interface {
	// Discover locates the agent CLI binary and probes its version.
	// Returns the path to the CLI binary or an error.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	agent Agent
	cfg   *Config
	log   *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a discoverer for the given agent.
func NewDiscoverer(agent Agent, cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		agent: agent,
		cfg:   cfg,
		log:   log.With("component", "discover", "agent", agent.Name),
	}
}

// Discover locates the agent CLI binary and probes its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering agent CLI binary", "binary", d.agent.Binary)

	cliPath, err := d.findCLI()
	if err != nil {
		d.log.Error("Failed to find agent CLI", "error", err)

		return "", err
	}

	d.log.Debug("Found agent CLI binary", "cli_path", cliPath)

	d.checkVersion(ctx, cliPath)

	return cliPath, nil
}

// findCLI locates the agent CLI binary.
func (d *discoverer) findCLI() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.Path != "" {
		d.log.Debug("Using explicit CLI path", "cli_path", d.cfg.Path)

		if _, err := os.Stat(d.cfg.Path); err == nil {
			return d.cfg.Path, nil
		}

		return "", &errors.CLINotFoundError{Agent: d.agent.Name, SearchedPaths: []string{d.cfg.Path}}
	}

	searchedPaths := make([]string, 0, 6)

	d.log.Debug("Searching PATH", "binary", d.agent.Binary)

	if path, err := exec.LookPath(d.agent.Binary); err == nil {
		d.log.Debug("Found binary in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Under WSL a Windows-side install shows up as <binary>.exe on PATH
	if IsWSL() {
		exeName := d.agent.Binary + ".exe"
		searchedPaths = append(searchedPaths, "$PATH ("+exeName+")")

		if path, err := exec.LookPath(exeName); err == nil {
			d.log.Debug("Found Windows binary via WSL PATH", "path", path)

			return path, nil
		}
	}

	// Check common locations
	commonPaths := []string{
		filepath.Join("/usr/local/bin", d.agent.Binary),
		filepath.Join("/usr/bin", d.agent.Binary),
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths,
			filepath.Join(homeDir, ".local/bin", d.agent.Binary),
			filepath.Join(homeDir, ".local/share", d.agent.Name, d.agent.Binary),
		)
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found CLI at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Agent CLI not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.CLINotFoundError{Agent: d.agent.Name, SearchedPaths: searchedPaths}
}

// checkVersion probes the CLI version and warns when it is below the agent's
// minimum. Probe failures are silently ignored.
func (d *discoverer) checkVersion(ctx context.Context, cliPath string) {
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping CLI version check (configured)")

		return
	}

	if os.Getenv(skipVersionCheckEnv) != "" {
		d.log.Debug("Skipping CLI version check (env var set)")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, "--version")

	output, err := cmd.Output()
	if err != nil {
		d.log.Debug("CLI version probe failed", "error", err)

		return
	}

	version := parseVersion(string(output))
	if version == "" {
		d.log.Debug("Could not parse CLI version", "output", strings.TrimSpace(string(output)))

		return
	}

	if compareVersions(version, d.agent.MinVersion) < 0 {
		d.log.Warn("Agent CLI version is below the supported minimum",
			"version", version,
			"minimum_required", d.agent.MinVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: %s CLI version %s is below the supported minimum %s. "+
				"Some features may not work correctly.\n",
			d.agent.Name, version, d.agent.MinVersion,
		)
	} else {
		d.log.Debug("CLI version check passed", "version", version, "minimum", d.agent.MinVersion)
	}
}

// versionRe extracts a leading "X.Y.Z" from version output.
var versionRe = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

// parseVersion extracts the first semantic version from CLI version output.
// Returns "" if none is found.
func parseVersion(output string) string {
	match := versionRe.FindStringSubmatch(strings.TrimSpace(output))
	if match == nil {
		return ""
	}

	return match[1]
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}

var (
	wslOnce sync.Once
	isWSL   bool
)

// IsWSL reports whether the current environment is Windows Subsystem for
// Linux. The result is cached for the process lifetime.
func IsWSL() bool {
	wslOnce.Do(func() {
		if os.Getenv("WSL_DISTRO_NAME") != "" {
			isWSL = true

			return
		}

		data, err := os.ReadFile("/proc/version")
		if err != nil {
			return
		}

		isWSL = strings.Contains(strings.ToLower(string(data)), "microsoft")
	})

	return isWSL
}
