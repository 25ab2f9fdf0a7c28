package agentexec

import (
	"log/slog"

	"github.com/automaker/agentexec/internal/profile"
)

// PermissionProfile is a named set of tool permissions for agent runs.
type PermissionProfile = profile.Profile

// ProfileStore reads and writes permission profiles under a directory,
// one JSON file per profile, with atomic replace writes.
type ProfileStore = profile.Store

// Verdict is the outcome of a permission check.
type Verdict = profile.Verdict

// Permission verdicts.
const (
	// VerdictAllow permits the tool use.
	VerdictAllow = profile.Allow
	// VerdictDeny blocks the tool use.
	VerdictDeny = profile.Deny
)

// NewProfileStore creates a permission profile store rooted at dir.
// If logger is nil, logging is disabled.
func NewProfileStore(logger *slog.Logger, dir string) *ProfileStore {
	if logger == nil {
		logger = NopLogger()
	}

	return profile.NewStore(logger, dir)
}
