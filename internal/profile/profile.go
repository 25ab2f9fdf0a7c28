// Package profile stores named permission profiles as small JSON files and
// evaluates tool allow/deny verdicts against them.
package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Verdict is the outcome of a permission check.
type Verdict int

const (
	// Allow permits the tool use.
	Allow Verdict = iota
	// Deny blocks the tool use.
	Deny
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("verdict(%d)", v)
	}
}

// Profile is a named set of tool permissions for agent runs.
type Profile struct {
	// Name identifies the profile; it is also the file name on disk.
	Name string `json:"name"`

	// Default is the verdict for tools matching neither list.
	// "allow" or "deny"; empty means deny.
	Default string `json:"default,omitempty"`

	// Allow lists tool names that are always permitted.
	Allow []string `json:"allow,omitempty"`

	// Deny lists tool names that are always blocked. Deny wins over Allow.
	Deny []string `json:"deny,omitempty"`
}

// Verdict evaluates the profile for the given tool name. Deny entries win
// over allow entries; unmatched tools get the profile default.
func (p *Profile) Verdict(tool string) Verdict {
	if slices.Contains(p.Deny, tool) {
		return Deny
	}

	if slices.Contains(p.Allow, tool) {
		return Allow
	}

	if p.Default == "allow" {
		return Allow
	}

	return Deny
}

// Store reads and writes profiles under a single directory, one JSON file
// per profile.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore creates a profile store rooted at dir. The directory is created
// on first save, not here.
func NewStore(log *slog.Logger, dir string) *Store {
	return &Store{
		dir: dir,
		log: log.With("component", "profile_store"),
	}
}

// path returns the file path for a profile name, rejecting names that would
// escape the store directory.
func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid profile name %q", name)
	}

	return filepath.Join(s.dir, name+".json"), nil
}

// Load reads the named profile.
func (s *Store) Load(name string) (*Profile, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", name, err)
	}

	var p Profile

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", name, err)
	}

	if p.Name == "" {
		p.Name = name
	}

	s.log.Debug("Loaded profile", "name", name, "allow", len(p.Allow), "deny", len(p.Deny))

	return &p, nil
}

// Save writes the profile atomically: the JSON is written to a temp file in
// the same directory and renamed into place, so readers never observe a
// partial profile.
func (s *Store) Save(p *Profile) error {
	path, err := s.path(p.Name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", p.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, p.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("write profile %q: %w", p.Name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("replace profile %q: %w", p.Name, err)
	}

	s.log.Info("Saved profile", "name", p.Name, "path", path)

	return nil
}

// Delete removes the named profile. Deleting a missing profile is an error.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete profile %q: %w", name, err)
	}

	s.log.Info("Deleted profile", "name", name)

	return nil
}

// List returns the names of all stored profiles, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read profile directory: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	sort.Strings(names)

	return names, nil
}
