// Package models provides a catalog of known agent models and shorthand
// alias resolution. It is the source of truth for model metadata within
// the library.
package models

import (
	"slices"
	"strings"
)

// CostTier represents a provider-agnostic relative cost tier.
type CostTier string

const (
	// CostTierHigh represents opus-class pricing.
	CostTierHigh CostTier = "high"
	// CostTierMedium represents sonnet-class pricing.
	CostTierMedium CostTier = "medium"
	// CostTierLow represents haiku-class pricing.
	CostTierLow CostTier = "low"
)

// Model holds metadata for a single agent model.
type Model struct {
	// ID is the identifier passed to the agent CLI (e.g. "claude-opus-4-6").
	ID string
	// Agent is the agent this model belongs to ("claude", "cursor").
	Agent string
	// Name is the human-readable display name.
	Name string
	// Aliases are shorthand names accepted in configuration (e.g. "opus").
	Aliases []string
	// CostTier is the relative cost tier for this model.
	CostTier CostTier
}

// All returns a copy of every known model in the catalog.
func All() []Model {
	out := make([]Model, len(registry))
	copy(out, registry)

	return out
}

// ByAgent returns all known models for the given agent.
func ByAgent(agent string) []Model {
	var out []Model

	for _, m := range registry {
		if m.Agent == agent {
			out = append(out, m)
		}
	}

	return out
}

// ByID looks up a model by its identifier. It checks in order:
//  1. Exact match on ID
//  2. Alias match
//  3. Prefix match (for dated model IDs like "claude-opus-4-6-20260205")
//
// Returns nil if no model is found.
func ByID(id string) *Model {
	for i := range registry {
		if registry[i].ID == id {
			m := registry[i]

			return &m
		}
	}

	for i := range registry {
		if slices.Contains(registry[i].Aliases, id) {
			m := registry[i]

			return &m
		}
	}

	for i := range registry {
		if strings.HasPrefix(id, registry[i].ID) {
			m := registry[i]

			return &m
		}
	}

	return nil
}

// Resolve maps a user-supplied model name to a canonical model ID with
// priority fallback: a caller-supplied override wins over the built-in
// catalog, which resolves exact IDs, then aliases, then dated prefixes.
// An unrecognized name is returned unchanged so that models newer than
// this catalog still reach the CLI.
func Resolve(name string, overrides map[string]string) string {
	if id, ok := overrides[name]; ok {
		return id
	}

	if m := ByID(name); m != nil {
		return m.ID
	}

	return name
}
