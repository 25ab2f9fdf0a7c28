package agentexec

import "github.com/automaker/agentexec/internal/models"

// Re-export model types from internal/models.

// Model holds metadata for a single agent model.
type Model = models.Model

// ModelCostTier represents a provider-agnostic relative cost tier.
type ModelCostTier = models.CostTier

// Model cost tier constants.
const (
	// ModelCostTierHigh represents opus-class pricing.
	ModelCostTierHigh = models.CostTierHigh
	// ModelCostTierMedium represents sonnet-class pricing.
	ModelCostTierMedium = models.CostTierMedium
	// ModelCostTierLow represents haiku-class pricing.
	ModelCostTierLow = models.CostTierLow
)

// Models returns a copy of all known agent models.
func Models() []Model {
	return models.All()
}

// ModelsByAgent returns all known models for the given agent.
func ModelsByAgent(agent string) []Model {
	return models.ByAgent(agent)
}

// ModelByID looks up a model by ID, alias, or dated prefix.
// Returns nil if no model is found.
func ModelByID(id string) *Model {
	return models.ByID(id)
}

// ResolveModel maps a model name or alias to its canonical ID with priority
// fallback: overrides win over the built-in catalog (exact ID, then alias,
// then dated prefix); an unrecognized name passes through unchanged.
func ResolveModel(name string, overrides map[string]string) string {
	return models.Resolve(name, overrides)
}
