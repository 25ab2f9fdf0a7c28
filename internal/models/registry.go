package models

// registry is the internal list of all known models.
// Only the latest model per tier gets the short alias.
var registry = []Model{
	{
		ID:       "claude-opus-4-6",
		Agent:    "claude",
		Name:     "Claude Opus 4.6",
		Aliases:  []string{"opus"},
		CostTier: CostTierHigh,
	},
	{
		ID:       "claude-sonnet-4-6",
		Agent:    "claude",
		Name:     "Claude Sonnet 4.6",
		Aliases:  []string{"sonnet"},
		CostTier: CostTierMedium,
	},
	{
		ID:       "claude-haiku-4-5",
		Agent:    "claude",
		Name:     "Claude Haiku 4.5",
		Aliases:  []string{"haiku"},
		CostTier: CostTierLow,
	},
	{
		ID:       "claude-opus-4-5",
		Agent:    "claude",
		Name:     "Claude Opus 4.5",
		CostTier: CostTierHigh,
	},
	{
		ID:       "claude-sonnet-4-5",
		Agent:    "claude",
		Name:     "Claude Sonnet 4.5",
		CostTier: CostTierMedium,
	},
	{
		ID:       "gpt-5.2",
		Agent:    "cursor",
		Name:     "GPT-5.2",
		Aliases:  []string{"gpt"},
		CostTier: CostTierHigh,
	},
	{
		ID:       "gpt-5.2-codex",
		Agent:    "cursor",
		Name:     "GPT-5.2 Codex",
		Aliases:  []string{"codex"},
		CostTier: CostTierHigh,
	},
	{
		ID:       "composer-1",
		Agent:    "cursor",
		Name:     "Composer 1",
		Aliases:  []string{"composer"},
		CostTier: CostTierMedium,
	},
}
