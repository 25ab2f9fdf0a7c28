package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByID_Exact(t *testing.T) {
	m := ByID("claude-opus-4-6")
	require.NotNil(t, m)
	require.Equal(t, "claude-opus-4-6", m.ID)
	require.Equal(t, CostTierHigh, m.CostTier)
}

func TestByID_Alias(t *testing.T) {
	m := ByID("sonnet")
	require.NotNil(t, m)
	require.Equal(t, "claude-sonnet-4-6", m.ID)

	m = ByID("composer")
	require.NotNil(t, m)
	require.Equal(t, "composer-1", m.ID)
}

func TestByID_DatedPrefix(t *testing.T) {
	m := ByID("claude-sonnet-4-6-20260205")
	require.NotNil(t, m)
	require.Equal(t, "claude-sonnet-4-6", m.ID)
}

func TestByID_ExactBeatsPrefix(t *testing.T) {
	// "gpt-5.2-codex" is itself a catalog entry and also has "gpt-5.2"
	// as a prefix; the exact match must win.
	m := ByID("gpt-5.2-codex")
	require.NotNil(t, m)
	require.Equal(t, "gpt-5.2-codex", m.ID)
}

func TestByID_Unknown(t *testing.T) {
	require.Nil(t, ByID("llama-9"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		want      string
	}{
		{name: "opus", want: "claude-opus-4-6"},
		{name: "claude-haiku-4-5", want: "claude-haiku-4-5"},
		{name: "claude-opus-4-6-20260301", want: "claude-opus-4-6"},
		{name: "future-model-x", want: "future-model-x"},
		{
			name:      "opus",
			overrides: map[string]string{"opus": "claude-opus-4-5"},
			want:      "claude-opus-4-5",
		},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Resolve(tt.name, tt.overrides), "name %q", tt.name)
	}
}

func TestByAgent(t *testing.T) {
	claude := ByAgent("claude")
	require.NotEmpty(t, claude)

	for _, m := range claude {
		require.Equal(t, "claude", m.Agent)
	}

	require.Empty(t, ByAgent("copilot"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, len(registry))

	all[0].ID = "mutated"
	require.NotEqual(t, "mutated", registry[0].ID)
}
