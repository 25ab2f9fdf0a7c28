package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMerge_OverrideWins(t *testing.T) {
	ten := 10
	base := Template{
		SystemPrompt:      "base prompt",
		Model:             "sonnet",
		PermissionProfile: "default",
	}
	override := Template{
		SystemPrompt: "override prompt",
		Model:        "opus",
		MaxTurns:     &ten,
	}

	got := Merge(base, override)
	require.Equal(t, "override prompt", got.SystemPrompt)
	require.Equal(t, "opus", got.Model)
	require.Equal(t, "default", got.PermissionProfile)
	require.NotNil(t, got.MaxTurns)
	require.Equal(t, 10, *got.MaxTurns)
}

func TestMerge_UnsetFieldsFallThrough(t *testing.T) {
	five := 5
	base := Template{
		SystemPrompt: "base prompt",
		Model:        "sonnet",
		MaxTurns:     &five,
	}

	got := Merge(base, Template{})
	require.Equal(t, base, got)
}

func TestMerge_AppendAccumulates(t *testing.T) {
	base := Template{AppendSystemPrompt: "first"}
	override := Template{AppendSystemPrompt: "second"}

	got := Merge(base, override)
	require.Equal(t, "first\n\nsecond", got.AppendSystemPrompt)
}

func TestMergeAll(t *testing.T) {
	defaults := Template{SystemPrompt: "app default", Model: "sonnet"}
	project := Template{AppendSystemPrompt: "project rules"}
	run := Template{Model: "opus", AppendSystemPrompt: "run rules"}

	got := MergeAll(defaults, project, run)
	require.Equal(t, "app default", got.SystemPrompt)
	require.Equal(t, "opus", got.Model)
	require.Equal(t, "project rules\n\nrun rules", got.AppendSystemPrompt)
}

func TestEffectiveSystemPrompt(t *testing.T) {
	tests := []struct {
		name string
		tmpl Template
		want string
	}{
		{
			name: "empty",
			tmpl: Template{},
			want: "",
		},
		{
			name: "replace only",
			tmpl: Template{SystemPrompt: "prompt"},
			want: "prompt",
		},
		{
			name: "append only",
			tmpl: Template{AppendSystemPrompt: "extra"},
			want: "extra",
		},
		{
			name: "replace and append",
			tmpl: Template{SystemPrompt: "prompt\n", AppendSystemPrompt: "extra"},
			want: "prompt\n\nextra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.tmpl.EffectiveSystemPrompt())
		})
	}
}
