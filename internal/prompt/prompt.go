// Package prompt provides prompt templates for agent runs and the
// field-fallback merging used to layer project templates over defaults.
package prompt

import "strings"

// Template captures the prompt-related settings of an agent run. Templates
// are layered: an application ships defaults, a project may override fields,
// and a single run may override again. Zero-valued fields fall through to
// the layer below.
type Template struct {
	// SystemPrompt replaces the system prompt entirely.
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// AppendSystemPrompt is appended to the effective system prompt rather
	// than replacing it. Appends from every layer are kept, outermost last.
	AppendSystemPrompt string `json:"appendSystemPrompt,omitempty"`

	// Model is the model name or alias to run with.
	Model string `json:"model,omitempty"`

	// PermissionProfile names the permission profile to apply.
	PermissionProfile string `json:"permissionProfile,omitempty"`

	// MaxTurns limits the conversation length. Nil means no override.
	MaxTurns *int `json:"maxTurns,omitempty"`
}

// Merge layers override on top of base. Set fields in override win; unset
// fields keep the base value. AppendSystemPrompt is the one additive field:
// both layers' appends are preserved, base first.
func Merge(base, override Template) Template {
	out := base

	if override.SystemPrompt != "" {
		out.SystemPrompt = override.SystemPrompt
	}

	if override.AppendSystemPrompt != "" {
		if out.AppendSystemPrompt != "" {
			out.AppendSystemPrompt = out.AppendSystemPrompt + "\n\n" + override.AppendSystemPrompt
		} else {
			out.AppendSystemPrompt = override.AppendSystemPrompt
		}
	}

	if override.Model != "" {
		out.Model = override.Model
	}

	if override.PermissionProfile != "" {
		out.PermissionProfile = override.PermissionProfile
	}

	if override.MaxTurns != nil {
		out.MaxTurns = override.MaxTurns
	}

	return out
}

// MergeAll folds a stack of templates, innermost (defaults) first.
func MergeAll(layers ...Template) Template {
	var out Template

	for _, layer := range layers {
		out = Merge(out, layer)
	}

	return out
}

// EffectiveSystemPrompt returns the final system prompt text: the replacing
// prompt, with any accumulated append text after it.
func (t Template) EffectiveSystemPrompt() string {
	switch {
	case t.SystemPrompt == "":
		return t.AppendSystemPrompt
	case t.AppendSystemPrompt == "":
		return t.SystemPrompt
	default:
		return strings.TrimRight(t.SystemPrompt, "\n") + "\n\n" + t.AppendSystemPrompt
	}
}
