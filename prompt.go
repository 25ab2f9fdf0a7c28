package agentexec

import "github.com/automaker/agentexec/internal/prompt"

// PromptTemplate captures the prompt-related settings of an agent run.
// Templates are layered with field-fallback semantics: set fields in an
// override win, unset fields keep the base value, and append text
// accumulates across layers.
type PromptTemplate = prompt.Template

// MergeTemplates layers override on top of base.
func MergeTemplates(base, override PromptTemplate) PromptTemplate {
	return prompt.Merge(base, override)
}

// MergeTemplateStack folds a stack of templates, innermost (defaults) first.
func MergeTemplateStack(layers ...PromptTemplate) PromptTemplate {
	return prompt.MergeAll(layers...)
}
