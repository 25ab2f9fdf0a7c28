package proc

// Record is one parsed line of subprocess output. Each line of the child's
// stdout is an independent JSON document; a line that fails to parse is
// replaced by a synthesized error record so the stream never loses position.
type Record map[string]any

// Type returns the record's "type" field, or "" if absent.
func (r Record) Type() string {
	t, _ := r["type"].(string)

	return t
}

// IsError reports whether this is an error record (synthesized or emitted
// by the agent CLI itself).
func (r Record) IsError() bool {
	return r.Type() == "error"
}

// ErrorText returns the record's "error" field, or "" for non-error records.
func (r Record) ErrorText() string {
	e, _ := r["error"].(string)

	return e
}

// ErrorRecord synthesizes an in-band error record.
func ErrorRecord(text string) Record {
	return Record{"type": "error", "error": text}
}
