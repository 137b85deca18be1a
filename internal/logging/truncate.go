// Package logging provides logging utilities for the engine's zerolog
// pipeline. Gate runs capture arbitrary shell output; the writer here
// keeps oversized captures from bloating the rotated log file.
package logging

import (
	"encoding/json"
	"io"
)

// MaxOutputLen is the longest output field value written to the log.
const MaxOutputLen = 4096

// truncationMarker is appended to clipped values.
const truncationMarker = "...[truncated]"

// outputFields are the log fields subject to truncation.
var outputFields = []string{"output", "gate_output", "agent_output"}

// TruncatingWriter wraps an io.Writer and clips oversized output fields
// in JSON log entries before they reach the underlying writer. Entries
// that are not valid JSON pass through untouched.
type TruncatingWriter struct {
	target io.Writer
}

// NewTruncatingWriter creates a TruncatingWriter around target.
func NewTruncatingWriter(target io.Writer) *TruncatingWriter {
	return &TruncatingWriter{target: target}
}

// Write implements io.Writer.
func (w *TruncatingWriter) Write(p []byte) (int, error) {
	clipped, changed := truncateEntry(p)
	if !changed {
		return w.target.Write(p)
	}
	if _, err := w.target.Write(clipped); err != nil {
		return 0, err
	}
	// Report the original length so zerolog sees a complete write.
	return len(p), nil
}

// truncateEntry clips oversized output fields in one JSON log entry.
// The second return is false when nothing changed.
func truncateEntry(p []byte) ([]byte, bool) {
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err != nil {
		return p, false
	}

	changed := false
	for _, field := range outputFields {
		value, ok := entry[field].(string)
		if !ok || len(value) <= MaxOutputLen {
			continue
		}
		entry[field] = value[:MaxOutputLen] + truncationMarker
		changed = true
	}
	if !changed {
		return p, false
	}

	clipped, err := json.Marshal(entry)
	if err != nil {
		return p, false
	}
	return append(clipped, '\n'), true
}
