package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteOutput writes the document as a single JSON line.
func WriteOutput(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
