package reporter

import (
	"encoding/json"
	"io"
)

type JSONReporter struct{}

func (r *JSONReporter) Report(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
