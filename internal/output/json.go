package output

import (
	"encoding/json"
	"io"

	"github.com/avinashk/batchrun/runner"
)

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Write outputs the results as an ordered JSON array
func (f *JSONFormatter) Write(w io.Writer, results runner.Results) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results.All())
}
