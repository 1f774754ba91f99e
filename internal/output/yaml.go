package output

import (
	"io"

	"github.com/avinashk/batchrun/runner"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats results as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// Write outputs the results as an ordered YAML sequence
func (f *YAMLFormatter) Write(w io.Writer, results runner.Results) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(results.All())
}
