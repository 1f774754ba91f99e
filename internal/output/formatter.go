package output

import (
	"io"

	"github.com/avinashk/batchrun/runner"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs results in a psql-style table
	FormatTable Format = "table"
	// FormatJSON outputs results in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs results in YAML format
	FormatYAML Format = "yaml"
)

// Formatter defines the interface for rendering a frozen Results snapshot.
// Formatters are read-only consumers; they never mutate the snapshot.
type Formatter interface {
	// Write renders the results to the writer
	Write(w io.Writer, results runner.Results) error
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with result and error columns
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}

// Reporter adapts a Formatter and a writer to the runner.Reporter contract.
type Reporter struct {
	w         io.Writer
	formatter Formatter
}

// NewReporter creates a Reporter rendering through the given formatter.
func NewReporter(w io.Writer, formatter Formatter) *Reporter {
	return &Reporter{w: w, formatter: formatter}
}

// Report implements runner.Reporter
func (r *Reporter) Report(results runner.Results) error {
	return r.formatter.Write(r.w, results)
}
