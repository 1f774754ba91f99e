// Package output provides formatters for displaying batch run results.
//
// The package supports multiple output formats (table, JSON, YAML), a color
// scheme with automatic TTY detection, and a progress-bar line renderer.
// All formatters consume a frozen runner.Results snapshot and never mutate
// it; they contain no concurrency logic of their own.
//
// # Basic Usage
//
//	formatter := output.NewFormatter(output.FormatTable)
//	formatter.Write(os.Stdout, results)
//
// # Reporter
//
// A formatter can be wired as the runner's result reporter:
//
//	r := runner.New(runner.Options{
//	    Reporter: output.NewReporter(os.Stdout, formatter),
//	})
//
// # Progress
//
// The progress bar satisfies the runner's progress callback contract:
//
//	bar := output.NewProgressBar(os.Stderr, "nightly", false)
//	r := runner.New(runner.Options{Progress: bar.Update})
package output
