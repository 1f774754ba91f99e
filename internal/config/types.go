package config

import "time"

// BatchConfig represents a batch file: a named set of command tasks plus the
// execution settings for the run.
type BatchConfig struct {
	// Name identifies the batch in logs and progress lines
	Name string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`

	// Defaults contains execution settings for the run
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// Tasks is the ordered list of tasks to execute
	Tasks []TaskConfig `mapstructure:"tasks" yaml:"tasks" json:"tasks"`
}

// TaskConfig represents a single command task in a batch file
type TaskConfig struct {
	// Label is the unique task key; defaults to the command name when empty
	Label string `mapstructure:"label" yaml:"label,omitempty" json:"label,omitempty"`

	// Command is the program to run
	Command string `mapstructure:"command" yaml:"command" json:"command"`

	// Args are the program arguments
	Args []string `mapstructure:"args" yaml:"args,omitempty" json:"args,omitempty"`
}

// DefaultsConfig contains execution settings for a batch run
type DefaultsConfig struct {
	// Parallel is the maximum number of concurrent tasks
	Parallel int `mapstructure:"parallel" yaml:"parallel,omitempty" json:"parallel,omitempty"`

	// Timeout is the per-task execution ceiling
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// FastFail aborts the batch on the first failure
	FastFail bool `mapstructure:"fastFail" yaml:"fastFail,omitempty" json:"fastFail,omitempty"`

	// Progress enables per-completion progress lines
	Progress bool `mapstructure:"progress" yaml:"progress,omitempty" json:"progress,omitempty"`

	// LogErrors logs each task failure as it happens
	LogErrors bool `mapstructure:"logErrors" yaml:"logErrors,omitempty" json:"logErrors,omitempty"`

	// OutputFormat is the result output format (table, json, yaml)
	OutputFormat string `mapstructure:"outputFormat" yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `mapstructure:"noColor" yaml:"noColor,omitempty" json:"noColor,omitempty"`
}
