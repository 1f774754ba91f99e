package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Manager loads and validates batch files
type Manager struct {
	path   string
	config *BatchConfig
	viper  *viper.Viper
}

// NewManager creates a configuration manager for the given batch file
func NewManager(path string) *Manager {
	return &Manager{
		path:   path,
		viper:  viper.New(),
		config: &BatchConfig{},
	}
}

// Load reads, unmarshals and validates the batch file
func (m *Manager) Load() (*BatchConfig, error) {
	if m.path == "" {
		return nil, fmt.Errorf("no batch file specified")
	}

	m.viper.SetConfigFile(m.path)
	m.viper.SetConfigType("yaml")

	// Environment variable support
	m.viper.SetEnvPrefix("BATCHRUN")
	m.viper.AutomaticEnv()

	m.config = &BatchConfig{}

	if err := m.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch file: %w", err)
	}

	m.applyDefaults()

	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	return m.config, nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *BatchConfig {
	return m.config
}

// applyDefaults sets default values for configuration
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.Name == "" {
		m.config.Name = "batchrun"
	}

	if m.config.Defaults.Parallel == 0 {
		m.config.Defaults.Parallel = runtime.NumCPU()
	}

	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = "table"
	}

	for i, task := range m.config.Tasks {
		if task.Label == "" {
			task.Label = fmt.Sprintf("task-%d", i)
		}
		m.config.Tasks[i] = task
	}
}

// Validate checks the batch file for usage errors before any task runs
func (c *BatchConfig) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("batch file has no tasks")
	}

	if c.Defaults.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", c.Defaults.Parallel)
	}

	if c.Defaults.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Defaults.Timeout)
	}

	seen := make(map[string]bool, len(c.Tasks))
	for i, task := range c.Tasks {
		if task.Command == "" {
			return fmt.Errorf("task %d (%q): command is empty", i, task.Label)
		}
		if seen[task.Label] {
			return fmt.Errorf("duplicate task label %q", task.Label)
		}
		seen[task.Label] = true
	}

	return nil
}
