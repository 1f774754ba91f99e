package runner

import (
	"fmt"
	"strings"
	"time"
)

// Result is the frozen, read-only record of one task after a run completes.
type Result struct {
	Label           string        `json:"label" yaml:"label"`
	TaskName        string        `json:"task_name" yaml:"task_name"`
	Status          Status        `json:"status" yaml:"status"`
	StartTime       time.Time     `json:"start_time" yaml:"start_time"`
	EndTime         time.Time     `json:"end_time" yaml:"end_time"`
	Duration        time.Duration `json:"-" yaml:"-"`
	DurationSeconds float64       `json:"duration_seconds" yaml:"duration_seconds"`
	DurationDisplay string        `json:"duration" yaml:"duration"`
	Value           any           `json:"result" yaml:"result"`
	Error           string        `json:"error,omitempty" yaml:"error,omitempty"`
	Trace           string        `json:"trace,omitempty" yaml:"trace,omitempty"`
	HasFailed       bool          `json:"has_failed" yaml:"has_failed"`
}

// Results is the immutable label -> Result mapping produced by a completed
// run. Iteration order is registration order.
type Results struct {
	order   []string
	byLabel map[string]Result
}

func newResults(recs []*Record) Results {
	rs := Results{
		order:   make([]string, 0, len(recs)),
		byLabel: make(map[string]Result, len(recs)),
	}
	for _, rec := range recs {
		rs.order = append(rs.order, rec.label)
		rs.byLabel[rec.label] = rec.snapshot()
	}
	return rs
}

// Len returns the number of results.
func (rs Results) Len() int { return len(rs.order) }

// Labels returns all labels in registration order.
func (rs Results) Labels() []string {
	labels := make([]string, len(rs.order))
	copy(labels, rs.order)
	return labels
}

// Get returns the result for a label.
func (rs Results) Get(label string) (Result, bool) {
	res, ok := rs.byLabel[label]
	return res, ok
}

// All returns every result in registration order.
func (rs Results) All() []Result {
	out := make([]Result, 0, len(rs.order))
	for _, label := range rs.order {
		out = append(out, rs.byLabel[label])
	}
	return out
}

// Failed returns the results whose status counts as a failure.
func (rs Results) Failed() []Result {
	out := make([]Result, 0)
	for _, res := range rs.All() {
		if res.HasFailed {
			out = append(out, res)
		}
	}
	return out
}

// FailedLabels returns the labels of all failed results in registration order.
func (rs Results) FailedLabels() []string {
	labels := make([]string, 0)
	for _, res := range rs.All() {
		if res.HasFailed {
			labels = append(labels, res.Label)
		}
	}
	return labels
}

// HasFailures reports whether any task failed or was terminated.
func (rs Results) HasFailures() bool {
	for _, res := range rs.byLabel {
		if res.HasFailed {
			return true
		}
	}
	return false
}

// Verify returns an *AggregateError carrying the failing labels when any
// task failed, nil otherwise. An empty errorMessage uses a default.
func (rs Results) Verify(errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "execution failed"
	}

	failed := rs.Failed()
	if len(failed) == 0 {
		return nil
	}

	agg := &AggregateError{Message: errorMessage}
	for _, res := range failed {
		agg.Labels = append(agg.Labels, res.Label)
		agg.Errors = append(agg.Errors, fmt.Errorf("task %q (%s): %s", res.Label, res.TaskName, res.Error))
	}
	return agg
}

// Summary aggregates counts and durations across a Results snapshot.
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	Terminated  int
	AvgDuration time.Duration
	MaxDuration time.Duration
}

// Summarize computes a Summary for the results.
func (rs Results) Summarize() Summary {
	s := Summary{Total: rs.Len()}
	var total time.Duration
	for _, res := range rs.All() {
		switch res.Status {
		case StatusSuccessful:
			s.Successful++
		case StatusFailed:
			s.Failed++
		case StatusTerminated:
			s.Terminated++
		}
		total += res.Duration
		if res.Duration > s.MaxDuration {
			s.MaxDuration = res.Duration
		}
	}
	if s.Total > 0 {
		s.AvgDuration = total / time.Duration(s.Total)
	}
	return s
}

// String returns a human-readable one-line summary.
func (s Summary) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d, ", s.Total))
	sb.WriteString(fmt.Sprintf("Successful: %d, ", s.Successful))
	sb.WriteString(fmt.Sprintf("Failed: %d, ", s.Failed))
	sb.WriteString(fmt.Sprintf("Terminated: %d", s.Terminated))
	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Avg: %s", s.AvgDuration.Round(time.Millisecond)))
		sb.WriteString(fmt.Sprintf(", Max: %s", s.MaxDuration.Round(time.Millisecond)))
	}
	return sb.String()
}
