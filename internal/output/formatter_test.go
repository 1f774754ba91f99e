package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avinashk/batchrun/runner"
	"gopkg.in/yaml.v3"
)

// sampleResults runs a small batch so the tests exercise the real frozen
// snapshot shape instead of hand-built fixtures.
func sampleResults(t *testing.T) runner.Results {
	t.Helper()

	r := runner.New(runner.Options{MaxConcurrency: 2})
	r.Add("greet", func(ctx context.Context) (any, error) { return "hello", nil })
	r.Add("boom", func(ctx context.Context) (any, error) { return nil, errors.New("exploded") })

	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("sample run failed: %v", err)
	}
	return results
}

func TestNewFormatter_Dispatch(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatTable, "*output.TableFormatter"},
		{FormatJSON, "*output.JSONFormatter"},
		{FormatYAML, "*output.YAMLFormatter"},
		{Format("bogus"), "*output.TableFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			var got string
			switch f.(type) {
			case *TableFormatter:
				got = "*output.TableFormatter"
			case *JSONFormatter:
				got = "*output.JSONFormatter"
			case *YAMLFormatter:
				got = "*output.YAMLFormatter"
			}
			if got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func TestTableFormatter_Write(t *testing.T) {
	results := sampleResults(t)

	var buf bytes.Buffer
	f := NewTableFormatter(&Options{NoColor: true})
	if err := f.Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, fragment := range []string{"LABEL", "STATUS", "greet", "boom", "Successful", "Failed", "1 successful", "1 failed"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, out)
		}
	}
	if strings.Contains(out, "exploded") {
		t.Error("narrow output should not include the error column")
	}
}

func TestTableFormatter_Wide(t *testing.T) {
	results := sampleResults(t)

	var buf bytes.Buffer
	f := NewTableFormatter(&Options{NoColor: true, Wide: true})
	if err := f.Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, fragment := range []string{"RESULT", "ERROR", "hello", "exploded"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("wide output missing %q:\n%s", fragment, out)
		}
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	results := sampleResults(t)

	var buf bytes.Buffer
	f := NewTableFormatter(&Options{NoColor: true, NoHeaders: true})
	if err := f.Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.Contains(buf.String(), "LABEL") {
		t.Errorf("headers rendered despite NoHeaders:\n%s", buf.String())
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	r := runner.New(runner.Options{})
	results, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("empty run failed: %v", err)
	}

	var buf bytes.Buffer
	f := NewTableFormatter(&Options{NoColor: true})
	if err := f.Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No results") {
		t.Errorf("empty output = %q", buf.String())
	}
}

func TestJSONFormatter_Write(t *testing.T) {
	results := sampleResults(t)

	var buf bytes.Buffer
	f := NewJSONFormatter(nil)
	if err := f.Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(decoded))
	}
	if decoded[0]["label"] != "greet" || decoded[1]["label"] != "boom" {
		t.Errorf("registration order not preserved: %v, %v", decoded[0]["label"], decoded[1]["label"])
	}
	if decoded[0]["result"] != "hello" {
		t.Errorf("greet result = %v, want hello", decoded[0]["result"])
	}
	if decoded[1]["has_failed"] != true {
		t.Errorf("boom has_failed = %v, want true", decoded[1]["has_failed"])
	}
	if _, present := decoded[0]["error"]; present {
		t.Error("successful entry should omit the error field")
	}
	for _, key := range []string{"task_name", "status", "start_time", "end_time", "duration_seconds", "duration"} {
		if _, present := decoded[0][key]; !present {
			t.Errorf("entry missing %q key: %v", key, decoded[0])
		}
	}
}

func TestYAMLFormatter_Write(t *testing.T) {
	results := sampleResults(t)

	var buf bytes.Buffer
	f := NewYAMLFormatter(nil)
	if err := f.Write(&buf, results); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(decoded))
	}
	if decoded[1]["error"] != "exploded" {
		t.Errorf("boom error = %v, want exploded", decoded[1]["error"])
	}
}

func TestReporter_Adapts(t *testing.T) {
	results := sampleResults(t)

	var buf bytes.Buffer
	var rep runner.Reporter = NewReporter(&buf, NewTableFormatter(&Options{NoColor: true}))
	if err := rep.Report(results); err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("reporter wrote nothing")
	}
}

func TestColorScheme_NonTTYDisabled(t *testing.T) {
	var buf bytes.Buffer
	cs := NewColorScheme(&buf, false)
	if !cs.Disabled {
		t.Error("colors should be disabled for non-TTY writers")
	}
	if got := cs.Error("plain %s", "text"); got != "plain text" {
		t.Errorf("disabled scheme altered text: %q", got)
	}
}

func TestColorScheme_StatusColor(t *testing.T) {
	cs := NewColorScheme(&bytes.Buffer{}, true)

	statuses := []runner.Status{
		runner.StatusFailed,
		runner.StatusTerminated,
		runner.StatusSuccessful,
		runner.StatusPending,
	}
	for _, status := range statuses {
		// With colors disabled every status function is a passthrough.
		if got := cs.StatusColor(status)(string(status)); got != string(status) {
			t.Errorf("StatusColor(%s) mangled output: %q", status, got)
		}
	}
}

func TestProgressBar_Update(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "nightly", true)

	bar.Update(3, 10, 90*time.Second)
	line := buf.String()

	for _, fragment := range []string{"nightly", "3/10", "[30.0%]", "1 min 30 sec", strings.Repeat("#", 8) + strings.Repeat(".", 17)} {
		if !strings.Contains(line, fragment) {
			t.Errorf("progress line missing %q: %q", fragment, line)
		}
	}
}

func TestProgressBar_Bounds(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "job", true)

	bar.Update(0, 0, 0)
	if !strings.Contains(buf.String(), "0/0") {
		t.Errorf("zero-total line = %q", buf.String())
	}

	buf.Reset()
	bar.Update(10, 10, time.Second)
	if !strings.Contains(buf.String(), strings.Repeat("#", progressBarWidth)) {
		t.Errorf("full bar not rendered: %q", buf.String())
	}
}
