package output

import (
	"fmt"
	"io"
	"time"

	"github.com/avinashk/batchrun/runner"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders results as a label/task/status/duration table.
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Write renders the results table followed by a summary line.
func (f *TableFormatter) Write(w io.Writer, results runner.Results) error {
	if results.Len() == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"LABEL", "TASK", "STATUS", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "RESULT", "ERROR")
	}

	if !f.options.NoHeaders {
		if colors.Disabled {
			table.SetHeader(headers)
		} else {
			coloredHeaders := make([]string, len(headers))
			for i, h := range headers {
				coloredHeaders[i] = colors.Header(h)
			}
			table.SetHeader(coloredHeaders)
		}
	}

	for _, res := range results.All() {
		table.Append(f.formatResultRow(res, colors))
	}

	table.Render()
	f.printSummary(w, results, colors)

	return nil
}

// formatResultRow formats a single result as a table row
func (f *TableFormatter) formatResultRow(res runner.Result, colors *ColorScheme) []string {
	label := res.Label
	if !colors.Disabled {
		label = colors.Label(label)
	}

	status := string(res.Status)
	if !colors.Disabled {
		status = colors.StatusColor(res.Status)(status)
	}

	duration := res.DurationDisplay
	if !colors.Disabled {
		duration = colors.Duration(duration)
	}

	row := []string{label, res.TaskName, status, duration}

	if f.options.Wide {
		valueStr := ""
		if res.Value != nil {
			valueStr = fmt.Sprintf("%v", res.Value)
			if len(valueStr) > 50 {
				valueStr = valueStr[:47] + "..."
			}
		}
		row = append(row, valueStr, res.Error)
	}

	return row
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary line below the table
func (f *TableFormatter) printSummary(w io.Writer, results runner.Results, colors *ColorScheme) {
	summary := results.Summarize()

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: ")

	successText := fmt.Sprintf("%d successful", summary.Successful)
	if !colors.Disabled {
		successText = colors.Success(successText)
	}

	failedText := fmt.Sprintf("%d failed", summary.Failed)
	if !colors.Disabled && summary.Failed > 0 {
		failedText = colors.Error(failedText)
	}

	terminatedText := fmt.Sprintf("%d terminated", summary.Terminated)
	if !colors.Disabled && summary.Terminated > 0 {
		terminatedText = colors.Warning(terminatedText)
	}

	durationText := fmt.Sprintf("avg=%s", summary.AvgDuration.Round(time.Millisecond))
	if !colors.Disabled {
		durationText = colors.Duration(durationText)
	}

	fmt.Fprintf(w, "%s, %s, %s (%s)\n", successText, failedText, terminatedText, durationText)
}
