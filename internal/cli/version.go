package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/avinashk/batchrun/pkg/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for batchrun",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			return writeVersion(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringP("output", "o", "", "output format (json, yaml, table)")

	return cmd
}

func writeVersion(w io.Writer, format string) error {
	info := version.Get()

	switch format {
	case "json":
		body, err := info.JSON()
		if err != nil {
			return fmt.Errorf("failed to marshal version info to JSON: %w", err)
		}
		fmt.Fprintln(w, body)
		return nil

	case "yaml":
		data, err := yaml.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to marshal version info to YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
		return nil

	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COMPONENT\tVALUE")
		fmt.Fprintf(tw, "Version\t%s\n", info.Version)
		fmt.Fprintf(tw, "Commit\t%s\n", info.Commit)
		fmt.Fprintf(tw, "Build Time\t%s\n", info.BuildTime)
		fmt.Fprintf(tw, "Go Version\t%s\n", info.GoVersion)
		fmt.Fprintf(tw, "Platform\t%s\n", info.Platform)
		return tw.Flush()

	default:
		fmt.Fprintln(w, info.String())
		return nil
	}
}
