package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
)

var reportFlags struct {
	user  string
	since string
	until string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a Markdown cost report",
	Long: `Generate a Markdown report with totals, per-provider and per-model
costs and the top optimization suggestions. With -o json the analytics
are printed instead.

Examples:
  costkatana report > report.md
  costkatana report --user alice --since 2025-03-01 --until 2025-03-31`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportFlags.user, "user", "", "only records of this user")
	reportCmd.Flags().StringVar(&reportFlags.since, "since", "", "start of the range (RFC3339 or YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFlags.until, "until", "", "end of the range (RFC3339 or YYYY-MM-DD)")
}

func runReport(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(reportFlags.since, reportFlags.until)
	if err != nil {
		return err
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if outputFormat == string(cli.FormatJSON) {
		analytics, err := client.GetAnalytics(cmd.Context(), start, end, reportFlags.user)
		if err != nil {
			return cli.NewCommandError("report", err)
		}
		return render(cmd.OutOrStdout(), analytics)
	}

	report, err := client.GenerateReport(cmd.Context(), start, end, reportFlags.user)
	if err != nil {
		return cli.NewCommandError("report", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), report)
	return err
}
