package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

var exportFlags struct {
	format   string
	user     string
	provider string
	model    string
	since    string
	until    string
	limit    int
	file     string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked records as JSON or CSV",
	Long: `Export tracked records matching the filters.

Examples:
  costkatana export --format csv --file usage.csv
  costkatana export --user alice --provider anthropic --since 2025-03-01`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "export format: json, csv")
	exportCmd.Flags().StringVar(&exportFlags.user, "user", "", "filter by user ID")
	exportCmd.Flags().StringVar(&exportFlags.provider, "provider", "", "filter by provider")
	exportCmd.Flags().StringVar(&exportFlags.model, "model", "", "filter by model")
	exportCmd.Flags().StringVar(&exportFlags.since, "since", "", "start of the range (RFC3339 or YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFlags.until, "until", "", "end of the range (RFC3339 or YYYY-MM-DD)")
	exportCmd.Flags().IntVar(&exportFlags.limit, "limit", 0, "max records (0 for all)")
	exportCmd.Flags().StringVarP(&exportFlags.file, "file", "f", "", "output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(exportFlags.since, exportFlags.until)
	if err != nil {
		return err
	}
	provider, err := parseProviderFlag(exportFlags.provider)
	if err != nil {
		return err
	}
	filter := &usage.Filter{
		UserID:    exportFlags.user,
		Provider:  provider,
		Model:     exportFlags.model,
		StartDate: start,
		EndDate:   end,
		Limit:     exportFlags.limit,
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	out, err := client.ExportData(cmd.Context(), exportFlags.format, filter)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	if exportFlags.file == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(exportFlags.file, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
