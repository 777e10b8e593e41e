package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and pricing",
	Long: `Check that the configured storage backend answers and that the pricing
table is loaded. Exits non-zero when a check fails.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	report := client.Health(cmd.Context())
	if err := render(cmd.OutOrStdout(), healthView(report)); err != nil {
		return err
	}
	if !report.Healthy() {
		return cli.NewCommandError("health", errors.New("one or more checks failed"))
	}
	return nil
}

type healthView health.Report

func (v healthView) Table() cli.Table {
	t := cli.Table{Headers: []string{"CHECK", "STATUS", "MESSAGE"}}
	for _, name := range health.Report(v).Names() {
		r := v.Checks[name]
		t.Rows = append(t.Rows, []string{name, r.Status, r.Message})
	}
	return t
}
