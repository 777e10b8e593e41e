package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/tracker"
)

var statsFlags struct {
	user string
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics for a user",
	Long: `Show request count, cost and token totals for one user.

Examples:
  costkatana stats --user alice
  costkatana stats --user alice -o json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove records outside the retention window",
	Long: `Remove records older than retention.days now, archiving them first when
retention.archive_before_delete is set. Nothing is removed when retention
is disabled.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(statsCmd, pruneCmd)

	statsCmd.Flags().StringVar(&statsFlags.user, "user", "", "user ID (required)")
	_ = statsCmd.MarkFlagRequired("user")
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	stats, err := client.GetUserStats(cmd.Context(), statsFlags.user)
	if err != nil {
		return cli.NewCommandError("stats", err)
	}
	return render(cmd.OutOrStdout(), statsView(stats))
}

func runPrune(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if client.Config().Retention.Days <= 0 {
		return render(cmd.OutOrStdout(), "Retention is disabled; nothing pruned.")
	}

	removed, err := client.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("prune", err)
	}
	return render(cmd.OutOrStdout(), fmt.Sprintf("Pruned %d record(s).", removed))
}

type statsView tracker.UserStats

func (v statsView) Table() cli.Table {
	lastUsed := "never"
	if v.LastUsed != nil {
		lastUsed = v.LastUsed.Format(time.RFC3339)
	}
	return cli.Table{
		Rows: [][]string{
			{"User", v.UserID},
			{"Requests", fmt.Sprint(v.TotalRequests)},
			{"Total cost", fmt.Sprintf("$%.4f", v.TotalCost)},
			{"Total tokens", fmt.Sprint(v.TotalTokens)},
			{"Avg cost/request", fmt.Sprintf("$%.6f", v.AverageCostPerRequest)},
			{"Avg tokens/request", fmt.Sprintf("%.1f", v.AverageTokensPerRequest)},
			{"Last used", lastUsed},
		},
	}
}
