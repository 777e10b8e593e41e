package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

var optimizeFlags struct {
	model    string
	provider string
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [prompt]",
	Short: "Suggest cheaper versions of a prompt",
	Long: `Run the prompt optimizer and list its suggestions, highest confidence
first. The AI-assisted pass runs when optimizer.ai_enabled is set and the
configured optimizer provider has credentials.

Examples:
  costkatana optimize --model gpt-4o "Could you please kindly summarize the text below"
  costkatana optimize --model gpt-4o -o json < prompt.txt`,
	RunE: runOptimize,
}

var suggestFlags struct {
	user  string
	since string
	until string
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest optimizations from tracked usage",
	Long: `Analyze tracked records and rank optimization suggestions by estimated
savings.

Examples:
  costkatana suggest
  costkatana suggest --user alice --since 2025-03-01 -o json`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(optimizeCmd, suggestCmd)

	optimizeCmd.Flags().StringVarP(&optimizeFlags.model, "model", "m", "", "model the prompt is sent to")
	optimizeCmd.Flags().StringVarP(&optimizeFlags.provider, "provider", "p", "", "provider of the model")

	suggestCmd.Flags().StringVar(&suggestFlags.user, "user", "", "only records of this user")
	suggestCmd.Flags().StringVar(&suggestFlags.since, "since", "", "start of the range (RFC3339 or YYYY-MM-DD)")
	suggestCmd.Flags().StringVar(&suggestFlags.until, "until", "", "end of the range (RFC3339 or YYYY-MM-DD)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	provider, err := parseProviderFlag(optimizeFlags.provider)
	if err != nil {
		return err
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	suggestions, err := client.OptimizePrompt(cmd.Context(), prompt, optimizeFlags.model, provider)
	if err != nil {
		return cli.NewCommandError("optimize", err)
	}
	return render(cmd.OutOrStdout(), suggestionList(suggestions))
}

func runSuggest(cmd *cobra.Command, args []string) error {
	start, end, err := parseRange(suggestFlags.since, suggestFlags.until)
	if err != nil {
		return err
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	suggestions, err := client.GetOptimizationSuggestions(cmd.Context(), start, end, suggestFlags.user)
	if err != nil {
		return cli.NewCommandError("suggest", err)
	}
	return render(cmd.OutOrStdout(), suggestionList(suggestions))
}

type suggestionList []usage.OptimizationSuggestion

func (l suggestionList) Table() cli.Table {
	t := cli.Table{Headers: []string{"TYPE", "SAVINGS", "CONFIDENCE", "EXPLANATION"}}
	for _, s := range l {
		t.Rows = append(t.Rows, []string{
			string(s.Type),
			fmt.Sprintf("%.1f%%", s.EstimatedSavings),
			fmt.Sprintf("%.0f%%", s.Confidence*100),
			s.Explanation,
		})
	}
	return t
}
