package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/processing/costs"
)

var estimateFlags struct {
	model            string
	provider         string
	completionTokens int
}

var estimateCmd = &cobra.Command{
	Use:   "estimate [prompt]",
	Short: "Estimate the cost of a prompt",
	Long: `Estimate what sending a prompt to a model will cost.

The prompt is read from the arguments, or from stdin when none are given.
Without --completion-tokens the completion is assumed to be a third of
the prompt tokens, between 100 and 1000.

Examples:
  costkatana estimate --model gpt-4o-mini "Translate this to French"
  cat prompt.txt | costkatana estimate --model claude-3-haiku-20240307
  costkatana estimate --model gpt-4o --completion-tokens 800 -o json "Draft a memo"`,
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVarP(&estimateFlags.model, "model", "m", "", "model id (required)")
	estimateCmd.Flags().StringVarP(&estimateFlags.provider, "provider", "p", "", "provider (resolved from the model when omitted)")
	estimateCmd.Flags().IntVar(&estimateFlags.completionTokens, "completion-tokens", -1, "expected completion tokens (-1 for the default)")
	_ = estimateCmd.MarkFlagRequired("model")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	provider, err := parseProviderFlag(estimateFlags.provider)
	if err != nil {
		return err
	}

	var completion *int
	if estimateFlags.completionTokens >= 0 {
		completion = &estimateFlags.completionTokens
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	est, err := client.EstimateCost(prompt, estimateFlags.model, provider, completion)
	if err != nil {
		return cli.NewCommandError("estimate", err)
	}
	return render(cmd.OutOrStdout(), estimateView{est})
}

type estimateView struct {
	*costs.CostEstimate
}

func (v estimateView) Table() cli.Table {
	b := v.Breakdown
	return cli.Table{
		Headers: []string{"", "TOKENS", "COST"},
		Rows: [][]string{
			{"prompt", fmt.Sprint(b.PromptTokens), fmt.Sprintf("$%.6f", v.PromptCost)},
			{"completion", fmt.Sprint(b.CompletionTokens), fmt.Sprintf("$%.6f", v.CompletionCost)},
			{"total", fmt.Sprint(b.PromptTokens + b.CompletionTokens), fmt.Sprintf("$%.6f %s", v.TotalCost, v.Currency)},
		},
	}
}
