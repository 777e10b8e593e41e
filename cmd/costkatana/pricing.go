package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/cli"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/pricing"
)

var pricingFlags struct {
	provider string
}

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "List the pricing table",
	Long: `List built-in model prices, optionally for one provider. Custom prices
from the configuration are listed after the built-in table.

Examples:
  costkatana pricing
  costkatana pricing --provider anthropic -o json`,
	Args: cobra.NoArgs,
	RunE: runPricing,
}

func init() {
	rootCmd.AddCommand(pricingCmd)

	pricingCmd.Flags().StringVarP(&pricingFlags.provider, "provider", "p", "", "only models of this provider")
}

func runPricing(cmd *cobra.Command, args []string) error {
	provider, err := parseProviderFlag(pricingFlags.provider)
	if err != nil {
		return err
	}

	client, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	resolver := client.Pricing()
	entries := resolver.Table().Models(provider)

	var custom []pricing.Entry
	for _, e := range resolver.Overrides() {
		if provider == "" || e.Provider == provider {
			custom = append(custom, e)
		}
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i].ModelID < custom[j].ModelID })
	entries = append(entries, custom...)
	return render(cmd.OutOrStdout(), pricingList(entries))
}

type pricingList []pricing.Entry

func (l pricingList) Table() cli.Table {
	t := cli.Table{Headers: []string{"PROVIDER", "MODEL", "INPUT", "OUTPUT", "UNIT", "CONTEXT"}}
	for _, e := range l {
		t.Rows = append(t.Rows, []string{
			string(e.Provider),
			e.ModelID,
			fmt.Sprintf("%g", e.InputPrice),
			fmt.Sprintf("%g", e.OutputPrice),
			string(e.Unit),
			fmt.Sprint(e.ContextWindow),
		})
	}
	return t
}
