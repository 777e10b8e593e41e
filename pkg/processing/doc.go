// Package processing holds the token and cost stages applied to every
// prompt and usage record.
//
//   - tokens: token counting, a character heuristic or tiktoken, with an
//     optional ristretto cache in front
//   - costs: pricing token counts against the pricing table and estimating
//     prompts before they are sent
//
// A counter and a resolver make a calculator:
//
//	counter, err := tokens.NewCounter(cfg.Tokens, logger, collector)
//	if err != nil {
//	    return err
//	}
//	calc := costs.NewCalculator(pricing.NewResolver(nil, overrides), counter, logger, collector)
//
//	est, err := calc.EstimateCost(prompt, usage.ProviderOpenAI, "gpt-4o-mini", nil)
package processing
