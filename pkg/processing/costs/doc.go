// Package costs prices token counts against the pricing table.
//
// CalculateCost is the pure conversion: tokens are divided by the entry's
// unit divisor and multiplied by its unit price, prompt and completion
// separately. TotalCost is their exact sum; nothing is rounded. Use Round
// only when displaying.
//
// Calculator adds model resolution and token counting:
//
//	calc := costs.NewCalculator(resolver, counter, logger, collector)
//	est, err := calc.EstimateCost(prompt, usage.ProviderAnthropic, "claude-3-haiku-20240307", nil)
//
// A nil expected completion count is estimated as a third of the prompt,
// clamped to [100, 1000] tokens. An explicit 0 prices no completion.
//
// Unknown models fail with *pricing.UnknownModelError. Pricing overrides can
// be swapped while the calculator is in use with UpdateOverrides.
package costs
