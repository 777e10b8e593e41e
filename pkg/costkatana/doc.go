// Package costkatana is the entry point of the CostKatana SDK. A Client
// ties together token counting, pricing, usage tracking, analytics, prompt
// optimization and the suggestion engine behind one configuration.
//
// Basic usage:
//
//	client, err := costkatana.New(config.Default())
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	est, err := client.EstimateCost("Summarize this report", "gpt-4o-mini", usage.ProviderOpenAI, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("estimated cost: $%.6f\n", est.TotalCost)
//
// Calls made with TrackedCompletion are priced and stored automatically.
// Records tracked any other way go through TrackUsage.
package costkatana
