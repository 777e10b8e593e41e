// Package health runs component checks for the CostKatana client.
//
// The client registers a check for its storage backend and its pricing
// table. Checks run concurrently and each one is bounded by the checker's
// timeout:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("storage", func(ctx context.Context) error {
//	    _, err := store.Load(ctx, &usage.Filter{Limit: 1})
//	    return err
//	})
//
//	report := checker.Check(ctx)
//	if !report.Healthy() {
//	    // report.Checks holds the failing component and its message
//	}
package health
