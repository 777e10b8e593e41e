// Package openai implements the OpenAI chat completions adapter.
//
// The same adapter serves Azure OpenAI deployments (api-key header,
// /openai/deployments/{model} routing, api-version query) and
// OpenAI-compatible servers such as vLLM or Ollama, which are reached by
// pointing BaseURL at them. Compatible servers may run without an API key.
//
// # Basic Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    Name:   "openai",
//	    Type:   "openai",
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	resp, err := provider.SendCompletion(ctx, &providers.CompletionRequest{
//	    Model:    "gpt-4o-mini",
//	    Messages: []providers.Message{{Role: "user", Content: "Hello!"}},
//	})
package openai
