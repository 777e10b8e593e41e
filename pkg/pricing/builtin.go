package pricing

import (
	"sync"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

var (
	openai    = usage.ProviderOpenAI
	anthropic = usage.ProviderAnthropic
	bedrock   = usage.ProviderAWSBedrock
	google    = usage.ProviderGoogle
	cohere    = usage.ProviderCohere
	azure     = usage.ProviderAzureOpenAI
	mistral   = usage.ProviderMistral
)

var (
	capText      = []string{"text"}
	capVision    = []string{"text", "vision", "tools"}
	capTools     = []string{"text", "tools"}
	capReasoning = []string{"text", "reasoning", "tools"}
	capEmbedding = []string{"embedding"}
)

// builtinEntries prices are USD per 1M tokens unless noted.
var builtinEntries = []Entry{
	// OpenAI
	{ModelID: "gpt-4o", ModelName: "GPT-4o", Provider: openai, InputPrice: 2.50, OutputPrice: 10.00, ContextWindow: 128000, Capabilities: capVision, IsLatest: true},
	{ModelID: "gpt-4o-mini", ModelName: "GPT-4o mini", Provider: openai, InputPrice: 0.15, OutputPrice: 0.60, ContextWindow: 128000, Capabilities: capVision, IsLatest: true},
	{ModelID: "gpt-4.1", ModelName: "GPT-4.1", Provider: openai, InputPrice: 2.00, OutputPrice: 8.00, ContextWindow: 1047576, Capabilities: capVision, IsLatest: true},
	{ModelID: "gpt-4.1-mini", ModelName: "GPT-4.1 mini", Provider: openai, InputPrice: 0.40, OutputPrice: 1.60, ContextWindow: 1047576, Capabilities: capVision, IsLatest: true},
	{ModelID: "gpt-4-turbo", ModelName: "GPT-4 Turbo", Provider: openai, InputPrice: 10.00, OutputPrice: 30.00, ContextWindow: 128000, Capabilities: capVision},
	{ModelID: "gpt-4", ModelName: "GPT-4", Provider: openai, InputPrice: 30.00, OutputPrice: 60.00, ContextWindow: 8192, Capabilities: capTools, IsLatest: true},
	{ModelID: "gpt-3.5-turbo", ModelName: "GPT-3.5 Turbo", Provider: openai, InputPrice: 0.50, OutputPrice: 1.50, ContextWindow: 16385, Capabilities: capTools},
	{ModelID: "o1", ModelName: "o1", Provider: openai, InputPrice: 15.00, OutputPrice: 60.00, ContextWindow: 200000, Capabilities: capReasoning, IsLatest: true},
	{ModelID: "o1-mini", ModelName: "o1-mini", Provider: openai, InputPrice: 3.00, OutputPrice: 12.00, ContextWindow: 128000, Capabilities: capReasoning},
	{ModelID: "o3-mini", ModelName: "o3-mini", Provider: openai, InputPrice: 1.10, OutputPrice: 4.40, ContextWindow: 200000, Capabilities: capReasoning, IsLatest: true},
	{ModelID: "text-embedding-3-small", ModelName: "Embedding 3 Small", Provider: openai, InputPrice: 0.02, OutputPrice: 0, ContextWindow: 8191, Capabilities: capEmbedding},
	{ModelID: "text-embedding-3-large", ModelName: "Embedding 3 Large", Provider: openai, InputPrice: 0.13, OutputPrice: 0, ContextWindow: 8191, Capabilities: capEmbedding},

	// Anthropic
	{ModelID: "claude-opus-4-20250514", ModelName: "Claude Opus 4", Provider: anthropic, InputPrice: 15.00, OutputPrice: 75.00, ContextWindow: 200000, Capabilities: capReasoning, IsLatest: true},
	{ModelID: "claude-sonnet-4-20250514", ModelName: "Claude Sonnet 4", Provider: anthropic, InputPrice: 3.00, OutputPrice: 15.00, ContextWindow: 200000, Capabilities: capReasoning, IsLatest: true},
	{ModelID: "claude-3-7-sonnet-20250219", ModelName: "Claude 3.7 Sonnet", Provider: anthropic, InputPrice: 3.00, OutputPrice: 15.00, ContextWindow: 200000, Capabilities: capReasoning},
	{ModelID: "claude-3-5-sonnet-20241022", ModelName: "Claude 3.5 Sonnet", Provider: anthropic, InputPrice: 3.00, OutputPrice: 15.00, ContextWindow: 200000, Capabilities: capVision},
	{ModelID: "claude-3-5-haiku-20241022", ModelName: "Claude 3.5 Haiku", Provider: anthropic, InputPrice: 0.80, OutputPrice: 4.00, ContextWindow: 200000, Capabilities: capTools, IsLatest: true},
	{ModelID: "claude-3-opus-20240229", ModelName: "Claude 3 Opus", Provider: anthropic, InputPrice: 15.00, OutputPrice: 75.00, ContextWindow: 200000, Capabilities: capVision},
	{ModelID: "claude-3-sonnet-20240229", ModelName: "Claude 3 Sonnet", Provider: anthropic, InputPrice: 3.00, OutputPrice: 15.00, ContextWindow: 200000, Capabilities: capVision},
	{ModelID: "claude-3-haiku-20240307", ModelName: "Claude 3 Haiku", Provider: anthropic, InputPrice: 0.25, OutputPrice: 1.25, ContextWindow: 200000, Capabilities: capVision},

	// AWS Bedrock
	{ModelID: "anthropic.claude-3-5-sonnet-20241022-v2:0", ModelName: "Claude 3.5 Sonnet v2 (Bedrock)", Provider: bedrock, InputPrice: 3.00, OutputPrice: 15.00, ContextWindow: 200000, Capabilities: capVision, IsLatest: true},
	{ModelID: "anthropic.claude-3-opus-20240229-v1:0", ModelName: "Claude 3 Opus (Bedrock)", Provider: bedrock, InputPrice: 15.00, OutputPrice: 75.00, ContextWindow: 200000, Capabilities: capVision},
	{ModelID: "anthropic.claude-3-haiku-20240307-v1:0", ModelName: "Claude 3 Haiku (Bedrock)", Provider: bedrock, InputPrice: 0.25, OutputPrice: 1.25, ContextWindow: 200000, Capabilities: capVision},
	{ModelID: "amazon.nova-pro-v1:0", ModelName: "Amazon Nova Pro", Provider: bedrock, InputPrice: 0.80, OutputPrice: 3.20, ContextWindow: 300000, Capabilities: capVision, IsLatest: true},
	{ModelID: "amazon.nova-lite-v1:0", ModelName: "Amazon Nova Lite", Provider: bedrock, InputPrice: 0.06, OutputPrice: 0.24, ContextWindow: 300000, Capabilities: capVision, IsLatest: true},
	{ModelID: "amazon.nova-micro-v1:0", ModelName: "Amazon Nova Micro", Provider: bedrock, InputPrice: 0.035, OutputPrice: 0.14, ContextWindow: 128000, Capabilities: capText, IsLatest: true},
	{ModelID: "amazon.titan-text-express-v1", ModelName: "Titan Text Express", Provider: bedrock, InputPrice: 0.20, OutputPrice: 0.60, ContextWindow: 8192, Capabilities: capText},
	{ModelID: "meta.llama3-1-70b-instruct-v1:0", ModelName: "Llama 3.1 70B Instruct", Provider: bedrock, InputPrice: 0.72, OutputPrice: 0.72, ContextWindow: 128000, Capabilities: capTools},
	{ModelID: "meta.llama3-1-8b-instruct-v1:0", ModelName: "Llama 3.1 8B Instruct", Provider: bedrock, InputPrice: 0.22, OutputPrice: 0.22, ContextWindow: 128000, Capabilities: capTools},
	{ModelID: "mistral.mistral-large-2402-v1:0", ModelName: "Mistral Large (Bedrock)", Provider: bedrock, InputPrice: 4.00, OutputPrice: 12.00, ContextWindow: 32000, Capabilities: capTools},

	// Google
	{ModelID: "gemini-2.5-pro", ModelName: "Gemini 2.5 Pro", Provider: google, InputPrice: 1.25, OutputPrice: 10.00, ContextWindow: 1048576, Capabilities: capReasoning, IsLatest: true},
	{ModelID: "gemini-2.5-flash", ModelName: "Gemini 2.5 Flash", Provider: google, InputPrice: 0.30, OutputPrice: 2.50, ContextWindow: 1048576, Capabilities: capReasoning, IsLatest: true},
	{ModelID: "gemini-2.0-flash", ModelName: "Gemini 2.0 Flash", Provider: google, InputPrice: 0.10, OutputPrice: 0.40, ContextWindow: 1048576, Capabilities: capVision},
	{ModelID: "gemini-1.5-pro", ModelName: "Gemini 1.5 Pro", Provider: google, InputPrice: 1.25, OutputPrice: 5.00, ContextWindow: 2097152, Capabilities: capVision},
	{ModelID: "gemini-1.5-flash", ModelName: "Gemini 1.5 Flash", Provider: google, InputPrice: 0.075, OutputPrice: 0.30, ContextWindow: 1048576, Capabilities: capVision},

	// Cohere, quoted per 1K tokens
	{ModelID: "command-r-plus", ModelName: "Command R+", Provider: cohere, InputPrice: 0.0025, OutputPrice: 0.01, Unit: Per1KTokens, ContextWindow: 128000, Capabilities: capTools, IsLatest: true},
	{ModelID: "command-r", ModelName: "Command R", Provider: cohere, InputPrice: 0.00015, OutputPrice: 0.0006, Unit: Per1KTokens, ContextWindow: 128000, Capabilities: capTools, IsLatest: true},
	{ModelID: "command-r7b-12-2024", ModelName: "Command R7B", Provider: cohere, InputPrice: 0.0000375, OutputPrice: 0.00015, Unit: Per1KTokens, ContextWindow: 128000, Capabilities: capTools},
	{ModelID: "command-light", ModelName: "Command Light", Provider: cohere, InputPrice: 0.0003, OutputPrice: 0.0006, Unit: Per1KTokens, ContextWindow: 4096, Capabilities: capText},

	// Azure OpenAI
	{ModelID: "gpt-4o", ModelName: "GPT-4o (Azure)", Provider: azure, InputPrice: 2.50, OutputPrice: 10.00, ContextWindow: 128000, Capabilities: capVision},
	{ModelID: "gpt-4o-mini", ModelName: "GPT-4o mini (Azure)", Provider: azure, InputPrice: 0.165, OutputPrice: 0.66, ContextWindow: 128000, Capabilities: capVision},
	{ModelID: "gpt-4", ModelName: "GPT-4 (Azure)", Provider: azure, InputPrice: 30.00, OutputPrice: 60.00, ContextWindow: 8192, Capabilities: capTools},
	{ModelID: "gpt-35-turbo", ModelName: "GPT-3.5 Turbo (Azure)", Provider: azure, InputPrice: 0.50, OutputPrice: 1.50, ContextWindow: 16385, Capabilities: capTools, IsLatest: true},

	// Mistral
	{ModelID: "mistral-large-latest", ModelName: "Mistral Large", Provider: mistral, InputPrice: 2.00, OutputPrice: 6.00, ContextWindow: 128000, Capabilities: capTools, IsLatest: true},
	{ModelID: "mistral-small-latest", ModelName: "Mistral Small", Provider: mistral, InputPrice: 0.20, OutputPrice: 0.60, ContextWindow: 32000, Capabilities: capTools, IsLatest: true},
	{ModelID: "codestral-latest", ModelName: "Codestral", Provider: mistral, InputPrice: 0.30, OutputPrice: 0.90, ContextWindow: 256000, Capabilities: capTools, IsLatest: true},
	{ModelID: "open-mistral-nemo", ModelName: "Mistral NeMo", Provider: mistral, InputPrice: 0.15, OutputPrice: 0.15, ContextWindow: 128000, Capabilities: capText},
	{ModelID: "ministral-8b-latest", ModelName: "Ministral 8B", Provider: mistral, InputPrice: 0.10, OutputPrice: 0.10, ContextWindow: 128000, Capabilities: capText, IsLatest: true},
}

var builtin = sync.OnceValue(func() *Table {
	t, err := NewTable(builtinEntries)
	if err != nil {
		panic("pricing: invalid built-in table: " + err.Error())
	}
	return t
})

// Builtin returns the compiled-in pricing table.
func Builtin() *Table {
	return builtin()
}
