// Costkatana tracks, estimates and optimizes the cost of LLM API calls.
//
// Usage:
//
//	# Estimate the cost of a prompt
//	costkatana estimate --model gpt-4o-mini "Summarize this article"
//
//	# Get prompt-level optimization suggestions
//	costkatana optimize --model gpt-4o "Please could you kindly summarize..."
//
//	# Track usage records from a JSON file (or stdin)
//	costkatana track usage.json
//
//	# Markdown cost report for one user
//	costkatana report --user alice --since 2025-03-01
//
//	# Export records as CSV
//	costkatana export --format csv --file usage.csv
//
// Without --config, ./costkatana.yaml is used when present. Otherwise the
// defaults apply and records are kept in ./costkatana-usage.json.
package main

func main() {
	Execute()
}
