// Package export writes usage records as JSON or CSV.
//
// JSON output is always an array, so an empty record set encodes as []. CSV
// output has a fixed column order and leaves out prompt and completion text:
//
//	userId,timestamp,provider,model,promptTokens,completionTokens,totalTokens,estimatedCost,duration,sessionId
//
// The duration column holds the response time in milliseconds. ParseCSV
// reads that layout back into records.
package export
