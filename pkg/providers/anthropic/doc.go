// Package anthropic implements the Anthropic Messages API adapter.
//
// System messages are lifted into the request's system field, the
// remaining messages must start with a user turn and alternate, and
// max_tokens defaults to 4096 because the API requires it.
package anthropic
