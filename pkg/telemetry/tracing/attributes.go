package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanCompletion  = "costkatana.completion"
	SpanTrack       = "costkatana.track"
	SpanOptimize    = "costkatana.optimize"
	SpanSuggestions = "costkatana.suggestions"
	SpanReport      = "costkatana.report"
)

// Attribute keys. Custom keys use the "costkatana." namespace.
const (
	AttrProvider = "costkatana.provider"
	AttrModel    = "costkatana.model"
	AttrUser     = "costkatana.user"
	AttrSession  = "costkatana.session"

	AttrTokensPrompt     = "costkatana.tokens.prompt"
	AttrTokensCompletion = "costkatana.tokens.completion"
	AttrTokensTotal      = "costkatana.tokens.total"

	AttrCost         = "costkatana.cost.total"
	AttrCostCurrency = "costkatana.cost.currency"

	AttrRecords     = "costkatana.records"
	AttrSuggestions = "costkatana.suggestions"
	AttrErrorType   = "costkatana.error.type"
)

// ProviderAttributes returns the provider and model attributes.
func ProviderAttributes(provider, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	}
}

// SetUserAttributes sets the user and session attributes when present.
func SetUserAttributes(span trace.Span, userID, sessionID string) {
	if userID != "" {
		span.SetAttributes(attribute.String(AttrUser, userID))
	}
	if sessionID != "" {
		span.SetAttributes(attribute.String(AttrSession, sessionID))
	}
}

// SetUsageAttributes sets token counts and the priced cost in USD.
func SetUsageAttributes(span trace.Span, promptTokens, completionTokens int, cost float64) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
		attribute.Float64(AttrCost, cost),
		attribute.String(AttrCostCurrency, "USD"),
	)
}

// SetErrorType tags the span with the error class used by metrics.
func SetErrorType(span trace.Span, err error) {
	if typed, ok := err.(interface{ ErrorType() string }); ok {
		span.SetAttributes(attribute.String(AttrErrorType, typed.ErrorType()))
	}
}
