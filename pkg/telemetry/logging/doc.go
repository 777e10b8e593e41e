// Package logging provides structured logging for the CostKatana library.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - A component prefix on every entry
//   - Redaction of provider API keys and bearer tokens
//   - Context-aware logging with user, session, and request identifiers
//
// There is no package-level logger. Every component receives a *Logger in
// its constructor; tests pass Nop().
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    Prefix:        "costkatana",
//	    RedactSecrets: true,
//	})
//
//	logger.Info("usage tracked",
//	    "provider", "openai",
//	    "model", "gpt-4o",
//	    "cost_usd", 0.0042,
//	)
//
//	ctx = logging.WithUserID(ctx, "user-42")
//	logger.InfoContext(ctx, "analytics computed") // includes user_id
//
// # Redaction
//
// With RedactSecrets enabled, string values matching known key shapes are
// masked before they reach the handler:
//
//   - OpenAI keys: sk-abc123 → sk-***
//   - Anthropic keys: sk-ant-api03-... → sk-***
//   - AWS access keys: AKIA... → AKIA***
//   - Bearer tokens: Bearer xyz → Bearer ***
//
// Values under sensitive key names (api_key, token, secret, authorization)
// are masked regardless of their shape.
package logging
