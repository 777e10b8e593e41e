// Package tracker records LLM usage.
//
// Track validates and normalizes a record, prunes expired records when a
// retention window is configured, saves the record and updates the
// per-user statistics cache. With a backend.Syncer set, every saved record
// is forwarded; sync failures never fail Track.
package tracker
