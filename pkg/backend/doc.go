// Package backend syncs tracked usage records to the hosted CostKatana
// backend.
//
// The tracker calls a Syncer after every saved record. Client is the HTTP
// implementation: it posts the record JSON to {base_url}/api/usage/track
// with a bearer token and a fixed timeout, without retries.
package backend
