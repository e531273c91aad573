// Package session provides the dirty-tracked session record and its
// Redis-backed persistence for opaque access tokens.
//
// # Persistence contract
//
// A [Record] is stored as a JSON object of its durable fields under the
// literal token string, with a Redis TTL equal to the record's MaxAge at the
// moment of the last successful save or refresh. Redis expiry is the only
// reaper — there is no background sweep. Content writes go through
// [Record.Save] (SET with millisecond expiry); [Record.Refresh] resets the
// TTL without rewriting content so idle-but-valid sessions can be kept alive
// cheaply.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Record] model.
// It does NOT derive tokens, enforce fingerprints, or make authorization
// decisions — those responsibilities belong to the Manager and the gate.
//
// # What this package must NOT do
//
//   - Import accesstoken or middleware (no upward imports).
//   - Persist the transient kill flags; Kill is an in-memory signal only.
//   - Retry failed Redis calls.
package session
