// Package accesstoken provides a server-side lifecycle manager for opaque
// access tokens: issuance bound to a user identity, Redis-backed session
// records with dirty-tracked persistence and sliding expiry, per-request
// validation, and optional client-fingerprint binding to deter token replay.
//
// The package is designed for concurrent server workloads: Manager methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. Each request receives its own freshly deserialized
// [session.Record]; the Redis store is the sole serialization point across
// processes.
//
// # Architecture boundaries
//
// accesstoken is the public surface. It exposes [Manager], [Builder],
// [Config], and value types (CreateSessionInput, AuditEvent, MetricsSnapshot).
// Session persistence lives in the session sub-package, HTTP enforcement in
// middleware, and internal coordination (token material, audit dispatch)
// under internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients or wire-encoding details in its public API.
//   - Implement HTTP routing, password flows, or a user store — the user
//     identity is an opaque string handed in by the caller.
//   - Retry failed store operations; retry policy belongs to the caller.
package accesstoken
