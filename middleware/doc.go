// Package middleware exposes the HTTP authentication gate: a per-request
// state machine that extracts a token, resolves it through the Manager,
// enforces liveness and fingerprint binding, hands the session record to the
// wrapped handler, and persists mutations afterwards.
//
// # Guards
//
//   - [Guard] — the gate, parameterized by [Options].
//   - [Require] — rejects requests without a valid session.
//   - [Optional] — proceeds without an identity on missing/invalid tokens.
//
// Downstream handlers read the session with [AccessDataFromContext], the
// current fingerprint with [FingerprintFromContext], and signal logout with
// [ClearSession].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager and Record calls. It
// does NOT derive tokens or touch Redis directly, and it makes no
// authorization decisions beyond pass/reject.
//
// # What this package must NOT do
//
//   - Mutate any shared ambient type; request state rides on the request
//     context under an unexported key.
//   - Mask a handler's success response with a post-processing persistence
//     failure; those are emitted to the audit sink and otherwise swallowed.
//   - Treat a down store as an invalid token (503, never 401).
package middleware
