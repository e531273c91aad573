package middleware

import (
	"context"

	"github.com/valuefe/accesstoken/session"
)

type requestStateContextKey struct{}

// requestState is the per-request carrier the gate injects for downstream
// handlers. The gate re-reads it after the handler returns, so the cleared
// flag must only be touched through ClearSession on the request goroutine.
type requestState struct {
	record      *session.Record
	fingerprint string
	cleared     bool
}

// AccessDataFromContext returns the session record the gate resolved for
// this request. ok is false on unguarded requests and on optional-mode
// requests that carried no valid token.
func AccessDataFromContext(ctx context.Context) (*session.Record, bool) {
	state, ok := ctx.Value(requestStateContextKey{}).(*requestState)
	if !ok || state.record == nil {
		return nil, false
	}
	return state.record, true
}

// FingerprintFromContext returns the fingerprint the gate computed from the
// current request's signals.
func FingerprintFromContext(ctx context.Context) (string, bool) {
	state, ok := ctx.Value(requestStateContextKey{}).(*requestState)
	if !ok {
		return "", false
	}
	return state.fingerprint, true
}

// ClearSession signals the gate to destroy the resolved session after the
// handler returns (logout). It reports whether a guarded session was present
// to clear.
func ClearSession(ctx context.Context) bool {
	state, ok := ctx.Value(requestStateContextKey{}).(*requestState)
	if !ok || state.record == nil {
		return false
	}
	state.cleared = true
	return true
}
