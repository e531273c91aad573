package internaldefs

import (
	accesstoken "github.com/valuefe/accesstoken"
)

// CounterDef names one manager counter for exporters. The Name is the
// exposition-format metric name shared by every export backend.
type CounterDef struct {
	ID   accesstoken.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical counter table consumed by exporters.
var CounterDefs = []CounterDef{
	{ID: accesstoken.MetricSessionCreated, Name: "accesstoken_session_created_total", Help: "Issued sessions."},
	{ID: accesstoken.MetricTokenResolved, Name: "accesstoken_token_resolved_total", Help: "Tokens resolved to a live session."},
	{ID: accesstoken.MetricTokenMissing, Name: "accesstoken_token_missing_total", Help: "Guarded requests carrying no token."},
	{ID: accesstoken.MetricTokenInvalid, Name: "accesstoken_token_invalid_total", Help: "Presented tokens that resolved to no session."},
	{ID: accesstoken.MetricSessionDead, Name: "accesstoken_session_dead_total", Help: "Sessions destroyed by the dead-check."},
	{ID: accesstoken.MetricFingerprintMismatch, Name: "accesstoken_fingerprint_mismatch_total", Help: "Sessions destroyed for client fingerprint drift."},
	{ID: accesstoken.MetricSessionDestroyed, Name: "accesstoken_session_destroyed_total", Help: "Explicit session destructions."},
	{ID: accesstoken.MetricSessionSaved, Name: "accesstoken_session_saved_total", Help: "Post-handler saves that wrote content."},
	{ID: accesstoken.MetricSessionRefreshed, Name: "accesstoken_session_refreshed_total", Help: "Keep-alive TTL refreshes."},
	{ID: accesstoken.MetricPostProcessFailed, Name: "accesstoken_postprocess_failed_total", Help: "Best-effort persistence failures after response."},
}
