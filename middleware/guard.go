package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	accesstoken "github.com/valuefe/accesstoken"
	"github.com/valuefe/accesstoken/session"
)

// Options parameterizes the gate.
type Options struct {
	// Optional lets requests without a resolvable session proceed to the
	// handler with no identity attached, instead of rejecting them.
	Optional bool
}

// Body sniffing for the token field is capped; a request body larger than
// this is treated as carrying no token.
const maxTokenBodyBytes = 1 << 20

// Guard returns the authentication gate. Per request it extracts a candidate
// token (header, JSON body field, alternate header — first non-empty wins),
// resolves it through mgr, enforces liveness and fingerprint binding, and
// runs the wrapped handler with the record attached to the request context.
//
// After the handler returns the gate persists: a session cleared via
// [ClearSession] is destroyed; otherwise the record is saved if dirty and,
// under auto keep-active, its TTL refreshed even when nothing changed.
// Post-handler persistence is best-effort — failures go to the audit sink
// and never alter the handler's response. Pre-check store failures are hard
// failures (503): a down store must not read as an invalid token.
func Guard(mgr *accesstoken.Manager, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mgr == nil {
				http.Error(w, accesstoken.ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}

			cfg := mgr.Config()
			token := extractToken(r, cfg)
			if token == "" {
				if opts.Optional {
					next.ServeHTTP(w, r)
					return
				}
				mgr.CountMetric(accesstoken.MetricTokenMissing)
				mgr.EmitAudit(r.Context(), accesstoken.AuditEvent{
					EventType: accesstoken.AuditTokenMissing,
					IP:        accesstoken.ClientIP(r),
				})
				reject(w, mgr, accesstoken.MsgMissingAccessToken, "AccessToken is Required")
				return
			}

			rec, err := mgr.FindByToken(r.Context(), token)
			if err != nil {
				storeFailure(w)
				return
			}
			if rec == nil {
				if opts.Optional {
					next.ServeHTTP(w, r)
					return
				}
				mgr.CountMetric(accesstoken.MetricTokenInvalid)
				mgr.EmitAudit(r.Context(), accesstoken.AuditEvent{
					EventType: accesstoken.AuditTokenInvalid,
					Token:     token,
					IP:        accesstoken.ClientIP(r),
				})
				reject(w, mgr, accesstoken.MsgInvalidAccessToken, "AccessToken Is Invalid")
				return
			}

			if rec.Dead() {
				if err := mgr.Destroy(r.Context(), rec.Token); err != nil {
					storeFailure(w)
					return
				}
				mgr.CountMetric(accesstoken.MetricSessionDead)
				mgr.EmitAudit(r.Context(), accesstoken.AuditEvent{
					EventType: accesstoken.AuditSessionDead,
					UserID:    rec.UserID,
					Token:     rec.Token,
					Error:     rec.DeathReason(),
				})
				http.Error(w, rec.DeathReason(), http.StatusUnauthorized)
				return
			}

			fingerprint := mgr.RequestFingerprint(r)
			if mgr.FingerprintEnabled() && rec.Fingerprint != fingerprint {
				if err := mgr.Destroy(r.Context(), rec.Token); err != nil {
					storeFailure(w)
					return
				}
				mgr.CountMetric(accesstoken.MetricFingerprintMismatch)
				mgr.EmitAudit(r.Context(), accesstoken.AuditEvent{
					EventType: accesstoken.AuditFingerprintMismatch,
					UserID:    rec.UserID,
					Token:     rec.Token,
					IP:        accesstoken.ClientIP(r),
				})
				reject(w, mgr, accesstoken.MsgInvalidFingerprint, "Client fingerprint is changed!")
				return
			}

			state := &requestState{record: rec, fingerprint: fingerprint}
			ctx := context.WithValue(r.Context(), requestStateContextKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))

			// Client cancellation aborts persistence: a half-applied mutation
			// must never be treated as committed. The dirty flag stays set.
			if ctx.Err() != nil {
				return
			}

			if state.cleared || rec.Dead() {
				if rec.Dead() {
					mgr.CountMetric(accesstoken.MetricSessionDead)
					mgr.EmitAudit(ctx, accesstoken.AuditEvent{
						EventType: accesstoken.AuditSessionDead,
						UserID:    rec.UserID,
						Token:     rec.Token,
						Error:     rec.DeathReason(),
					})
				}
				if err := mgr.Destroy(ctx, rec.Token); err != nil {
					postProcessFailure(ctx, mgr, rec, err)
				}
				return
			}

			wasDirty := rec.Dirty()
			if err := rec.Save(ctx, false); err != nil {
				postProcessFailure(ctx, mgr, rec, err)
			} else if wasDirty {
				mgr.CountMetric(accesstoken.MetricSessionSaved)
			}

			if mgr.AutoKeepActive() {
				if err := rec.Refresh(ctx); err != nil {
					postProcessFailure(ctx, mgr, rec, err)
				} else {
					mgr.CountMetric(accesstoken.MetricSessionRefreshed)
				}
			}
		})
	}
}

func extractToken(r *http.Request, cfg accesstoken.Config) string {
	if v := r.Header.Get(cfg.TokenHeader); v != "" {
		return v
	}
	if v := tokenFromBody(r, cfg.TokenBodyField); v != "" {
		return v
	}
	return r.Header.Get(cfg.TokenAltHeader)
}

// tokenFromBody peeks a JSON request body for the configured token field.
// The body is buffered and restored so the wrapped handler can still read it.
func tokenFromBody(r *http.Request, field string) string {
	if field == "" || r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || contentType != "application/json" {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return ""
	}

	var payload map[string]any
	if json.Unmarshal(buf, &payload) != nil {
		return ""
	}
	token, _ := payload[field].(string)
	return token
}

func reject(w http.ResponseWriter, mgr *accesstoken.Manager, msgID, defaultMessage string) {
	http.Error(w, mgr.Messages().FormatMessage(msgID, defaultMessage), http.StatusUnauthorized)
}

func storeFailure(w http.ResponseWriter) {
	http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
}

func postProcessFailure(ctx context.Context, mgr *accesstoken.Manager, rec *session.Record, err error) {
	mgr.CountMetric(accesstoken.MetricPostProcessFailed)
	mgr.EmitAudit(ctx, accesstoken.AuditEvent{
		EventType: accesstoken.AuditPostProcessFailed,
		UserID:    rec.UserID,
		Token:     rec.Token,
		Error:     err.Error(),
	})
}
