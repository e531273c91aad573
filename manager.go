package accesstoken

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/valuefe/accesstoken/internal"
	"github.com/valuefe/accesstoken/internal/audit"
	"github.com/valuefe/accesstoken/session"
)

// Manager issues opaque access tokens, resolves them against the store,
// lists a user's active sessions, and destroys them. It owns the key-naming
// scheme: every token has the shape "{keyPrefix}:{userID}:{digest}", which
// makes prefix-scoped lookup per user possible.
//
// Construct through [Builder.Build]. All methods are safe for concurrent use.
type Manager struct {
	cfg      Config
	store    *session.Store
	messages MessageFormatter
	metrics  *metricsTable
	audit    *audit.Dispatcher
}

// CreateSessionInput carries the issuance parameters for
// [Manager.CreateSession].
type CreateSessionInput struct {
	// UserID is required; issuance fails without it.
	UserID string
	// IP is the client address at issuance, folded into the token digest.
	IP string
	// Fingerprint is the client binding computed by the caller, typically via
	// [Manager.RequestFingerprint] on the login request.
	Fingerprint string
	// MaxAge overrides the configured default TTL when positive.
	MaxAge time.Duration
	// Attributes are merged into the record at creation.
	Attributes map[string]any
}

// CreateSession issues a new session record bound to the store, marked dirty
// and NOT yet persisted: issuance and first persistence are decoupled so
// callers can enrich attributes before the first Save.
//
// The token is "{keyPrefix}:{userID}:{sha256(userID+ip+nonce+timestamp)}".
// Unguessability comes from the 32-byte random nonce; the digest's role is
// uniqueness and obfuscation.
func (m *Manager) CreateSession(input CreateSessionInput) (*session.Record, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUserIDRequired,
			m.messages.FormatMessage(MsgMissingUserID, "UserID is Required"))
	}

	maxAge := input.MaxAge
	if maxAge <= 0 {
		maxAge = m.cfg.MaxAge
	}

	nonce, err := internal.Nonce()
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	token := m.cfg.KeyPrefix + ":" + input.UserID + ":" +
		internal.TokenDigest(input.UserID, input.IP, nonce, now)

	rec := session.New(m.store, session.Record{
		Token:       token,
		UserID:      input.UserID,
		Fingerprint: input.Fingerprint,
		IP:          input.IP,
		Nonce:       nonce,
		CreatedAt:   now,
		UpdatedAt:   now,
		MaxAge:      maxAge,
		Attributes:  input.Attributes,
	})

	m.CountMetric(MetricSessionCreated)
	m.EmitAudit(context.Background(), AuditEvent{
		EventType: AuditSessionCreated,
		UserID:    input.UserID,
		Token:     token,
		IP:        input.IP,
		Success:   true,
	})

	return rec, nil
}

// FindByToken resolves a token to its live record, or nil without error when
// there is no session: empty tokens and tokens outside the configured key
// prefix are rejected before any store call (the manager must not be usable
// to probe arbitrary keys), and a corrupt stored blob is deliberately
// indistinguishable from a miss. Transport failures surface as
// [session.ErrStoreUnavailable].
func (m *Manager) FindByToken(ctx context.Context, token string) (*session.Record, error) {
	if token == "" || !m.ownsToken(token) {
		return nil, nil
	}

	data, err := m.store.Read(ctx, token)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	rec, err := session.Decode(data)
	if err != nil {
		// corrupt content reads as "no session"
		return nil, nil
	}
	rec.Bind(m.store)

	m.CountMetric(MetricTokenResolved)
	return rec, nil
}

// ListByUserID scans the user's token prefix and resolves each key, dropping
// entries that vanish or fail to decode between scan and read. Results are
// ordered by CreatedAt descending (last login first, token as tie-break) and
// skipCount entries are cut from the front. The result is never nil.
//
// This is a SCAN-backed admin operation; it has no consistency guarantee
// across its scan-then-read sequence and must not sit on request hot paths.
func (m *Manager) ListByUserID(ctx context.Context, userID string, skipCount int) ([]*session.Record, error) {
	records := make([]*session.Record, 0)
	if userID == "" {
		return records, nil
	}

	tokens, err := m.store.ScanTokens(ctx, m.cfg.KeyPrefix+":"+userID+":*")
	if err != nil {
		return nil, err
	}

	for _, token := range tokens {
		rec, err := m.FindByToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt > records[j].CreatedAt
		}
		return records[i].Token > records[j].Token
	})

	if skipCount > 0 {
		if skipCount >= len(records) {
			return records[:0], nil
		}
		records = records[skipCount:]
	}

	return records, nil
}

// Destroy deletes the session entry unconditionally. Deleting an absent key
// is not an error; an empty token is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := m.store.Delete(ctx, token); err != nil {
		return err
	}

	m.CountMetric(MetricSessionDestroyed)
	m.EmitAudit(ctx, AuditEvent{
		EventType: AuditSessionDestroyed,
		Token:     token,
		Success:   true,
	})
	return nil
}

// RequestFingerprint derives the client fingerprint for r under the
// configured policy, or "" when the policy is disabled.
func (m *Manager) RequestFingerprint(r *http.Request) string {
	return m.cfg.Fingerprint.Compute(r)
}

// FingerprintEnabled reports whether fingerprint binding is enforced.
func (m *Manager) FingerprintEnabled() bool {
	return m.cfg.Fingerprint.Enabled()
}

// AutoKeepActive reports whether the gate extends the TTL on every valid
// request.
func (m *Manager) AutoKeepActive() bool {
	return m.cfg.AutoKeepActive
}

// Config returns a copy of the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Messages returns the configured message formatter.
func (m *Manager) Messages() MessageFormatter {
	return m.messages
}

// Ping reports store availability and round-trip latency.
func (m *Manager) Ping(ctx context.Context) (time.Duration, error) {
	return m.store.Ping(ctx)
}

// EmitAudit dispatches an audit event, filling in ID and timestamp when
// absent. It never blocks the caller when drop-if-full buffering is
// configured, and is a no-op when auditing is disabled.
func (m *Manager) EmitAudit(ctx context.Context, event AuditEvent) {
	if m.audit == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	m.audit.Emit(ctx, audit.Event(event))
}

// CountMetric increments one metric counter. No-op when metrics are
// disabled.
func (m *Manager) CountMetric(id MetricID) {
	m.metrics.inc(id)
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.snapshot()
}

// AuditDropped returns the count of audit events discarded because the
// dispatch buffer was full.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// Close drains and stops the audit dispatcher. The manager must not be used
// after Close.
func (m *Manager) Close() {
	m.audit.Close()
}

func (m *Manager) ownsToken(token string) bool {
	prefix := m.cfg.KeyPrefix + ":"
	return len(token) > len(prefix) && token[:len(prefix)] == prefix
}
