package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotBound is returned by persistence methods on a [Record] that was never
// bound to a [Store].
var ErrNotBound = errors.New("session record not bound to a store")

// Record is the persisted state of one issued token. The exported fields are
// set at issuance (or rehydration) and treated as immutable except for
// Attributes and UpdatedAt; all mutation must be followed by [Record.Touch]
// so the dirty flag reflects unsaved changes.
//
// Each request works on its own Record instance. A single instance must not
// be mutated from multiple goroutines.
type Record struct {
	// Token is the opaque identifier and the store key.
	Token string
	// UserID is the identity bound to the token.
	UserID string
	// Fingerprint is the client binding derived at issuance time, "" when
	// fingerprinting is disabled.
	Fingerprint string
	// IP is the client address seen at issuance.
	IP string
	// Nonce is the random material folded into the token digest. It is
	// persisted but never interpreted after issuance.
	Nonce string

	// CreatedAt and UpdatedAt are epoch milliseconds. UpdatedAt changes if
	// and only if the record is marked dirty and then saved.
	CreatedAt int64
	UpdatedAt int64

	// MaxAge is the store TTL applied on every save and refresh.
	MaxAge time.Duration

	// Attributes carries caller-supplied extra fields.
	Attributes map[string]any

	store *Store
	dirty bool

	dead        bool
	deathReason string
}

// New returns rec bound to store and marked dirty, ready for its first Save.
// Issuance and first persistence are decoupled so callers can enrich
// Attributes before writing.
func New(store *Store, rec Record) *Record {
	rec.store = store
	rec.dirty = true
	return &rec
}

// Bind attaches the store handle to a rehydrated record. It does not change
// the dirty flag.
func (r *Record) Bind(store *Store) {
	r.store = store
}

// Touch marks the record dirty and bumps UpdatedAt. Side effect only; no I/O.
func (r *Record) Touch() {
	r.UpdatedAt = nowMillis()
	r.dirty = true
}

// Dirty reports whether unsaved mutations exist.
func (r *Record) Dirty() bool {
	return r.dirty
}

// SetAttribute stores a caller attribute and marks the record dirty.
func (r *Record) SetAttribute(key string, value any) {
	if r.Attributes == nil {
		r.Attributes = make(map[string]any)
	}
	r.Attributes[key] = value
	r.Touch()
}

// Attribute returns a caller attribute and whether it was present.
func (r *Record) Attribute(key string) (any, bool) {
	v, ok := r.Attributes[key]
	return v, ok
}

// Save writes the serialized durable fields under the token with MaxAge
// expiry, then clears the dirty flag. It is a no-op when the record is clean
// and force is false. This is the only write path for session content; on
// failure the dirty flag stays set for a future attempt.
func (r *Record) Save(ctx context.Context, force bool) error {
	if r.store == nil {
		return ErrNotBound
	}
	if !force && !r.dirty {
		return nil
	}

	data, err := Encode(r)
	if err != nil {
		return err
	}
	if err := r.store.Write(ctx, r.Token, data, r.MaxAge); err != nil {
		return err
	}

	r.dirty = false
	return nil
}

// Refresh resets the store entry's TTL to MaxAge without rewriting content.
// UpdatedAt and the dirty flag are untouched.
func (r *Record) Refresh(ctx context.Context) error {
	if r.store == nil {
		return ErrNotBound
	}
	return r.store.Refresh(ctx, r.Token, r.MaxAge)
}

// Kill flags the record for teardown on its next gate check. The flag and
// reason live in memory only; they are never serialized.
func (r *Record) Kill(reason string) {
	r.dead = true
	r.deathReason = reason
}

// Dead reports whether Kill was called on this instance.
func (r *Record) Dead() bool {
	return r.dead
}

// DeathReason returns the reason passed to Kill, or "".
func (r *Record) DeathReason() string {
	return r.deathReason
}

// Len counts the durable fields Save would emit.
func (r *Record) Len() int {
	n := 0
	for _, present := range []bool{
		r.Token != "",
		r.UserID != "",
		r.Fingerprint != "",
		r.IP != "",
		r.Nonce != "",
		r.CreatedAt != 0,
		r.UpdatedAt != 0,
		r.MaxAge != 0,
		len(r.Attributes) != 0,
	} {
		if present {
			n++
		}
	}
	return n
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
