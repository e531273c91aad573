package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedRecord is returned by [Decode] for blobs that are not
// well-formed serialized records. Callers resolving tokens treat it as "no
// session", never as a hard error, so forged or truncated blobs are
// indistinguishable from misses.
var ErrMalformedRecord = errors.New("malformed session record")

// wireRecord is the persisted layout. Field names are wire-stable; absent
// fields are omitted so a record is never partially persisted.
type wireRecord struct {
	Token       string         `json:"token"`
	UserID      string         `json:"userId"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	IP          string         `json:"ip,omitempty"`
	Nonce       string         `json:"nonce,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
	MaxAge      int64          `json:"maxAge"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Encode serializes the durable fields of a [Record]. Internal state (store
// handle, dirty flag, kill flags) never reaches the wire.
func Encode(r *Record) ([]byte, error) {
	w := wireRecord{
		Token:       r.Token,
		UserID:      r.UserID,
		Fingerprint: r.Fingerprint,
		IP:          r.IP,
		Nonce:       r.Nonce,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		MaxAge:      r.MaxAge.Milliseconds(),
		Attributes:  r.Attributes,
	}

	return json.Marshal(w)
}

// Decode rehydrates a stored blob into an unbound, clean [Record]. Any blob
// that fails to parse, or lacks token or user identity, is
// [ErrMalformedRecord].
func Decode(data []byte) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if w.Token == "" || w.UserID == "" {
		return nil, fmt.Errorf("%w: missing token or user id", ErrMalformedRecord)
	}

	return &Record{
		Token:       w.Token,
		UserID:      w.UserID,
		Fingerprint: w.Fingerprint,
		IP:          w.IP,
		Nonce:       w.Nonce,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		MaxAge:      time.Duration(w.MaxAge) * time.Millisecond,
		Attributes:  w.Attributes,
	}, nil
}
