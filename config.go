package accesstoken

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	defaultKeyPrefix = "acst"
	defaultMaxAge    = 20 * time.Minute

	defaultTokenHeader    = "access-token"
	defaultTokenBodyField = "authToken"
	defaultTokenAltHeader = "authToken"
)

// Config defines the full tunable surface of the token manager and the
// authentication gate.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable; the Manager copies them at Build time.
type Config struct {
	// KeyPrefix namespaces every issued token: tokens have the shape
	// "{KeyPrefix}:{userID}:{digest}". Defaults to "acst".
	KeyPrefix string

	// MaxAge is the default session TTL applied when CreateSessionInput does
	// not carry its own. Defaults to 20 minutes.
	MaxAge time.Duration

	// AutoKeepActive extends a session's store TTL on every valid guarded
	// request, independent of content changes. Defaults to true.
	AutoKeepActive bool

	// Namespace is an optional store-level prefix transparently applied to
	// every Redis key. Key scans return namespaced keys; the store strips the
	// namespace before treating the remainder as a logical token.
	Namespace string

	// Fingerprint controls client-fingerprint binding. Disabled by default.
	Fingerprint FingerprintPolicy

	// Token extraction locations, checked in order: TokenHeader, then the
	// TokenBodyField of a JSON request body, then TokenAltHeader.
	TokenHeader    string
	TokenBodyField string
	TokenAltHeader string

	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the buffered audit-event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metric counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		KeyPrefix:      defaultKeyPrefix,
		MaxAge:         defaultMaxAge,
		AutoKeepActive: true,
		TokenHeader:    defaultTokenHeader,
		TokenBodyField: defaultTokenBodyField,
		TokenAltHeader: defaultTokenAltHeader,
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func (c *Config) applyDefaults() {
	d := defaultConfig()
	if c.KeyPrefix == "" {
		c.KeyPrefix = d.KeyPrefix
	}
	if c.MaxAge <= 0 {
		c.MaxAge = d.MaxAge
	}
	if c.TokenHeader == "" {
		c.TokenHeader = d.TokenHeader
	}
	if c.TokenBodyField == "" {
		c.TokenBodyField = d.TokenBodyField
	}
	if c.TokenAltHeader == "" {
		c.TokenAltHeader = d.TokenAltHeader
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = d.Audit.BufferSize
	}
}

// Validate reports the first configuration error, or nil.
func (c *Config) Validate() error {
	if c.KeyPrefix == "" {
		return errors.New("config: key prefix must not be empty")
	}
	if strings.Contains(c.KeyPrefix, ":") {
		return errors.New("config: key prefix must not contain ':'")
	}
	if c.MaxAge <= 0 {
		return errors.New("config: max age must be positive")
	}
	return nil
}

// ParseMaxAge parses a session lifetime expression. Accepted forms are Go
// duration strings ("20m", "1h30m") and bare integers, which are read as
// milliseconds ("1200000"). The zero-value string is an error.
func ParseMaxAge(expr string) (time.Duration, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, errors.New("config: empty max age expression")
	}

	if msec, err := strconv.ParseInt(expr, 10, 64); err == nil {
		if msec <= 0 {
			return 0, errors.New("config: max age must be positive")
		}
		return time.Duration(msec) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(expr)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("config: max age must be positive")
	}
	return d, nil
}
