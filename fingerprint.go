package accesstoken

import (
	"net"
	"net/http"
	"strings"

	"github.com/valuefe/accesstoken/internal"
)

const (
	deviceUUIDHeader = "device-uuid"
	userAgentHeader  = "user-agent"
)

// FingerprintPolicy binds sessions to client request signals. A policy is
// either a caller-supplied Func, or a declarative hash over the selected
// subset of {device UUID header, client IP, user agent}; disabled fields
// contribute the empty string to the hash input.
//
// The policy is applied both at issuance and at check time, so changing the
// selected fields after sessions were issued silently invalidates the old
// fingerprints. That is an operational caveat, not a bug: affected sessions
// are destroyed on their next guarded request.
type FingerprintPolicy struct {
	// Func, when set, overrides the declarative fields entirely.
	Func func(r *http.Request) string

	DeviceUUID bool
	IP         bool
	UserAgent  bool
}

// Enabled reports whether any fingerprint source is configured.
func (p FingerprintPolicy) Enabled() bool {
	return p.Func != nil || p.DeviceUUID || p.IP || p.UserAgent
}

// Compute derives the fingerprint for the current request. It returns ""
// when the policy is disabled.
func (p FingerprintPolicy) Compute(r *http.Request) string {
	if p.Func != nil {
		return p.Func(r)
	}
	if !p.Enabled() {
		return ""
	}

	var deviceID, ip, userAgent string
	if p.DeviceUUID {
		deviceID = r.Header.Get(deviceUUIDHeader)
	}
	if p.IP {
		ip = ClientIP(r)
	}
	if p.UserAgent {
		userAgent = r.Header.Get(userAgentHeader)
	}

	return internal.HashFingerprint(deviceID, ip, userAgent)
}

// ClientIP resolves the client address for fingerprinting and audit events:
// X-Real-IP, then the first X-Forwarded-For hop, then the RemoteAddr host.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
