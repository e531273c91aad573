package middleware

import (
	"net/http"

	accesstoken "github.com/valuefe/accesstoken"
)

// Require returns the gate in mandatory mode: requests without a valid
// session are rejected before the handler runs.
func Require(mgr *accesstoken.Manager) func(http.Handler) http.Handler {
	return Guard(mgr, Options{})
}

// Optional returns the gate in optional mode: a missing or unresolvable
// token proceeds to the handler without an identity. All other checks
// (dead records, fingerprint binding) still apply to sessions that do
// resolve.
func Optional(mgr *accesstoken.Manager) func(http.Handler) http.Handler {
	return Guard(mgr, Options{Optional: true})
}
