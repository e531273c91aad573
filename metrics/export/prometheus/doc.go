// Package prometheus renders the manager's metric counters in Prometheus
// text exposition format.
//
// [NewPrometheusExporter] accepts a [accesstoken.Manager] and exposes an
// [http.Handler] suitable for mounting as a /metrics endpoint. Counter names
// are prefixed accesstoken_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the
//     Handler.
//   - Mutate manager state.
package prometheus
