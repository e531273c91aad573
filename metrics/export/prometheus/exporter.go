package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	accesstoken "github.com/valuefe/accesstoken"
	"github.com/valuefe/accesstoken/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() accesstoken.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders the manager's counters in Prometheus text
// exposition format. Rendering is a point-in-time snapshot read; nothing is
// pushed or registered globally.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates an exporter reading from the given manager.
func NewPrometheusExporter(mgr *accesstoken.Manager) *PrometheusExporter {
	return &PrometheusExporter{source: mgr}
}

// NewPrometheusExporterFromSource creates an exporter from a custom snapshot
// source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves the current metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current counters in text exposition format. A source
// with no activity (all counters zero, no drops) renders to the empty string
// so disabled-metrics deployments expose nothing.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if snapshot == (accesstoken.MetricsSnapshot{}) && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range internaldefs.CounterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Get(def.ID))
	}
	writeCounter(&b, "accesstoken_audit_dropped_total",
		"Dropped audit events due to dispatcher backpressure.", dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
