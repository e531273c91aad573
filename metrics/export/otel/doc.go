// Package otel exports the manager's metric counters through an
// OpenTelemetry meter as observable (pull-based) instruments.
package otel
