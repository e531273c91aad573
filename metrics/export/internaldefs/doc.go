// Package internaldefs holds the shared counter definitions consumed by the
// metric exporters, so every backend exposes the same names and help text.
package internaldefs
