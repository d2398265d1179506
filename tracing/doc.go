// Package tracing wraps OpenTelemetry so the rest of the code base can open
// and close spans through a couple of helpers without importing the upstream
// packages directly. The default exporter writes to stdout or a file; any
// SDK span exporter can be installed instead.
package tracing
