// Package progress keeps aggregated approval-flow counters for a running
// orchestrator. Consumers can observe counter changes uniformly regardless
// of whether they poll snapshots or register an onChange callback.
package progress
