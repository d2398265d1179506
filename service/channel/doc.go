// Package channel implements the typed-message transport between the
// background orchestrator and its frontend connections: at-most-once
// delivery, FIFO per sender, unordered across senders, with last-message
// coalescing in each direction. Reliability beyond that is the
// orchestrator's concern.
package channel
