// Package protocol defines the typed message envelope exchanged between
// frontend contexts and the background orchestrator. Messages are ephemeral
// and never persisted; delivery semantics live in service/channel.
package protocol
