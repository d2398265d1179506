// Package emitter provides a generic publish/subscribe registry keyed by
// string topic, with one-shot and deadline-bound subscriptions. The approval
// path uses the dedicated resolver table in service/gate instead; this
// emitter serves the looser observation surfaces (orchestrator lifecycle
// events, wildcard listeners).
package emitter
