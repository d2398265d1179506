// Package orchestrator implements the background dispatcher that mediates
// between frontend connections and the durable stores: it routes inbound
// messages, decides whether a task needs human approval, drives the
// mutex-serialised prompt handshake and executes approved tasks against the
// datastore, broadcasting every outcome back to the frontends.
package orchestrator
