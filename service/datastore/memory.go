package datastore

import (
	"github.com/taskgate/taskgate/service/dao/store"
)

func entryKey(e *Entry) string { return e.Key }
func relayKey(r *Relay) string { return r.Key }

// NewMemory creates an in-memory datastore, the default for tests and
// ephemeral deployments.
func NewMemory(options ...Option) *Service {
	return New(
		store.NewMemoryStore[string, Entry](entryKey),
		store.NewMemoryStore[string, Relay](relayKey),
		options...,
	)
}
