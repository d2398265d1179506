// Package memory provides in-memory approval stores, used by default and in
// tests; durable deployments swap in the filesystem DAO instead.
package memory

import (
	approval "github.com/taskgate/taskgate/service/approval"
	"github.com/taskgate/taskgate/service/dao/store"
)

func recordKey(r *approval.Record) string   { return r.ID }
func requestKey(r *approval.Request) string { return r.ID }

// NewPermissions returns an in-memory permission store.
func NewPermissions() approval.Permissions {
	return approval.NewPermissions(store.NewMemoryStore[string, approval.Record](recordKey))
}

// NewJournal returns an in-memory prompt journal.
func NewJournal() *approval.Journal {
	return approval.NewJournal(store.NewMemoryStore[string, approval.Request](requestKey))
}
