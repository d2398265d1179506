package orchestrator

import (
	"github.com/taskgate/taskgate/policy"
	"github.com/taskgate/taskgate/progress"
	"github.com/taskgate/taskgate/service/approval"
	"github.com/taskgate/taskgate/service/channel"
	"github.com/taskgate/taskgate/service/datastore"
	"github.com/taskgate/taskgate/service/emitter"
	"github.com/taskgate/taskgate/service/messaging"
	"github.com/taskgate/taskgate/service/registry"
)

// Option customises the orchestrator service.
type Option func(*Service)

// WithChannel attaches the frontend message channel.
func WithChannel(ch *channel.Service) Option {
	return func(s *Service) { s.channel = ch }
}

// WithDataStore attaches the durable key/value store.
func WithDataStore(store *datastore.Service) Option {
	return func(s *Service) { s.store = store }
}

// WithPermissions attaches the remembered-decision store.
func WithPermissions(permissions approval.Permissions) Option {
	return func(s *Service) { s.permissions = permissions }
}

// WithJournal attaches the durable prompt journal.
func WithJournal(journal *approval.Journal) Option {
	return func(s *Service) { s.journal = journal }
}

// WithPolicy applies a static approval policy consulted before the
// permission store.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithRegistry attaches the task-kind type registry.
func WithRegistry(r *registry.Service) Option {
	return func(s *Service) { s.registry = r }
}

// WithEmitter attaches the correlation emitter lifecycle events are
// published on.
func WithEmitter(e *emitter.Service) Option {
	return func(s *Service) { s.emitter = e }
}

// WithEventQueue attaches a queue receiving approval lifecycle events.
func WithEventQueue(q messaging.Queue[approval.Event]) Option {
	return func(s *Service) { s.events = q }
}

// WithProgress attaches a counter tracker.
func WithProgress(p *progress.Progress) Option {
	return func(s *Service) { s.progress = p }
}

// WithConfig overrides the default configuration.
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}
