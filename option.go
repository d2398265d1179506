package taskgate

import (
	"github.com/taskgate/taskgate/policy"
	"github.com/taskgate/taskgate/progress"
	"github.com/taskgate/taskgate/service/approval"
	"github.com/taskgate/taskgate/service/channel"
	"github.com/taskgate/taskgate/service/datastore"
	"github.com/taskgate/taskgate/service/messaging"
	"github.com/taskgate/taskgate/service/registry"
)

// Option customises the Service.
type Option func(*Service)

// WithConfig supplies a full configuration document.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithChannel replaces the default frontend channel.
func WithChannel(ch *channel.Service) Option {
	return func(s *Service) { s.channel = ch }
}

// WithDataStore replaces the default key/value store.
func WithDataStore(store *datastore.Service) Option {
	return func(s *Service) { s.store = store }
}

// WithPermissions replaces the default remembered-decision store.
func WithPermissions(permissions approval.Permissions) Option {
	return func(s *Service) { s.permissions = permissions }
}

// WithJournal replaces the default prompt journal.
func WithJournal(journal *approval.Journal) Option {
	return func(s *Service) { s.journal = journal }
}

// WithPolicy applies a static approval policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithRegistry replaces the default task-kind registry.
func WithRegistry(r *registry.Service) Option {
	return func(s *Service) { s.registry = r }
}

// WithEventQueue attaches a queue receiving approval lifecycle events.
func WithEventQueue(q messaging.Queue[approval.Event]) Option {
	return func(s *Service) { s.events = q }
}

// WithProgress replaces the default counter tracker.
func WithProgress(p *progress.Progress) Option {
	return func(s *Service) { s.progress = p }
}
