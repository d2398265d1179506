package taskgate

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskgate/taskgate/policy"
	"github.com/taskgate/taskgate/progress"
	"github.com/taskgate/taskgate/service/approval"
	approvalmem "github.com/taskgate/taskgate/service/approval/memory"
	"github.com/taskgate/taskgate/service/channel"
	"github.com/taskgate/taskgate/service/dao/fs"
	"github.com/taskgate/taskgate/service/datastore"
	"github.com/taskgate/taskgate/service/messaging"
	"github.com/taskgate/taskgate/service/orchestrator"
	"github.com/taskgate/taskgate/service/registry"
	"github.com/taskgate/taskgate/service/secret"
)

// Service is the top-level facade. It wires the frontend channel, the
// durable stores and the approval orchestrator, defaulting every layer
// that was not supplied explicitly.
type Service struct {
	config       *Config
	channel      *channel.Service
	store        *datastore.Service
	permissions  approval.Permissions
	journal      *approval.Journal
	policy       *policy.Policy
	registry     *registry.Service
	progress     *progress.Progress
	events       messaging.Queue[approval.Event]
	orchestrator *orchestrator.Service
}

// New creates a Service; with no options everything is in memory.
func New(options ...Option) (*Service, error) {
	srv := &Service{}
	for _, option := range options {
		option(srv)
	}
	if err := srv.init(); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	if s.policy == nil && s.config.Policy != nil {
		aPolicy, err := policy.FromConfig(s.config.Policy)
		if err != nil {
			return err
		}
		s.policy = aPolicy
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.progress == nil {
		s.progress = progress.New()
	}
	orchestratorConfig := orchestrator.DefaultConfig()
	orchestratorConfig.PromptTimeout = s.config.PromptTimeout()
	orchestratorOptions := []orchestrator.Option{
		orchestrator.WithChannel(s.channel),
		orchestrator.WithDataStore(s.store),
		orchestrator.WithPermissions(s.permissions),
		orchestrator.WithJournal(s.journal),
		orchestrator.WithPolicy(s.policy),
		orchestrator.WithRegistry(s.registry),
		orchestrator.WithProgress(s.progress),
		orchestrator.WithConfig(orchestratorConfig),
	}
	if s.events != nil {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithEventQueue(s.events))
	}
	aService, err := orchestrator.New(orchestratorOptions...)
	if err != nil {
		return err
	}
	s.orchestrator = aService
	return nil
}

// ensureBaseSetup defaults the channel and storage layers; when the config
// names a base URL the durable stores are file backed, otherwise in memory.
func (s *Service) ensureBaseSetup() error {
	if s.channel == nil {
		channelConfig := channel.DefaultConfig()
		if s.config.Channel.Buffer > 0 {
			channelConfig.Buffer = s.config.Channel.Buffer
		}
		s.channel = channel.New(channelConfig)
	}
	baseURL := strings.TrimRight(s.config.Store.BaseURL, "/")
	if baseURL == "" {
		if s.store == nil {
			s.store = datastore.NewMemory()
		}
		if s.permissions == nil {
			s.permissions = approvalmem.NewPermissions()
		}
		if s.journal == nil {
			s.journal = approvalmem.NewJournal()
		}
		return nil
	}
	if s.store == nil {
		aStore, err := newFileDataStore(baseURL, s.config.Store)
		if err != nil {
			return err
		}
		s.store = aStore
	}
	if s.permissions == nil {
		recordDAO, err := fs.New[approval.Record](baseURL+"/permissions", func(r *approval.Record) string { return r.ID })
		if err != nil {
			return fmt.Errorf("failed to open permission store: %w", err)
		}
		s.permissions = approval.NewPermissions(recordDAO)
	}
	if s.journal == nil {
		requestDAO, err := fs.New[approval.Request](baseURL+"/journal", func(r *approval.Request) string { return r.ID })
		if err != nil {
			return fmt.Errorf("failed to open prompt journal: %w", err)
		}
		s.journal = approval.NewJournal(requestDAO)
	}
	return nil
}

func newFileDataStore(baseURL string, config StoreConfig) (*datastore.Service, error) {
	entryDAO, err := fs.New[datastore.Entry](baseURL+"/settings", func(e *datastore.Entry) string { return e.Key })
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	relayDAO, err := fs.New[datastore.Relay](baseURL+"/relays", func(r *datastore.Relay) string { return r.Key })
	if err != nil {
		return nil, fmt.Errorf("failed to open relay store: %w", err)
	}
	var options []datastore.Option
	if config.SecretsKey != "" {
		secretsURL := config.SecretsURL
		if secretsURL == "" {
			secretsURL = baseURL + "/secrets"
		}
		vault, err := secret.New(secretsURL, config.SecretsKey)
		if err != nil {
			return nil, fmt.Errorf("failed to open secret vault: %w", err)
		}
		options = append(options, datastore.WithVault(vault, config.SensitiveKeys...))
	}
	return datastore.New(entryDAO, relayDAO, options...), nil
}

// Channel returns the frontend message channel.
func (s *Service) Channel() *channel.Service { return s.channel }

// Connect opens a frontend connection on the shared channel.
func (s *Service) Connect() *channel.Conn { return s.channel.Connect() }

// DataStore returns the durable key/value store.
func (s *Service) DataStore() *datastore.Service { return s.store }

// Permissions returns the remembered-decision store.
func (s *Service) Permissions() approval.Permissions { return s.permissions }

// Registry returns the task-kind type registry.
func (s *Service) Registry() *registry.Service { return s.registry }

// Progress returns the pipeline counter tracker.
func (s *Service) Progress() *progress.Progress { return s.progress }

// Events returns the queue approval lifecycle events are published on, nil
// when none was attached.
func (s *Service) Events() messaging.Queue[approval.Event] { return s.events }

// Orchestrator returns the approval orchestrator.
func (s *Service) Orchestrator() *orchestrator.Service { return s.orchestrator }

// Start begins handling frontend messages and reconciles any prompts left
// pending by a previous run.
func (s *Service) Start(ctx context.Context) error {
	return s.orchestrator.Start(ctx)
}

// Shutdown stops message handling and waits for in-flight tasks.
func (s *Service) Shutdown() {
	s.orchestrator.Shutdown()
	s.channel.Close()
}
