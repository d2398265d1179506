package datastore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/toolbox"

	"github.com/taskgate/taskgate/internal/clock"
	"github.com/taskgate/taskgate/internal/idgen"
	"github.com/taskgate/taskgate/model/task"
	"github.com/taskgate/taskgate/service/dao"
	"github.com/taskgate/taskgate/service/secret"
)

// Redacted replaces sensitive values in listings; the real value lives in
// the vault.
const Redacted = "********"

// Entry is one stored key/value pair.
type Entry struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	CreatedAt string      `json:"createdAt,omitempty"`
}

// Relay is one configured outbound endpoint.
type Relay struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Service is the durable generic key/value store plus the outbound endpoint
// list. Only the orchestrator writes to it; frontend contexts read through
// broadcast snapshots.
type Service struct {
	data      dao.Service[string, Entry]
	relays    dao.Service[string, Relay]
	vault     *secret.Vault
	sensitive map[string]bool
}

// Option customises the datastore.
type Option func(*Service)

// WithVault routes the listed keys through the encrypting vault instead of
// the plain store.
func WithVault(vault *secret.Vault, sensitiveKeys ...string) Option {
	return func(s *Service) {
		s.vault = vault
		for _, key := range sensitiveKeys {
			s.sensitive[strings.ToLower(key)] = true
		}
	}
}

// New creates a datastore over the supplied DAOs.
func New(data dao.Service[string, Entry], relays dao.Service[string, Relay], options ...Option) *Service {
	s := &Service{data: data, relays: relays, sensitive: map[string]bool{}}
	for _, option := range options {
		option(s)
	}
	return s
}

// Get returns the entry stored under key, or nil when absent. Sensitive keys
// resolve through the vault.
func (s *Service) Get(ctx context.Context, key string) (*Entry, error) {
	if key == "" {
		return nil, dao.ErrInvalidID
	}
	if s.isSensitive(key) {
		value, err := s.vault.Get(ctx, key)
		if errors.Is(err, dao.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &Entry{Key: key, Value: value}, nil
	}
	entry, err := s.data.Load(ctx, key)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, nil
	}
	return entry, err
}

// GetAll returns every stored entry; sensitive values appear redacted.
func (s *Service) GetAll(ctx context.Context) ([]*Entry, error) {
	return s.data.List(ctx)
}

// Put stores value under the supplied key, generating one when absent, and
// returns the key written. Sensitive values are encrypted at rest and only a
// redacted placeholder enters the listing store.
func (s *Service) Put(ctx context.Context, value interface{}, key ...string) (string, error) {
	id := ""
	if len(key) > 0 {
		id = key[0]
	}
	if id == "" {
		id = idgen.New()
	}
	entry := &Entry{Key: id, Value: value, CreatedAt: clock.Now().Format(timeLayout)}
	if s.isSensitive(id) {
		if err := s.vault.Put(ctx, id, toolbox.AsString(value)); err != nil {
			return "", err
		}
		entry.Value = Redacted
	}
	if err := s.data.Save(ctx, entry); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes the entry stored under key; absent keys are a no-op.
func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	if s.isSensitive(key) {
		if err := s.vault.Delete(ctx, key); err != nil {
			return err
		}
	}
	err := s.data.Delete(ctx, key)
	if errors.Is(err, dao.ErrNotFound) {
		return nil
	}
	return err
}

// PutTask persists an executed task payload under its storage key.
func (s *Service) PutTask(ctx context.Context, t *task.Task) (string, error) {
	if t == nil {
		return "", dao.ErrNilEntity
	}
	var value interface{} = t.Payload
	if value == nil {
		value = map[string]interface{}{}
	}
	return s.Put(ctx, value, t.Key)
}

// AddRelay appends an outbound endpoint and returns its key.
func (s *Service) AddRelay(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("relay URL cannot be empty")
	}
	existing, err := s.relays.List(ctx)
	if err != nil {
		return "", err
	}
	for _, relay := range existing {
		if relay.URL == rawURL {
			return relay.Key, nil
		}
	}
	relay := &Relay{Key: idgen.New(), URL: rawURL, CreatedAt: clock.Now().Format(timeLayout)}
	if err := s.relays.Save(ctx, relay); err != nil {
		return "", err
	}
	return relay.Key, nil
}

// RemoveRelay deletes an endpoint by key; absent keys are a no-op.
func (s *Service) RemoveRelay(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	err := s.relays.Delete(ctx, key)
	if errors.Is(err, dao.ErrNotFound) {
		return nil
	}
	return err
}

// Relays lists every configured endpoint.
func (s *Service) Relays(ctx context.Context) ([]*Relay, error) {
	return s.relays.List(ctx)
}

func (s *Service) isSensitive(key string) bool {
	return s.vault != nil && s.sensitive[strings.ToLower(key)]
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
