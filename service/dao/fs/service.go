package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	nurl "net/url"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/taskgate/taskgate/service/dao"
)

// Service is a generic filesystem/URL backed implementation of dao.Service.
// Each entity is serialised as one JSON document under basePath; the key is
// derived via the supplied keySelector. Any scheme supported by viant/afs
// works (file, mem, s3, ...), which keeps the durable stores testable with
// the in-memory scheme.
type Service[T any] struct {
	basePath    string
	fs          afs.Service
	keySelector func(*T) string
	mu          sync.RWMutex
}

var _ dao.Service[string, any] = (*Service[any])(nil)

// Save persists an entity as a JSON document.
func (s *Service[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return dao.ErrNilEntity
	}
	id := s.keySelector(entity)
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity %v: %w", id, err)
	}
	location := s.entityPath(id)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save entity to %s: %w", location, err)
	}
	return nil
}

// Load retrieves an entity by key; dao.ErrNotFound when absent.
func (s *Service[T]) Load(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location := s.entityPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	var entity T
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", location, err)
	}
	return &entity, nil
}

// Delete removes an entity; dao.ErrNotFound when absent.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	location := s.entityPath(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete %s: %w", location, err)
	}
	return nil
}

// List returns every stored entity. Unreadable documents are skipped with a
// log line so one corrupt file cannot take the whole listing down.
func (s *Service[T]) List(ctx context.Context, _ ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.basePath, err)
	}
	var result []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("skipping unreadable entity %s: %v", object.URL(), err)
			continue
		}
		var entity T
		if err := json.Unmarshal(data, &entity); err != nil {
			log.Printf("skipping malformed entity %s: %v", object.URL(), err)
			continue
		}
		result = append(result, &entity)
	}
	return result, nil
}

// entityPath maps a key to its document location; keys are escaped so that
// URL-like keys (relay endpoints) remain valid file names.
func (s *Service[T]) entityPath(id string) string {
	return url.Join(s.basePath, nurl.PathEscape(id)+".json")
}

// New creates a filesystem backed DAO rooted at basePath.
func New[T any](basePath string, keySelector func(*T) string) (*Service[T], error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if keySelector == nil {
		return nil, fmt.Errorf("key selector cannot be nil")
	}
	fsService := afs.New()
	ctx := context.Background()
	if exists, _ := fsService.Exists(ctx, basePath); !exists {
		if err := fsService.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &Service[T]{basePath: basePath, fs: fsService, keySelector: keySelector}, nil
}
