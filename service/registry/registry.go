// Package registry maps task kinds to registered Go types so that known task
// payloads decode into typed values while unknown kinds stay opaque maps.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/structology/conv"
	"github.com/viant/x"

	"github.com/taskgate/taskgate/model/task"
)

// Service holds the task-kind type registry.
type Service struct {
	mu        sync.RWMutex
	kinds     map[string]*x.Type
	converter *conv.Converter
}

// New creates a registry; extra kinds can be registered at any time.
func New() *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return &Service{
		kinds:     make(map[string]*x.Type),
		converter: conv.NewConverter(options),
	}
}

// Register binds kind to the supplied type.
func (s *Service) Register(kind string, aType *x.Type) {
	if kind == "" || aType == nil {
		return
	}
	s.mu.Lock()
	s.kinds[kind] = aType
	s.mu.Unlock()
}

// RegisterType binds kind to a reflect type.
func (s *Service) RegisterType(kind string, rType reflect.Type) {
	if rType == nil {
		return
	}
	s.Register(kind, x.NewType(rType))
}

// Lookup returns the registered type for kind, or nil.
func (s *Service) Lookup(kind string) *x.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kinds[kind]
}

// Kinds returns every registered kind.
func (s *Service) Kinds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.kinds))
	for kind := range s.kinds {
		out = append(out, kind)
	}
	return out
}

// Decode converts a task payload into its registered typed value. Unknown
// kinds fall back to a copy of the opaque payload map, preserving
// extensibility without losing type safety on known paths.
func (s *Service) Decode(t *task.Task) (interface{}, error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	registered := s.Lookup(t.Type())
	if registered == nil {
		return t.Clone().Payload, nil
	}
	rType := registered.Type
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	instance := reflect.New(rType).Interface()
	if t.Payload != nil {
		if err := s.converter.Convert(t.Payload, instance); err != nil {
			return nil, fmt.Errorf("failed to decode %v payload: %w", t.Type(), err)
		}
	}
	return instance, nil
}
