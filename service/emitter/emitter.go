package emitter

import (
	"context"
	"log"
	"sync"
	"time"
)

// Wildcard subscribes a handler to every topic.
const Wildcard = "*"

// Handler consumes an emitted payload. Handler failures are contained; a
// panicking handler never surfaces to the caller of Emit.
type Handler func(ctx context.Context, payload interface{})

type subscription struct {
	id      int
	topic   string
	handler Handler
	once    bool
	timer   *time.Timer
}

// Service is a topic-keyed subscription registry with one-shot and
// deadline-bound registrations. Emission is synchronous: every handler
// registered at the time of the call is invoked before Emit returns.
type Service struct {
	mu     sync.Mutex
	nextID int
	topics map[string][]*subscription
}

// New creates an empty emitter.
func New() *Service {
	return &Service{topics: make(map[string][]*subscription)}
}

// On registers handler for topic and returns its unsubscribe function.
func (s *Service) On(topic string, handler Handler) func() {
	return s.subscribe(topic, handler, false, 0)
}

// Once registers a handler that auto-deregisters after its first invocation.
func (s *Service) Once(topic string, handler Handler) func() {
	return s.subscribe(topic, handler, true, 0)
}

// Within registers a one-shot handler that also auto-deregisters after the
// supplied deadline even when the topic is never emitted.
func (s *Service) Within(topic string, handler Handler, timeout time.Duration) func() {
	return s.subscribe(topic, handler, true, timeout)
}

func (s *Service) subscribe(topic string, handler Handler, once bool, timeout time.Duration) func() {
	if handler == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	sub := &subscription{id: s.nextID, topic: topic, handler: handler, once: once}
	s.topics[topic] = append(s.topics[topic], sub)
	cancel := func() { s.remove(sub) }
	if timeout > 0 {
		// sub.timer is only read under s.mu; publish it before releasing the
		// lock so an expiry firing immediately still sees it.
		sub.timer = time.AfterFunc(timeout, cancel)
	}
	s.mu.Unlock()
	return cancel
}

func (s *Service) remove(sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.timer != nil {
		sub.timer.Stop()
	}
	subs := s.topics[sub.topic]
	for i, candidate := range subs {
		if candidate.id == sub.id {
			s.topics[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.topics[sub.topic]) == 0 {
		delete(s.topics, sub.topic)
	}
}

// Emit invokes every handler currently registered for topic, plus wildcard
// listeners. One-shot handlers are deregistered before their invocation so a
// re-emission during handling cannot fire them twice.
func (s *Service) Emit(ctx context.Context, topic string, payload interface{}) {
	s.mu.Lock()
	matched := make([]*subscription, 0, 4)
	matched = append(matched, s.topics[topic]...)
	if topic != Wildcard {
		matched = append(matched, s.topics[Wildcard]...)
	}
	for _, sub := range matched {
		if sub.once {
			s.detachLocked(sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range matched {
		s.invoke(ctx, sub, payload)
	}
}

func (s *Service) detachLocked(sub *subscription) {
	if sub.timer != nil {
		sub.timer.Stop()
	}
	subs := s.topics[sub.topic]
	for i, candidate := range subs {
		if candidate.id == sub.id {
			s.topics[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.topics[sub.topic]) == 0 {
		delete(s.topics, sub.topic)
	}
}

func (s *Service) invoke(ctx context.Context, sub *subscription, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("emitter: handler for %q panicked: %v", sub.topic, r)
		}
	}()
	sub.handler(ctx, payload)
}

// Size returns the number of live subscriptions for topic.
func (s *Service) Size(topic string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics[topic])
}
