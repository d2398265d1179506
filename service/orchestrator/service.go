package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/taskgate/taskgate/internal/clock"
	"github.com/taskgate/taskgate/internal/idgen"
	"github.com/taskgate/taskgate/model/task"
	"github.com/taskgate/taskgate/policy"
	"github.com/taskgate/taskgate/progress"
	"github.com/taskgate/taskgate/protocol"
	"github.com/taskgate/taskgate/service/approval"
	"github.com/taskgate/taskgate/service/channel"
	"github.com/taskgate/taskgate/service/datastore"
	"github.com/taskgate/taskgate/service/emitter"
	"github.com/taskgate/taskgate/service/gate"
	"github.com/taskgate/taskgate/service/messaging"
	"github.com/taskgate/taskgate/service/registry"
	"github.com/taskgate/taskgate/tracing"
)

// Config represents orchestrator configuration.
type Config struct {
	// PromptTimeout bounds the human wait; zero disables the deadline and
	// restores the original unbounded suspension.
	PromptTimeout time.Duration
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{PromptTimeout: 5 * time.Minute}
}

// Service is the single authoritative dispatcher of inbound messages. All
// store mutations flow through it; nothing inside its handling path is
// allowed to raise past the handler boundary - every failure is converted
// into an ERROR broadcast.
type Service struct {
	config      Config
	channel     *channel.Service
	store       *datastore.Service
	permissions approval.Permissions
	journal     *approval.Journal
	policy      *policy.Policy
	registry    *registry.Service
	emitter     *emitter.Service
	events      messaging.Queue[approval.Event]
	progress    *progress.Progress

	mutex     *gate.Mutex
	resolvers *gate.Resolvers[approval.Response]

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	inFlight    sync.WaitGroup
	startOnce   sync.Once
}

// New creates an orchestrator service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:    DefaultConfig(),
		mutex:     gate.NewMutex(),
		resolvers: gate.NewResolvers[approval.Response](),
	}
	for _, option := range options {
		option(s)
	}
	if s.channel == nil {
		return nil, fmt.Errorf("channel is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("datastore is required")
	}
	if s.permissions == nil {
		return nil, fmt.Errorf("permissions store is required")
	}
	if s.journal == nil {
		return nil, fmt.Errorf("prompt journal is required")
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.emitter == nil {
		s.emitter = emitter.New()
	}
	return s, nil
}

// Start seeds remembered policy rules, reconciles journaled prompts left
// over from a previous process and begins dispatching channel messages.
func (s *Service) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(ctx)
		if seedErr := s.seedPolicyRules(s.ctx); seedErr != nil {
			err = seedErr
			return
		}
		s.reconcile(s.ctx)
		s.unsubscribe = s.channel.OnMessage(s.handle)
	})
	return err
}

// Shutdown stops dispatching and waits for in-flight submissions to settle.
// Suspended approval waits are cancelled, not abandoned.
func (s *Service) Shutdown() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.inFlight.Wait()
}

// Emitter exposes the lifecycle emitter for observers.
func (s *Service) Emitter() *emitter.Service { return s.emitter }

// Mutex exposes the prompt gate for diagnostics.
func (s *Service) Mutex() *gate.Mutex { return s.mutex }

// handle routes one inbound message. Task submissions run asynchronously on
// the orchestrator's own context because they may suspend for a human
// decision far longer than the sender sticks around.
func (s *Service) handle(_ context.Context, message *protocol.Message) {
	ctx, span := tracing.StartSpan(s.ctx, "orchestrator."+string(message.Type), "SERVER")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	switch message.Type {
	case protocol.TypeTask:
		submitted := message.Task
		requiresApproval := message.RequiresApproval
		s.inFlight.Add(1)
		go func() {
			defer s.inFlight.Done()
			s.SubmitTask(s.ctx, submitted, requiresApproval)
		}()
	case protocol.TypePromptResponse:
		s.RecordResponse(message.PromptID, message.Response)
	case protocol.TypeFetchSettings:
		err = s.broadcastSettings(ctx)
	case protocol.TypeUpdateSettings:
		err = s.updateSetting(ctx, message.Key, message.Value)
	case protocol.TypeFetchRelays:
		err = s.broadcastRelays(ctx)
	case protocol.TypeAddRelay:
		err = s.addRelay(ctx, message.URL)
	case protocol.TypeRemoveRelay:
		err = s.removeRelay(ctx, message.Key)
	case protocol.TypeFetchPermissions:
		err = s.broadcastPermissions(ctx)
	default:
		// Backend-originated types echoed back by a confused frontend are
		// ignored rather than surfaced.
	}
}

// RecordResponse forwards the human decision to the waiter registered under
// promptID. An unknown id - already consumed, timed out, or never issued -
// is silently ignored per the protocol contract.
func (s *Service) RecordResponse(promptID string, response *protocol.Response) {
	if promptID == "" || response == nil {
		return
	}
	resolved := approval.Response{Approved: response.Approved}
	if response.Remember != nil {
		resolved.Remember = *response.Remember
	}
	s.resolvers.Resolve(promptID, &resolved)
}

// CancelPrompt aborts the wait registered under promptID, for example when
// the prompt surface closed without answering. The suspended task drops and
// the gate opens; an unknown id reports false.
func (s *Service) CancelPrompt(promptID string) bool {
	return s.resolvers.Cancel(promptID)
}

// SubmitTask routes a task through the approval decision pipeline:
// ungated tasks execute immediately; a static policy decision or a
// remembered permission short-circuits the prompt; everything else suspends
// on the gate until the human answers.
func (s *Service) SubmitTask(ctx context.Context, t *task.Task, requiresApproval bool) {
	s.track(progress.Delta{Submitted: 1})
	if t == nil {
		s.broadcastError(ctx, "task submission without a task")
		return
	}
	if !requiresApproval {
		s.execute(ctx, t)
		return
	}
	taskType := t.Type()

	switch s.policy.Decide(taskType) {
	case policy.DecisionAllow:
		s.execute(ctx, t)
		return
	case policy.DecisionDeny:
		s.drop(ctx, t, "blocked by policy")
		return
	}

	record, err := s.permissions.Lookup(ctx, taskType)
	if err != nil {
		// A broken permission store must not bypass the gate; fall through
		// to a live prompt.
		s.broadcastError(ctx, "permission lookup failed: %v", err)
	}
	if record != nil && record.Remember {
		if record.Approved {
			s.execute(ctx, t)
		} else {
			s.drop(ctx, t, "denied by remembered decision")
		}
		return
	}

	request := &approval.Request{ID: idgen.New(), Task: t.Clone(), CreatedAt: clock.Now()}
	s.prompt(ctx, request, taskType)
}

// prompt drives the gate handshake for one request. The gate lock is held
// across the entire human wait, so at most one prompt is ever visible; the
// next queued task's prompt is not broadcast until this one's response (or
// deadline) is consumed.
func (s *Service) prompt(ctx context.Context, request *approval.Request, taskType string) {
	handle, err := s.mutex.Acquire(ctx)
	if err != nil {
		s.drop(ctx, request.Task, "shutdown before prompt")
		return
	}
	defer handle.Release()

	await, _, err := s.resolvers.Register(ctx, request.ID, s.config.PromptTimeout)
	if err != nil {
		s.broadcastError(ctx, "failed to register prompt %v: %v", request.ID, err)
		s.drop(ctx, request.Task, "prompt registration failed")
		return
	}
	// The journal entry must be durable before the prompt becomes visible,
	// otherwise a restart could not reconcile it.
	if err := s.journal.Record(ctx, request); err != nil {
		s.broadcastError(ctx, "failed to journal prompt %v: %v", request.ID, err)
	}
	s.publishEvent(ctx, approval.TopicRequestCreated, request)
	s.track(progress.Delta{Prompted: 1, PendingPrompts: 1})

	if err := s.channel.Broadcast(ctx, &protocol.Message{
		Type:     protocol.TypePrompt,
		PromptID: request.ID,
		Task:     request.Task,
	}); err != nil {
		log.Printf("orchestrator: prompt broadcast failed: %v", err)
	}

	response, err := await()

	if jErr := s.journal.Resolve(ctx, request.ID); jErr != nil {
		log.Printf("orchestrator: journal resolve failed for %v: %v", request.ID, jErr)
	}
	s.track(progress.Delta{PendingPrompts: -1})

	if err != nil {
		topic := approval.TopicRequestCancelled
		if err == gate.ErrPromptTimeout {
			topic = approval.TopicRequestExpired
		}
		s.publishEvent(ctx, topic, request)
		s.broadcastError(ctx, "approval for %v aborted: %v", taskType, err)
		s.track(progress.Delta{Dropped: 1})
		return
	}

	if response.Remember {
		if _, err := s.permissions.Append(ctx, taskType, response.Approved, true); err != nil {
			s.broadcastError(ctx, "failed to remember decision for %v: %v", taskType, err)
		}
	}
	s.publishEvent(ctx, approval.TopicRequestResolved, response)

	handle.Release()

	if response.Approved {
		s.track(progress.Delta{Approved: 1})
		s.execute(ctx, request.Task)
	} else {
		s.track(progress.Delta{Denied: 1})
		s.drop(ctx, request.Task, "denied")
	}
}

// execute applies an approved (or ungated) task to the datastore and
// broadcasts the result. Storage failure resolves to "no result": an ERROR
// broadcast, never a DATA_UPDATE.
func (s *Service) execute(ctx context.Context, t *task.Task) {
	if _, err := s.registry.Decode(t); err != nil {
		s.broadcastError(ctx, "invalid %v payload: %v", t.Type(), err)
		s.track(progress.Delta{Failed: 1})
		return
	}
	key, err := s.store.PutTask(ctx, t)
	if err != nil {
		log.Printf("orchestrator: failed to persist task %v: %v", t.Type(), err)
		s.broadcastError(ctx, "failed to persist %v task: %v", t.Type(), err)
		s.track(progress.Delta{Failed: 1})
		return
	}
	executed := t.Clone()
	executed.Key = key
	s.publishEvent(ctx, approval.TopicTaskExecuted, executed)
	s.track(progress.Delta{Executed: 1})
	if err := s.channel.Broadcast(ctx, &protocol.Message{
		Type: protocol.TypeDataUpdate,
		Key:  key,
		Task: executed,
	}); err != nil {
		log.Printf("orchestrator: data update broadcast failed: %v", err)
	}
}

func (s *Service) drop(ctx context.Context, t *task.Task, reason string) {
	s.publishEvent(ctx, approval.TopicTaskDropped, t)
	s.track(progress.Delta{Dropped: 1})
	log.Printf("orchestrator: dropped %v task: %v", t.Type(), reason)
}

// ---------------------------------------------------------------------------
// Settings / relays / permissions CRUD
// ---------------------------------------------------------------------------

// broadcastSettings re-reads the full settings state and broadcasts it. On
// failure the frontends receive an ERROR plus an empty snapshot so they
// never stall waiting for data.
func (s *Service) broadcastSettings(ctx context.Context) error {
	entries, err := s.store.GetAll(ctx)
	if err != nil {
		s.broadcastError(ctx, "failed to read settings: %v", err)
		entries = nil
	}
	data := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		data[entry.Key] = entry.Value
	}
	if bErr := s.channel.Broadcast(ctx, &protocol.Message{Type: protocol.TypeSettingsData, Data: data}); bErr != nil {
		return bErr
	}
	return err
}

// updateSetting writes one setting (nil value deletes) and then re-reads
// and re-broadcasts full state to guarantee convergence even when the
// notification path partially fails.
func (s *Service) updateSetting(ctx context.Context, key string, value interface{}) error {
	var err error
	if value == nil {
		err = s.store.Delete(ctx, key)
	} else {
		_, err = s.store.Put(ctx, value, key)
	}
	if err != nil {
		s.broadcastError(ctx, "failed to update setting %v: %v", key, err)
	} else if bErr := s.channel.Broadcast(ctx, &protocol.Message{
		Type:  protocol.TypeSettingsUpdated,
		Key:   key,
		Value: value,
	}); bErr != nil {
		log.Printf("orchestrator: settings update broadcast failed: %v", bErr)
	}
	return s.broadcastSettings(ctx)
}

func (s *Service) broadcastRelays(ctx context.Context) error {
	relays, err := s.store.Relays(ctx)
	if err != nil {
		s.broadcastError(ctx, "failed to read relays: %v", err)
		relays = nil
	}
	entries := make([]*protocol.Entry, 0, len(relays))
	for _, relay := range relays {
		entries = append(entries, &protocol.Entry{Key: relay.Key, Value: relay.URL})
	}
	if bErr := s.channel.Broadcast(ctx, &protocol.Message{Type: protocol.TypeRelaysData, Entries: entries}); bErr != nil {
		return bErr
	}
	return err
}

func (s *Service) addRelay(ctx context.Context, url string) error {
	if _, err := s.store.AddRelay(ctx, url); err != nil {
		s.broadcastError(ctx, "failed to add relay: %v", err)
	}
	return s.broadcastRelays(ctx)
}

func (s *Service) removeRelay(ctx context.Context, key string) error {
	if err := s.store.RemoveRelay(ctx, key); err != nil {
		s.broadcastError(ctx, "failed to remove relay: %v", err)
	}
	return s.broadcastRelays(ctx)
}

func (s *Service) broadcastPermissions(ctx context.Context) error {
	records, err := s.permissions.List(ctx)
	if err != nil {
		s.broadcastError(ctx, "failed to read permissions: %v", err)
		records = nil
	}
	entries := make([]*protocol.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, &protocol.Entry{Key: record.ID, Value: record})
	}
	if bErr := s.channel.Broadcast(ctx, &protocol.Message{Type: protocol.TypePermissionsData, Entries: entries}); bErr != nil {
		return bErr
	}
	return err
}

// ---------------------------------------------------------------------------
// Startup
// ---------------------------------------------------------------------------

// seedPolicyRules turns remembered policy rules into permission records so
// that configured decisions show up in permission listings alongside human
// ones.
func (s *Service) seedPolicyRules(ctx context.Context) error {
	if s.policy == nil {
		return nil
	}
	for _, rule := range s.policy.Rules {
		if !rule.Remember {
			continue
		}
		existing, err := s.permissions.Lookup(ctx, rule.TaskType)
		if err != nil {
			return fmt.Errorf("failed to seed policy rule %v: %w", rule, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.permissions.Append(ctx, rule.TaskType, rule.Allow, true); err != nil {
			return fmt.Errorf("failed to seed policy rule %v: %w", rule, err)
		}
	}
	return nil
}

// reconcile resumes approvals journaled by a previous process: each pending
// request gets its prompt re-broadcast and a fresh waiter, oldest first, so
// a restart does not silently abandon in-flight approvals.
func (s *Service) reconcile(ctx context.Context) {
	pending, err := s.journal.Pending(ctx)
	if err != nil {
		log.Printf("orchestrator: journal reconciliation failed: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	log.Printf("orchestrator: resuming %d journaled prompt(s)", len(pending))
	for _, request := range pending {
		resumed := request
		s.inFlight.Add(1)
		go func() {
			defer s.inFlight.Done()
			s.prompt(ctx, resumed, resumed.Task.Type())
		}()
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) broadcastError(ctx context.Context, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("orchestrator: %s", message)
	if err := s.channel.Broadcast(ctx, protocol.NewError(message)); err != nil {
		log.Printf("orchestrator: error broadcast failed: %v", err)
	}
}

func (s *Service) publishEvent(ctx context.Context, topic string, data interface{}) {
	s.emitter.Emit(ctx, topic, data)
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, &approval.Event{Topic: topic, Data: data}); err != nil {
		log.Printf("orchestrator: event publish failed: %v", err)
	}
}

func (s *Service) track(delta progress.Delta) {
	if s.progress != nil {
		s.progress.Update(delta)
	}
}
