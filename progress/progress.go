package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the
// orchestrator pipeline. Fields are signed so callers can decrement
// (for example PendingPrompts when a prompt resolves).
type Delta struct {
	Submitted      int
	Prompted       int
	Approved       int
	Denied         int
	Executed       int
	Dropped        int
	Failed         int
	PendingPrompts int
}

// Snapshot is a point-in-time copy of the aggregated counters.
type Snapshot struct {
	// Identification, informative only.
	Instance  string
	StartedAt time.Time

	SubmittedTasks int
	PromptedTasks  int
	ApprovedTasks  int
	DeniedTasks    int
	ExecutedTasks  int
	DroppedTasks   int
	FailedTasks    int
	PendingPrompts int
}

// Progress keeps aggregated counters for one orchestrator instance. It is
// safe for concurrent use.
type Progress struct {
	mu       sync.Mutex
	snapshot Snapshot
	onChange func(Snapshot)
}

// New creates a tracker.
func New() *Progress {
	return NewWithInstance("")
}

// NewWithInstance creates a tracker labelled with an instance name.
func NewWithInstance(instance string) *Progress {
	return &Progress{snapshot: Snapshot{Instance: instance, StartedAt: time.Now()}}
}

// Update applies the supplied delta. If an onChange callback is registered
// it receives a copy of the updated counters outside the critical section so
// slow observers cannot block the pipeline.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.snapshot.SubmittedTasks += d.Submitted
	p.snapshot.PromptedTasks += d.Prompted
	p.snapshot.ApprovedTasks += d.Approved
	p.snapshot.DeniedTasks += d.Denied
	p.snapshot.ExecutedTasks += d.Executed
	p.snapshot.DroppedTasks += d.Dropped
	p.snapshot.FailedTasks += d.Failed
	p.snapshot.PendingPrompts += d.PendingPrompts

	snapshot := p.snapshot
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it; only one callback can be active.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, instance string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := NewWithInstance(instance)
	tr.onChange = onChange
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx; the boolean is false when the
// context carries none.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}
