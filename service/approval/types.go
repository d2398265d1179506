package approval

import (
	"time"

	"github.com/taskgate/taskgate/model/task"
)

// Request is a pending ask-the-human instruction. ID is globally unique for
// the orchestrator process lifetime; Task is a snapshot taken at submission.
type Request struct {
	ID        string     `json:"id"`
	Task      *task.Task `json:"task"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Response is the human decision for one request. Remember asks the
// orchestrator to persist the decision for the task type.
type Response struct {
	Approved bool `json:"approved"`
	Remember bool `json:"remember,omitempty"`
}

// Record is a remembered decision for a task type. Records are append-only;
// a later decision for the same type supersedes earlier ones without
// mutating them.
type Record struct {
	ID        string    `json:"id"`
	TaskType  string    `json:"taskType"`
	Approved  bool      `json:"approved"`
	Remember  bool      `json:"remember"`
	DecidedAt time.Time `json:"decidedAt"`
}

// Event topics published while a request moves through the gate.
const (
	TopicRequestCreated   = "prompt.created"
	TopicRequestResolved  = "prompt.resolved"
	TopicRequestCancelled = "prompt.cancelled"
	TopicRequestExpired   = "prompt.expired"
	TopicTaskExecuted     = "task.executed"
	TopicTaskDropped      = "task.dropped"
)

// Event is the envelope published to observers of the approval flow.
type Event struct {
	Topic   string            `json:"topic"`
	Data    interface{}       `json:"data"` // *Request | *Response | *task.Task
	Headers map[string]string `json:"headers,omitempty"`
}
