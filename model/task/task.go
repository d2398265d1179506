package task

// Well known task kinds. Unknown kinds are carried as opaque payloads and
// classified by Type.
const (
	KindSettings = "settings"
	KindRelay    = "relay"
	KindGeneric  = "generic"
)

// Task is an opaque unit of work submitted by a frontend context. Kind
// classifies the task for permission lookups; Key, when present, pins the
// storage location the result is written under.
type Task struct {
	Kind    string                 `json:"kind,omitempty"`
	Key     string                 `json:"key,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Type returns the permission classifier for the task. Tasks without an
// explicit kind fall back to the generic classifier so that a single
// remembered decision covers all of them.
func (t *Task) Type() string {
	if t == nil || t.Kind == "" {
		return KindGeneric
	}
	return t.Kind
}

// Clone returns a deep-enough copy for prompt snapshots; payload values are
// shared, the map itself is not.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	ret := &Task{Kind: t.Kind, Key: t.Key}
	if t.Payload != nil {
		ret.Payload = make(map[string]interface{}, len(t.Payload))
		for k, v := range t.Payload {
			ret.Payload[k] = v
		}
	}
	return ret
}
