package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskgate/taskgate/model/task"
)

type settingsPayload struct {
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

func TestDecodeRegisteredKind(t *testing.T) {
	svc := New()
	svc.RegisterType(task.KindSettings, reflect.TypeOf(&settingsPayload{}))
	assert.NotNil(t, svc.Lookup(task.KindSettings))
	assert.Equal(t, []string{task.KindSettings}, svc.Kinds())

	decoded, err := svc.Decode(&task.Task{
		Kind:    task.KindSettings,
		Key:     "theme",
		Payload: map[string]interface{}{"value": "dark", "enabled": true},
	})
	assert.NoError(t, err)
	payload, ok := decoded.(*settingsPayload)
	assert.True(t, ok)
	assert.Equal(t, "dark", payload.Value)
	assert.True(t, payload.Enabled)
}

// TestDecodeUnknownKind verifies unknown kinds stay opaque: callers get a
// payload copy rather than an error.
func TestDecodeUnknownKind(t *testing.T) {
	svc := New()
	original := map[string]interface{}{"anything": 1}
	decoded, err := svc.Decode(&task.Task{Kind: "custom", Payload: original})
	assert.NoError(t, err)
	payload, ok := decoded.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, original, payload)

	// The copy is detached from the submitted task.
	payload["anything"] = 2
	assert.Equal(t, 1, original["anything"])
}

func TestDecodeNilTask(t *testing.T) {
	svc := New()
	_, err := svc.Decode(nil)
	assert.Error(t, err)
}

func TestDecodeEmptyPayload(t *testing.T) {
	svc := New()
	svc.RegisterType(task.KindRelay, reflect.TypeOf(settingsPayload{}))
	decoded, err := svc.Decode(&task.Task{Kind: task.KindRelay})
	assert.NoError(t, err)
	assert.NotNil(t, decoded)
}
