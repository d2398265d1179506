package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskgate/taskgate/model/task"
)

func TestEqual(t *testing.T) {
	type testCase struct {
		name   string
		left   *Message
		right  *Message
		expect bool
	}

	tests := []testCase{{
		name:   "identical task submissions",
		left:   &Message{Type: TypeTask, Task: &task.Task{Kind: "settings", Key: "theme"}},
		right:  &Message{Type: TypeTask, Task: &task.Task{Kind: "settings", Key: "theme"}},
		expect: true,
	}, {
		name:   "differing nested field",
		left:   &Message{Type: TypeTask, Task: &task.Task{Kind: "settings", Key: "theme"}},
		right:  &Message{Type: TypeTask, Task: &task.Task{Kind: "settings", Key: "language"}},
		expect: false,
	}, {
		name:   "differing type",
		left:   &Message{Type: TypeFetchSettings},
		right:  &Message{Type: TypeFetchRelays},
		expect: false,
	}, {
		name:   "nil other",
		left:   &Message{Type: TypeFetchSettings},
		right:  nil,
		expect: false,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.left.Equal(tc.right))
		})
	}
}

func TestErrorSerialisation(t *testing.T) {
	data, err := json.Marshal(NewError("boom"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"type":"ERROR"`)
	assert.Contains(t, string(data), `"message":"boom"`)

	var decoded Message
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeError, decoded.Type)
	assert.Equal(t, "boom", decoded.Error)
}
