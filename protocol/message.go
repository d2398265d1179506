package protocol

import (
	"reflect"

	"github.com/taskgate/taskgate/model/task"
)

// Type discriminates messages exchanged between frontend contexts and the
// orchestrator. The envelope is versionless on purpose - both sides are
// always shipped together.
type Type string

// Frontend to backend message types.
const (
	TypeTask             Type = "TASK"
	TypePromptResponse   Type = "PROMPT_RESPONSE"
	TypeFetchSettings    Type = "FETCH_SETTINGS"
	TypeUpdateSettings   Type = "UPDATE_SETTINGS"
	TypeFetchRelays      Type = "FETCH_RELAYS"
	TypeAddRelay         Type = "ADD_RELAY"
	TypeRemoveRelay      Type = "REMOVE_RELAY"
	TypeFetchPermissions Type = "FETCH_PERMISSIONS"
)

// Backend to frontend message types.
const (
	TypePrompt          Type = "PROMPT"
	TypeSettingsData    Type = "SETTINGS_DATA"
	TypeSettingsUpdated Type = "SETTINGS_UPDATED"
	TypeRelaysData      Type = "RELAYS_DATA"
	TypePermissionsData Type = "PERMISSIONS_DATA"
	TypeDataUpdate      Type = "DATA_UPDATE"
	TypeError           Type = "ERROR"
)

// Response carries the human decision for a pending prompt.
type Response struct {
	Approved bool  `json:"approved"`
	Remember *bool `json:"remember,omitempty"`
}

// Entry is a generic key/value pair used by data listing messages.
type Entry struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// Message is the tagged envelope exchanged on the channel. Only the fields
// relevant to its Type are populated; everything else stays zero so that
// structural comparison of consecutive messages remains cheap.
type Message struct {
	Type Type `json:"type"`

	// TASK / PROMPT / DATA_UPDATE
	Task             *task.Task `json:"task,omitempty"`
	RequiresApproval bool       `json:"requiresApproval,omitempty"`

	// PROMPT / PROMPT_RESPONSE
	PromptID string    `json:"promptId,omitempty"`
	Response *Response `json:"response,omitempty"`

	// settings / relay CRUD
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`
	URL   string      `json:"url,omitempty"`

	// data-bearing replies
	Data    map[string]interface{} `json:"data,omitempty"`
	Entries []*Entry               `json:"entries,omitempty"`

	// ERROR
	Error string `json:"message,omitempty"`
}

// NewError builds an ERROR broadcast.
func NewError(message string) *Message {
	return &Message{Type: TypeError, Error: message}
}

// Equal reports whether two messages are structurally identical. The channel
// uses it to coalesce redundant consecutive sends; it must never be used as a
// correctness guarantee by consumers.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return reflect.DeepEqual(m, other)
}
