package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType(t *testing.T) {
	assert.Equal(t, KindSettings, (&Task{Kind: KindSettings}).Type())
	// Missing kind falls back to the generic classifier.
	assert.Equal(t, KindGeneric, (&Task{}).Type())
}

func TestClone(t *testing.T) {
	original := &Task{
		Kind:    KindSettings,
		Key:     "theme",
		Payload: map[string]interface{}{"value": "dark"},
	}
	clone := original.Clone()
	assert.Equal(t, original, clone)

	// Mutating the clone leaves the original untouched.
	clone.Payload["value"] = "light"
	clone.Key = "language"
	assert.Equal(t, "dark", original.Payload["value"])
	assert.Equal(t, "theme", original.Key)

	assert.Nil(t, (*Task)(nil).Clone())
}
