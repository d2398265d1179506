package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRule(t *testing.T) {
	type testCase struct {
		name        string
		input       string
		expect      *Rule
		expectError bool
	}

	tests := []testCase{{
		name:   "allow",
		input:  "settings(allow)",
		expect: &Rule{TaskType: "settings", Allow: true},
	}, {
		name:   "deny",
		input:  "relay(deny)",
		expect: &Rule{TaskType: "relay", Allow: false},
	}, {
		name:   "allow remembered",
		input:  "settings(allow/remember)",
		expect: &Rule{TaskType: "settings", Allow: true, Remember: true},
	}, {
		name:   "deny remembered",
		input:  "relay(deny/remember)",
		expect: &Rule{TaskType: "relay", Allow: false, Remember: true},
	}, {
		name:   "leading whitespace",
		input:  "  settings(allow)",
		expect: &Rule{TaskType: "settings", Allow: true},
	}, {
		name:   "separators in task type",
		input:  "my-app.profile:v2(allow)",
		expect: &Rule{TaskType: "my-app.profile:v2", Allow: true},
	}, {
		name:        "invalid decision",
		input:       "settings(maybe)",
		expectError: true,
	}, {
		name:        "invalid flag",
		input:       "settings(allow/forever)",
		expectError: true,
	}, {
		name:        "missing close paren",
		input:       "settings(allow",
		expectError: true,
	}, {
		name:        "empty",
		input:       "",
		expectError: true,
	}, {
		name:        "task type starting with digit",
		input:       "1settings(allow)",
		expectError: true,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := ParseRule(tc.input)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, rule)
		})
	}
}

func TestRuleStringRoundTrip(t *testing.T) {
	for _, text := range []string{"settings(allow)", "relay(deny)", "settings(deny/remember)"} {
		rule, err := ParseRule(text)
		assert.NoError(t, err)
		assert.Equal(t, text, rule.String())
	}
}
