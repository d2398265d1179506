package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	type testCase struct {
		name     string
		policy   *Policy
		taskType string
		expect   Decision
	}

	tests := []testCase{{
		name:     "nil policy asks",
		policy:   nil,
		taskType: "settings",
		expect:   DecisionAsk,
	}, {
		name:     "zero policy asks",
		policy:   &Policy{},
		taskType: "settings",
		expect:   DecisionAsk,
	}, {
		name:     "auto mode allows",
		policy:   &Policy{Mode: ModeAuto},
		taskType: "settings",
		expect:   DecisionAllow,
	}, {
		name:     "deny mode denies",
		policy:   &Policy{Mode: ModeDeny},
		taskType: "settings",
		expect:   DecisionDeny,
	}, {
		name:     "allow list beats ask mode",
		policy:   &Policy{Mode: ModeAsk, AllowList: []string{"settings"}},
		taskType: "settings",
		expect:   DecisionAllow,
	}, {
		name:     "block list beats allow list",
		policy:   &Policy{AllowList: []string{"settings"}, BlockList: []string{"settings"}},
		taskType: "settings",
		expect:   DecisionDeny,
	}, {
		name:     "rule beats block list",
		policy:   &Policy{BlockList: []string{"settings"}, Rules: []*Rule{{TaskType: "settings", Allow: true}}},
		taskType: "settings",
		expect:   DecisionAllow,
	}, {
		name:     "matching is case insensitive",
		policy:   &Policy{BlockList: []string{"Settings"}},
		taskType: "SETTINGS",
		expect:   DecisionDeny,
	}, {
		name:     "unlisted type falls back to mode",
		policy:   &Policy{Mode: ModeAuto, BlockList: []string{"relay"}},
		taskType: "settings",
		expect:   DecisionAllow,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.policy.Decide(tc.taskType))
		})
	}
}

func TestConfigRoundTrip(t *testing.T) {
	config := &Config{
		Mode:      ModeAsk,
		AllowList: []string{"settings"},
		BlockList: []string{"relay"},
		Rules:     []string{"profile(allow/remember)"},
	}
	aPolicy, err := FromConfig(config)
	assert.NoError(t, err)
	assert.Equal(t, []*Rule{{TaskType: "profile", Allow: true, Remember: true}}, aPolicy.Rules)
	assert.Equal(t, config, ToConfig(aPolicy))
}

func TestFromConfigInvalidRule(t *testing.T) {
	_, err := FromConfig(&Config{Rules: []string{"nope(maybe)"}})
	assert.Error(t, err)
}

func TestContextHelpers(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	aPolicy := &Policy{Mode: ModeAuto}
	ctx := WithPolicy(context.Background(), aPolicy)
	assert.Same(t, aPolicy, FromContext(ctx))
}
