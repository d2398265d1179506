package policy

import (
	"context"
	"strings"
)

// Execution modes recognised by the orchestrator.
const (
	ModeAsk  = "ask"  // prompt for every gated task (default)
	ModeAuto = "auto" // execute gated tasks without prompting
	ModeDeny = "deny" // drop every gated task
)

// Decision is the outcome of a static policy consult.
type Decision int

const (
	// DecisionAsk defers to the permission store and, failing that, a live
	// prompt.
	DecisionAsk Decision = iota
	// DecisionAllow executes without prompting.
	DecisionAllow
	// DecisionDeny drops without prompting.
	DecisionDeny
)

// Policy represents the static approval settings applied before any
// remembered decision is consulted.
//
//   - Mode controls the default behaviour for gated tasks.
//   - AllowList and BlockList filter by task type regardless of Mode;
//     BlockList wins.
//   - Rules refine individual task types, taking precedence over the lists.
//
// A nil *Policy means "ask for everything gated" and is the zero-cost
// default.
type Policy struct {
	Mode      string
	AllowList []string
	BlockList []string
	Rules     []*Rule
}

// Config is the serialisable form of a Policy; Rules use the textual
// syntax parsed by ParseRule.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
	Rules     []string `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// FromConfig materialises a stored Config into a runtime Policy.
func FromConfig(c *Config) (*Policy, error) {
	if c == nil {
		return nil, nil
	}
	ret := &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
	for _, text := range c.Rules {
		rule, err := ParseRule(text)
		if err != nil {
			return nil, err
		}
		ret.Rules = append(ret.Rules, rule)
	}
	return ret, nil
}

// ToConfig converts a runtime Policy back into its serialisable form.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	ret := &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
	for _, rule := range p.Rules {
		ret.Rules = append(ret.Rules, rule.String())
	}
	return ret
}

// Decide evaluates the static policy for taskType. Precedence: rules, then
// block list, then allow list, then mode.
func (p *Policy) Decide(taskType string) Decision {
	if p == nil {
		return DecisionAsk
	}
	normalized := strings.ToLower(taskType)
	for _, rule := range p.Rules {
		if strings.ToLower(rule.TaskType) != normalized {
			continue
		}
		if rule.Allow {
			return DecisionAllow
		}
		return DecisionDeny
	}
	for _, blocked := range p.BlockList {
		if normalized == strings.ToLower(blocked) {
			return DecisionDeny
		}
	}
	for _, allowed := range p.AllowList {
		if normalized == strings.ToLower(allowed) {
			return DecisionAllow
		}
	}
	switch p.Mode {
	case ModeAuto:
		return DecisionAllow
	case ModeDeny:
		return DecisionDeny
	}
	return DecisionAsk
}

// IsAllowed reports whether taskType survives the allow/block lists alone.
func (p *Policy) IsAllowed(taskType string) bool {
	return p.Decide(taskType) != DecisionDeny
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
