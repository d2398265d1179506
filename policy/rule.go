package policy

import (
	"fmt"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Rule is one parsed policy rule: a task type with a fixed decision and an
// optional remember flag. Remembered rules are seeded into the permission
// store at startup so their decisions show up in permission listings.
type Rule struct {
	TaskType string
	Allow    bool
	Remember bool
}

// String renders the rule in its textual syntax.
func (r *Rule) String() string {
	decision := "deny"
	if r.Allow {
		decision = "allow"
	}
	if r.Remember {
		return fmt.Sprintf("%s(%s/remember)", r.TaskType, decision)
	}
	return fmt.Sprintf("%s(%s)", r.TaskType, decision)
}

// Token codes
const (
	whitespaceCode = iota
	taskTypeCode
	openParenCode
	closeParenCode
	slashCode
	wordCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	taskTypeToken   = parsly.NewToken(taskTypeCode, "TaskType", newTaskTypeMatcher())
	openParenToken  = parsly.NewToken(openParenCode, "(", matcher.NewByte('('))
	closeParenToken = parsly.NewToken(closeParenCode, ")", matcher.NewByte(')'))
	slashToken      = parsly.NewToken(slashCode, "/", matcher.NewByte('/'))
	wordToken       = parsly.NewToken(wordCode, "Word", newWordMatcher())
)

// ParseRule parses a rule in the format: taskType(decision) or
// taskType(decision/remember), where decision is allow or deny.
func ParseRule(input string) (*Rule, error) {
	cursor := parsly.NewCursor("", []byte(input), 0)
	rule := &Rule{}

	matched := cursor.MatchAfterOptional(whitespaceToken, taskTypeToken)
	if matched.Code != taskTypeToken.Code {
		return nil, cursor.NewError(taskTypeToken)
	}
	rule.TaskType = matched.Text(cursor)

	matched = cursor.MatchOne(openParenToken)
	if matched.Code != openParenToken.Code {
		return nil, cursor.NewError(openParenToken)
	}

	matched = cursor.MatchOne(wordToken)
	if matched.Code != wordToken.Code {
		return nil, cursor.NewError(wordToken)
	}
	switch matched.Text(cursor) {
	case "allow":
		rule.Allow = true
	case "deny":
		rule.Allow = false
	default:
		return nil, fmt.Errorf("invalid decision %q in rule %q, expected allow or deny", matched.Text(cursor), input)
	}

	matched = cursor.MatchAny(slashToken, closeParenToken)
	switch matched.Code {
	case closeParenToken.Code:
		return rule, nil
	case slashToken.Code:
	default:
		return nil, cursor.NewError(closeParenToken)
	}

	matched = cursor.MatchOne(wordToken)
	if matched.Code != wordToken.Code {
		return nil, cursor.NewError(wordToken)
	}
	if text := matched.Text(cursor); text != "remember" {
		return nil, fmt.Errorf("invalid flag %q in rule %q, expected remember", text, input)
	}
	rule.Remember = true

	matched = cursor.MatchOne(closeParenToken)
	if matched.Code != closeParenToken.Code {
		return nil, cursor.NewError(closeParenToken)
	}
	return rule, nil
}

// Custom matchers

func newTaskTypeMatcher() parsly.Matcher {
	return &taskTypeMatcher{}
}

func newWordMatcher() parsly.Matcher {
	return &wordMatcher{}
}

// taskTypeMatcher matches task type classifiers: letters, digits and the
// separators '-', '_', '.', ':'.
type taskTypeMatcher struct{}

func (m *taskTypeMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '_' || c == '-' || c == '.' || c == ':' {
			matched++
			continue
		}
		break
	}
	return matched
}

// wordMatcher matches a lowercase keyword.
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	matched := 0
	for i := pos; i < size; i++ {
		if input[i] >= 'a' && input[i] <= 'z' {
			matched++
			continue
		}
		break
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
