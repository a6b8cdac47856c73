// Package governance decides which skills may be invoked or exposed.
package governance

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jllopis/skillkit/pkg/config"
)

// ActionType says where a skill is being used.
type ActionType string

const (
	// ActionSkill is a direct skill invocation through the executor.
	ActionSkill ActionType = "skill"
	// ActionMCP is the exposure of a skill as an MCP tool.
	ActionMCP ActionType = "mcp"
)

// Action is what a policy is asked about.
type Action struct {
	Type     ActionType
	Name     string
	Category string
}

// DecisionStatus is the verdict of a policy evaluation.
type DecisionStatus string

const (
	DecisionStatusAllow   DecisionStatus = "allow"
	DecisionStatusDeny    DecisionStatus = "deny"
	DecisionStatusPending DecisionStatus = "pending"
)

// Decision is the result of evaluating an Action. Allowed mirrors Status
// for callers that only care about yes or no.
type Decision struct {
	Allowed bool
	Reason  string
	RuleID  string
	Status  DecisionStatus
}

func allow() Decision {
	return Decision{Allowed: true, Status: DecisionStatusAllow}
}

func deny(reason string) Decision {
	return Decision{Status: DecisionStatusDeny, Reason: reason}
}

// IsAllowed reports whether the action may proceed.
func (d Decision) IsAllowed() bool {
	if d.Status == "" {
		return d.Allowed
	}
	return d.Status == DecisionStatusAllow
}

// IsPending reports whether the action waits on an approval.
func (d Decision) IsPending() bool {
	return d.Status == DecisionStatusPending
}

// IsDenied reports whether the action is refused outright.
func (d Decision) IsDenied() bool {
	if d.Status == "" {
		return !d.Allowed
	}
	return d.Status == DecisionStatusDeny
}

// PolicyEngine evaluates actions.
type PolicyEngine interface {
	Evaluate(ctx context.Context, action Action) Decision
}

// Rule matches actions by type, name and category. Name and Category are
// glob patterns; an empty field matches anything. Effect is allow, deny or
// pending; any other value denies.
type Rule struct {
	ID       string
	Effect   string
	Type     ActionType
	Name     string
	Category string
	Reason   string
}

func (r Rule) matches(action Action) bool {
	if r.Type != "" && r.Type != action.Type {
		return false
	}
	return matchPattern(r.Name, action.Name) && matchPattern(r.Category, action.Category)
}

func (r Rule) decide() Decision {
	status := effectStatus(r.Effect)
	return Decision{
		Allowed: status == DecisionStatusAllow,
		Status:  status,
		Reason:  r.Reason,
		RuleID:  r.ID,
	}
}

func effectStatus(effect string) DecisionStatus {
	switch status := DecisionStatus(strings.ToLower(strings.TrimSpace(effect))); status {
	case DecisionStatusAllow, DecisionStatusPending:
		return status
	default:
		return DecisionStatusDeny
	}
}

// RuleSet is an ordered list of rules; the first matching rule decides.
type RuleSet struct {
	Rules []Rule
	// DefaultDecision applies when no rule matches.
	DefaultDecision Decision
}

// NewRuleSet copies rules into a rule set that allows by default.
func NewRuleSet(rules []Rule) *RuleSet {
	return &RuleSet{
		Rules:           append([]Rule(nil), rules...),
		DefaultDecision: allow(),
	}
}

// Evaluate implements PolicyEngine.
func (r *RuleSet) Evaluate(_ context.Context, action Action) Decision {
	for _, rule := range r.Rules {
		if rule.matches(action) {
			return rule.decide()
		}
	}
	return r.DefaultDecision
}

// matchPattern accepts path.Match globs and falls back to string equality
// for patterns path.Match rejects.
func matchPattern(pattern, value string) bool {
	if pattern == "" || pattern == value {
		return true
	}
	ok, err := path.Match(pattern, value)
	return err == nil && ok
}

// RuleSetFromConfig turns governance.policies into a RuleSet. Rules without
// an id are named policy-N after their 1-based position.
func RuleSetFromConfig(cfg config.GovernanceConfig) *RuleSet {
	rules := make([]Rule, 0, len(cfg.Policies))
	for i, p := range cfg.Policies {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = fmt.Sprintf("policy-%d", i+1)
		}
		rules = append(rules, Rule{
			ID:       id,
			Effect:   p.Effect,
			Type:     ActionType(strings.ToLower(strings.TrimSpace(p.Type))),
			Name:     p.Name,
			Category: p.Category,
			Reason:   p.Reason,
		})
	}
	return NewRuleSet(rules)
}
