// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package governance

import (
	"context"
	"path"
	"strings"

	"github.com/jllopis/skillkit/pkg/config"
)

// SkillFilter gates skills by allowlist, denylist and an optional policy engine.
type SkillFilter struct {
	allowlist    map[string]bool
	denylist     map[string]bool
	policyEngine PolicyEngine
}

// SkillFilterOption configures a SkillFilter.
type SkillFilterOption func(*SkillFilter)

// NewSkillFilter creates a new SkillFilter with the given options.
func NewSkillFilter(opts ...SkillFilterOption) *SkillFilter {
	sf := &SkillFilter{
		allowlist: make(map[string]bool),
		denylist:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(sf)
	}
	return sf
}

// FromConfig builds a filter from the governance config section.
// It returns nil when nothing is configured.
func FromConfig(cfg config.GovernanceConfig) *SkillFilter {
	if len(cfg.Allow) == 0 && len(cfg.Deny) == 0 && len(cfg.Policies) == 0 {
		return nil
	}
	opts := []SkillFilterOption{WithAllowlist(cfg.Allow), WithDenylist(cfg.Deny)}
	if len(cfg.Policies) > 0 {
		opts = append(opts, WithPolicyEngine(RuleSetFromConfig(cfg)))
	}
	return NewSkillFilter(opts...)
}

// WithAllowlist sets the allowlist of permitted skill names/patterns.
func WithAllowlist(names []string) SkillFilterOption {
	return func(sf *SkillFilter) {
		sf.AddToAllowlist(names...)
	}
}

// WithDenylist sets the denylist of forbidden skill names/patterns.
func WithDenylist(names []string) SkillFilterOption {
	return func(sf *SkillFilter) {
		sf.AddToDenylist(names...)
	}
}

// WithPolicyEngine attaches a policy engine for additional evaluation.
func WithPolicyEngine(engine PolicyEngine) SkillFilterOption {
	return func(sf *SkillFilter) {
		sf.policyEngine = engine
	}
}

// Check consults the denylist, then the allowlist (when non-empty), then
// the policy engine. Anything that gets through is allowed.
func (sf *SkillFilter) Check(ctx context.Context, action Action) Decision {
	if sf.matchesList(action.Name, sf.denylist) {
		return deny("skill is in denylist")
	}

	if len(sf.allowlist) > 0 && !sf.matchesList(action.Name, sf.allowlist) {
		return deny("skill is not in allowlist")
	}

	if sf.policyEngine != nil {
		return sf.policyEngine.Evaluate(ctx, action)
	}

	return allow()
}

// IsAllowed checks a skill invocation by name.
func (sf *SkillFilter) IsAllowed(ctx context.Context, name string) Decision {
	return sf.Check(ctx, Action{Type: ActionSkill, Name: name})
}

// FilterNames returns only the names that pass the filter for the action
// type. The actions carry no category, so category rules never match here;
// use Check with a full Action when the category is known.
func (sf *SkillFilter) FilterNames(ctx context.Context, typ ActionType, names []string) []string {
	if len(sf.allowlist) == 0 && len(sf.denylist) == 0 && sf.policyEngine == nil {
		return names
	}
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if sf.Check(ctx, Action{Type: typ, Name: name}).IsAllowed() {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// matchesList checks name against exact entries and glob patterns.
func (sf *SkillFilter) matchesList(name string, list map[string]bool) bool {
	if list[name] {
		return true
	}
	for pattern := range list {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// AddToAllowlist adds names or patterns to the allowlist.
func (sf *SkillFilter) AddToAllowlist(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			sf.allowlist[name] = true
		}
	}
}

// AddToDenylist adds names or patterns to the denylist.
func (sf *SkillFilter) AddToDenylist(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			sf.denylist[name] = true
		}
	}
}
