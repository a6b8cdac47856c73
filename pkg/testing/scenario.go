// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing holds helpers for skill tests: declarative scenarios run
// through an executor, outcome assertions and a slog collector for checking
// executor events.
//
//	scenario := skilltest.NewScenario("add").
//	    WithSkill("calculator").
//	    WithArgs(skills.Args{"operation": "add", "a": 10, "b": 5}).
//	    ExpectSuccess().
//	    ExpectData(15.0)
//
//	scenario.Run(t, exec).Assert(t, scenario)
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/jllopis/skillkit/pkg/executor"
	"github.com/jllopis/skillkit/pkg/skills"
)

const defaultScenarioTimeout = 30 * time.Second

// Runner executes skills by name. *executor.Executor implements it.
type Runner interface {
	Execute(ctx context.Context, name string, args skills.Args, opts ...executor.CallOption) *skills.Outcome
}

// Scenario is one skill call plus the expectations on its outcome.
type Scenario struct {
	name     string
	skill    string
	args     skills.Args
	callOpts []executor.CallOption
	ctx      context.Context
	timeout  time.Duration
	expect   []Expectation
	setup    []func() error
	teardown []func() error
}

// ScenarioResult is what Run observed.
type ScenarioResult struct {
	Outcome  *skills.Outcome
	Duration time.Duration
}

// NewScenario starts a scenario. Without WithSkill it calls a skill named
// after the scenario.
func NewScenario(name string) *Scenario {
	return &Scenario{
		name:    name,
		skill:   name,
		ctx:     context.Background(),
		timeout: defaultScenarioTimeout,
	}
}

// Name returns the scenario name.
func (s *Scenario) Name() string { return s.name }

func (s *Scenario) WithSkill(name string) *Scenario {
	s.skill = name
	return s
}

func (s *Scenario) WithArgs(args skills.Args) *Scenario {
	s.args = args
	return s
}

// WithoutValidation passes executor.WithoutValidation to the call.
func (s *Scenario) WithoutValidation() *Scenario {
	s.callOpts = append(s.callOpts, executor.WithoutValidation())
	return s
}

func (s *Scenario) WithContext(ctx context.Context) *Scenario {
	s.ctx = ctx
	return s
}

// WithTimeout bounds the call context. The default is 30s.
func (s *Scenario) WithTimeout(d time.Duration) *Scenario {
	s.timeout = d
	return s
}

// WithSetup registers fn to run before the call. A setup error aborts the test.
func (s *Scenario) WithSetup(fn func() error) *Scenario {
	s.setup = append(s.setup, fn)
	return s
}

// WithTeardown registers fn to run once the call returns.
func (s *Scenario) WithTeardown(fn func() error) *Scenario {
	s.teardown = append(s.teardown, fn)
	return s
}

// Expect appends any expectation.
func (s *Scenario) Expect(exp ...Expectation) *Scenario {
	s.expect = append(s.expect, exp...)
	return s
}

func (s *Scenario) ExpectSuccess() *Scenario { return s.Expect(Succeeds()) }

func (s *Scenario) ExpectFailure() *Scenario { return s.Expect(Fails()) }

func (s *Scenario) ExpectData(v any) *Scenario { return s.Expect(DataEquals(v)) }

func (s *Scenario) ExpectError(m StringMatcher) *Scenario { return s.Expect(ErrorMatches(m)) }

func (s *Scenario) ExpectMetadata(key string, v any) *Scenario {
	return s.Expect(MetadataEquals(key, v))
}

func (s *Scenario) ExpectMinDuration(d time.Duration) *Scenario { return s.Expect(TakesAtLeast(d)) }

func (s *Scenario) ExpectMaxDuration(d time.Duration) *Scenario { return s.Expect(TakesAtMost(d)) }

// Run performs the call. Expectations are checked separately by Assert.
func (s *Scenario) Run(t testing.TB, runner Runner) *ScenarioResult {
	t.Helper()

	for i, fn := range s.setup {
		if err := fn(); err != nil {
			t.Fatalf("scenario %q: setup #%d: %v", s.name, i+1, err)
		}
	}
	defer func() {
		for i, fn := range s.teardown {
			if err := fn(); err != nil {
				t.Errorf("scenario %q: teardown #%d: %v", s.name, i+1, err)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	outcome := runner.Execute(ctx, s.skill, s.args, s.callOpts...)
	elapsed := time.Since(start)
	if outcome == nil {
		t.Fatalf("scenario %q: %s returned a nil outcome", s.name, s.skill)
	}
	return &ScenarioResult{Outcome: outcome, Duration: elapsed}
}

// Assert reports every unmet expectation of scenario.
func (r *ScenarioResult) Assert(t testing.TB, scenario *Scenario) {
	t.Helper()
	for _, exp := range scenario.expect {
		if err := exp.Check(r); err != nil {
			t.Errorf("scenario %q: %s: %v", scenario.name, exp.Description(), err)
		}
	}
}

// RunAll runs each scenario as a subtest and asserts its expectations.
func RunAll(t *testing.T, runner Runner, scenarios ...*Scenario) {
	t.Helper()
	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			sc.Run(t, runner).Assert(t, sc)
		})
	}
}
