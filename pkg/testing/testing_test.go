// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jllopis/skillkit/pkg/executor"
	"github.com/jllopis/skillkit/pkg/registry"
	"github.com/jllopis/skillkit/pkg/skills"
)

// fakeRunner implements Runner with a canned outcome.
type fakeRunner struct {
	outcome   *skills.Outcome
	delay     time.Duration
	lastName  string
	lastArgs  skills.Args
	lastCalls int
	skipped   bool
}

func (f *fakeRunner) Execute(ctx context.Context, name string, args skills.Args, opts ...executor.CallOption) *skills.Outcome {
	f.lastName, f.lastArgs, f.skipped = name, args, len(opts) > 0
	f.lastCalls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return skills.Fail("execution error: %v", ctx.Err())
		}
	}
	return f.outcome
}

func newExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	reg := registry.New()
	greet := skills.MustNew(skills.Definition{
		Name:        "greet",
		Description: "Greets someone",
		Parameters: []skills.ParameterSpec{
			skills.Param("name", skills.TypeString, "Who to greet"),
			skills.Optional("punctuation", skills.TypeString, "Trailing mark", "!"),
		},
	}, func(_ context.Context, args skills.Args) (any, error) {
		name, _ := args.String("name")
		mark, _ := args.String("punctuation")
		return skills.Succeed("Hello, "+name+mark, map[string]any{"length": len(name)}), nil
	})
	RequireNoError(t, reg.Register(greet), "register greet")
	return executor.New(reg, executor.WithLogger(NewLogCollector().Logger()))
}

func TestScenarioBasic(t *testing.T) {
	scenario := NewScenario("greeting").
		WithSkill("greet").
		WithArgs(skills.Args{"name": "Ada"}).
		ExpectSuccess().
		ExpectData("Hello, Ada!").
		ExpectMetadata("length", 3)

	result := scenario.Run(t, newExecutor(t))
	result.Assert(t, scenario)
}

func TestScenarioWithError(t *testing.T) {
	scenario := NewScenario("missing name").
		WithSkill("greet").
		WithArgs(skills.Args{}).
		ExpectFailure().
		ExpectError(Contains("Missing required parameter: name"))

	result := scenario.Run(t, newExecutor(t))
	result.Assert(t, scenario)
}

func TestScenarioWithoutValidation(t *testing.T) {
	runner := &fakeRunner{outcome: skills.Succeed("ok", nil)}
	scenario := NewScenario("skip").
		WithSkill("anything").
		WithArgs(skills.Args{"x": 1}).
		WithoutValidation().
		ExpectSuccess()

	result := scenario.Run(t, runner)
	result.Assert(t, scenario)
	if !runner.skipped || runner.lastName != "anything" || runner.lastArgs["x"] != 1 {
		t.Fatalf("unexpected runner call: %+v", runner)
	}
}

func TestScenarioDuration(t *testing.T) {
	runner := &fakeRunner{outcome: skills.Succeed("ok", nil), delay: 50 * time.Millisecond}
	scenario := NewScenario("duration").
		WithSkill("slow").
		WithTimeout(time.Second).
		ExpectSuccess().
		ExpectMinDuration(40 * time.Millisecond).
		ExpectMaxDuration(time.Second)

	result := scenario.Run(t, runner)
	result.Assert(t, scenario)
}

func TestScenarioTimeout(t *testing.T) {
	runner := &fakeRunner{outcome: skills.Succeed("ok", nil), delay: 500 * time.Millisecond}
	scenario := NewScenario("timeout").
		WithSkill("slow").
		WithTimeout(20 * time.Millisecond).
		ExpectError(Contains("context deadline"))

	result := scenario.Run(t, runner)
	result.Assert(t, scenario)
}

func TestScenarioSetupTeardown(t *testing.T) {
	var order []string
	runner := &fakeRunner{outcome: skills.Succeed("ok", nil)}
	scenario := NewScenario("hooks").
		WithSkill("x").
		WithSetup(func() error { order = append(order, "setup"); return nil }).
		WithTeardown(func() error { order = append(order, "teardown"); return nil })

	scenario.Run(t, runner)
	if len(order) != 2 || order[0] != "setup" || order[1] != "teardown" {
		t.Fatalf("unexpected hook order: %v", order)
	}
}

func TestExpectationsReportMismatch(t *testing.T) {
	result := &ScenarioResult{Outcome: skills.Fail("boom"), Duration: time.Second}
	checks := []Expectation{
		Succeeds(),
		DataEquals(1),
		MetadataEquals("k", 1),
		ErrorMatches(Equals("other")),
		TakesAtMost(time.Millisecond),
		TakesAtLeast(time.Minute),
	}
	for _, exp := range checks {
		if err := exp.Check(result); err == nil {
			t.Errorf("expected %q to fail", exp.Description())
		}
	}
	for _, exp := range []Expectation{Fails(), ErrorMatches(Contains("boom")), TakesAtMost(time.Minute)} {
		if err := exp.Check(result); err != nil {
			t.Errorf("expected %q to pass: %v", exp.Description(), err)
		}
	}
}

func TestScenarioDefaultsSkillToName(t *testing.T) {
	runner := &fakeRunner{outcome: skills.Succeed("ok", nil)}
	NewScenario("greet").Run(t, runner)
	if runner.lastName != "greet" {
		t.Fatalf("expected skill name to default to scenario name, got %q", runner.lastName)
	}
}

func TestRunAll(t *testing.T) {
	exec := newExecutor(t)
	RunAll(t, exec,
		NewScenario("greet").WithArgs(skills.Args{"name": "Bo", "punctuation": "?"}).ExpectData("Hello, Bo?"),
		NewScenario("ghost").ExpectError(Regex(`^skill '\w+' not found`)),
	)
}

func TestStringMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher StringMatcher
		input   string
		match   bool
	}{
		{"contains match", Contains("world"), "hello world", true},
		{"contains no match", Contains("foo"), "hello world", false},
		{"equals match", Equals("hello"), "hello", true},
		{"equals no match", Equals("hello"), "Hello", false},
		{"prefix match", HasPrefix("hello"), "hello world", true},
		{"prefix no match", HasPrefix("world"), "hello world", false},
		{"regex match", Regex(`^skill '\w+' not found`), "skill 'x' not found in registry", true},
		{"regex invalid", Regex(`(`), "anything", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.matcher.Match(tc.input); got != tc.match {
				t.Errorf("expected match=%v, got %v", tc.match, got)
			}
		})
	}
}

func TestLogCollector(t *testing.T) {
	collector := NewLogCollector()
	logger := collector.Logger().With(slog.String("component", "test"))

	logger.Info("skill.execute.start", slog.String("skill", "greet"))
	logger.Error("skill.execute.failed", slog.String("error", "boom"))

	if collector.Count() != 2 {
		t.Fatalf("expected 2 records, got %d", collector.Count())
	}
	if !collector.HasMessage("skill.execute.failed") || collector.HasMessage("missing") {
		t.Fatalf("unexpected messages: %v", collector.Messages())
	}
	if v, ok := collector.Attr("skill.execute.start", "skill"); !ok || v.String() != "greet" {
		t.Fatalf("expected skill attr, got %v %v", v, ok)
	}
	if v, ok := collector.Attr("skill.execute.failed", "component"); !ok || v.String() != "test" {
		t.Fatalf("expected inherited attr, got %v %v", v, ok)
	}

	collector.Reset()
	if collector.Count() != 0 {
		t.Fatalf("expected reset collector")
	}
}

func TestAssertMetadata(t *testing.T) {
	exec := newExecutor(t)
	greet, ok := exec.Registry().Get("greet")
	if !ok {
		t.Fatalf("greet not registered")
	}
	a := NewAssertions(t)
	a.AssertMetadata(greet.Describe(), "greet", map[string]bool{"name": true, "punctuation": false})
	if a.Failed() {
		t.Error("metadata assertions should not have failed")
	}
	if got := RequireOutcome(t, skills.Succeed(3, nil)); got != 3 {
		t.Errorf("unexpected data %v", got)
	}
}

func TestOutcomeAssertions(t *testing.T) {
	a := NewAssertions(t)

	a.AssertOutcome(skills.Succeed(15.0, map[string]any{"operation": "add"})).
		Succeeded().
		HasData(15.0).
		HasMetadata("operation", "add")

	a.AssertOutcome(skills.Fail("Division by zero is not allowed")).
		Failed().
		ErrorContains("Division by zero").
		ErrorMatches(HasPrefix("Division"))

	a.AssertScenarioResult(&ScenarioResult{Outcome: skills.Succeed("x", nil)}).
		Succeeded()

	if a.Failed() {
		t.Error("outcome assertions should not have failed")
	}
}
