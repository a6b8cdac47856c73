// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jllopis/skillkit/pkg/skills"
)

// Assertions records failures against t without stopping the test.
type Assertions struct {
	t      testing.TB
	failed bool
}

func NewAssertions(t testing.TB) *Assertions {
	return &Assertions{t: t}
}

// Failed reports whether any assertion made through a has failed.
func (a *Assertions) Failed() bool {
	return a.failed
}

func (a *Assertions) errorf(format string, args ...any) {
	a.t.Helper()
	a.failed = true
	a.t.Errorf(format, args...)
}

// OutcomeAssertions chains checks on one outcome.
type OutcomeAssertions struct {
	a   *Assertions
	out *skills.Outcome
}

// AssertOutcome starts a chain on out. A nil outcome fails immediately and
// later checks run against an empty failed outcome.
func (a *Assertions) AssertOutcome(out *skills.Outcome) *OutcomeAssertions {
	a.t.Helper()
	if out == nil {
		a.errorf("outcome is nil")
		out = &skills.Outcome{}
	}
	return &OutcomeAssertions{a: a, out: out}
}

func (o *OutcomeAssertions) Succeeded() *OutcomeAssertions {
	o.a.t.Helper()
	if !o.out.Success {
		o.a.errorf("expected success, got error %q", o.out.Error)
	}
	return o
}

func (o *OutcomeAssertions) Failed() *OutcomeAssertions {
	o.a.t.Helper()
	if o.out.Success {
		o.a.errorf("expected failure, got data %#v", o.out.Data)
	}
	return o
}

// HasData compares Data with reflect.DeepEqual.
func (o *OutcomeAssertions) HasData(want any) *OutcomeAssertions {
	o.a.t.Helper()
	if !reflect.DeepEqual(o.out.Data, want) {
		o.a.errorf("data: want %#v, got %#v", want, o.out.Data)
	}
	return o
}

func (o *OutcomeAssertions) ErrorContains(sub string) *OutcomeAssertions {
	o.a.t.Helper()
	if !strings.Contains(o.out.Error, sub) {
		o.a.errorf("error %q does not contain %q", o.out.Error, sub)
	}
	return o
}

func (o *OutcomeAssertions) ErrorMatches(m StringMatcher) *OutcomeAssertions {
	o.a.t.Helper()
	if !m.Match(o.out.Error) {
		o.a.errorf("error %q: want %s", o.out.Error, m.Description())
	}
	return o
}

func (o *OutcomeAssertions) HasMetadata(key string, want any) *OutcomeAssertions {
	o.a.t.Helper()
	got, ok := o.out.Metadata[key]
	if !ok {
		o.a.errorf("metadata key %q not found", key)
		return o
	}
	if !reflect.DeepEqual(got, want) {
		o.a.errorf("metadata %q: want %#v, got %#v", key, want, got)
	}
	return o
}

// AssertScenarioResult chains checks on the outcome of a scenario run.
func (a *Assertions) AssertScenarioResult(result *ScenarioResult) *OutcomeAssertions {
	a.t.Helper()
	if result == nil {
		a.errorf("scenario result is nil")
		return a.AssertOutcome(&skills.Outcome{})
	}
	return a.AssertOutcome(result.Outcome)
}

// AssertMetadata checks the declared shape of a skill: its name and the
// required flag of each listed parameter.
func (a *Assertions) AssertMetadata(meta skills.Metadata, name string, required map[string]bool) {
	a.t.Helper()
	if meta.Name != name {
		a.errorf("metadata name: want %q, got %q", name, meta.Name)
	}
	declared := make(map[string]bool, len(meta.Parameters))
	for _, p := range meta.Parameters {
		declared[p.Name] = p.Required
	}
	for param, want := range required {
		got, ok := declared[param]
		switch {
		case !ok:
			a.errorf("%s: parameter %q not declared", name, param)
		case got != want:
			a.errorf("%s: parameter %q required=%v, want %v", name, param, got, want)
		}
	}
}

// RequireNoError stops the test when err is non-nil.
func RequireNoError(t testing.TB, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireOutcome stops the test unless out is a success, and returns its data.
func RequireOutcome(t testing.TB, out *skills.Outcome) any {
	t.Helper()
	if out == nil {
		t.Fatalf("outcome is nil")
	}
	if !out.Success {
		t.Fatalf("outcome failed: %s", out.Error)
	}
	return out.Data
}
