// SPDX-License-Identifier: Apache-2.0
package testing

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// Expectation is a condition on a ScenarioResult.
type Expectation interface {
	Check(result *ScenarioResult) error
	Description() string
}

type expectation struct {
	desc  string
	check func(*ScenarioResult) error
}

func (e expectation) Check(r *ScenarioResult) error { return e.check(r) }
func (e expectation) Description() string { return e.desc }

// Succeeds expects a successful outcome.
func Succeeds() Expectation {
	return expectation{"success", func(r *ScenarioResult) error {
		if !r.Outcome.Success {
			return fmt.Errorf("outcome failed: %s", r.Outcome.Error)
		}
		return nil
	}}
}

// Fails expects a failed outcome.
func Fails() Expectation {
	return expectation{"failure", func(r *ScenarioResult) error {
		if r.Outcome.Success {
			return fmt.Errorf("outcome succeeded with data %#v", r.Outcome.Data)
		}
		return nil
	}}
}

// DataEquals expects Outcome.Data to deep-equal want.
func DataEquals(want any) Expectation {
	return expectation{fmt.Sprintf("data == %#v", want), func(r *ScenarioResult) error {
		if !reflect.DeepEqual(r.Outcome.Data, want) {
			return fmt.Errorf("got data %#v", r.Outcome.Data)
		}
		return nil
	}}
}

// MetadataEquals expects Outcome.Metadata[key] to deep-equal want.
func MetadataEquals(key string, want any) Expectation {
	return expectation{fmt.Sprintf("metadata[%s] == %#v", key, want), func(r *ScenarioResult) error {
		got, ok := r.Outcome.Metadata[key]
		switch {
		case !ok:
			return fmt.Errorf("no metadata key %q", key)
		case !reflect.DeepEqual(got, want):
			return fmt.Errorf("got %#v", got)
		}
		return nil
	}}
}

// ErrorMatches expects a failed outcome whose error satisfies m.
func ErrorMatches(m StringMatcher) Expectation {
	return expectation{"error " + m.Description(), func(r *ScenarioResult) error {
		if r.Outcome.Success {
			return fmt.Errorf("outcome succeeded")
		}
		if !m.Match(r.Outcome.Error) {
			return fmt.Errorf("got error %q", r.Outcome.Error)
		}
		return nil
	}}
}

// TakesAtLeast expects the call to last min or longer.
func TakesAtLeast(min time.Duration) Expectation {
	return expectation{fmt.Sprintf("duration >= %v", min), func(r *ScenarioResult) error {
		if r.Duration < min {
			return fmt.Errorf("took %v", r.Duration)
		}
		return nil
	}}
}

// TakesAtMost expects the call to finish within max.
func TakesAtMost(max time.Duration) Expectation {
	return expectation{fmt.Sprintf("duration <= %v", max), func(r *ScenarioResult) error {
		if r.Duration > max {
			return fmt.Errorf("took %v", r.Duration)
		}
		return nil
	}}
}

// StringMatcher matches outcome error messages.
type StringMatcher interface {
	Match(s string) bool
	Description() string
}

type matcher struct {
	desc  string
	match func(string) bool
}

func (m matcher) Match(s string) bool { return m.match(s) }
func (m matcher) Description() string { return m.desc }

func Contains(sub string) StringMatcher {
	return matcher{fmt.Sprintf("contains %q", sub), func(s string) bool { return strings.Contains(s, sub) }}
}

func Equals(want string) StringMatcher {
	return matcher{fmt.Sprintf("equals %q", want), func(s string) bool { return s == want }}
}

func HasPrefix(prefix string) StringMatcher {
	return matcher{fmt.Sprintf("has prefix %q", prefix), func(s string) bool { return strings.HasPrefix(s, prefix) }}
}

// Regex compiles pattern once. An invalid pattern matches nothing.
func Regex(pattern string) StringMatcher {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return matcher{fmt.Sprintf("invalid regex %q: %v", pattern, err), func(string) bool { return false }}
	}
	return matcher{fmt.Sprintf("matches %q", pattern), re.MatchString}
}
