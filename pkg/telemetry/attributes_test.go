// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSkillAttributes(t *testing.T) {
	attrs := SkillAttributes("calculator", "1.0.0", "math", "exec-1")
	assertAttributes(t, attrs, map[string]any{
		AttrSkillName:     "calculator",
		AttrSkillVersion:  "1.0.0",
		AttrSkillCategory: "math",
		AttrExecutionID:   "exec-1",
	})

	if got := SkillAttributes("ghost", "", "", ""); len(got) != 1 {
		t.Fatalf("expected only the name attribute, got %d", len(got))
	}
}

func TestOutcomeAttributes(t *testing.T) {
	attrs := OutcomeAttributes(false, ErrorKindValidation, "Missing required parameter: b", 1.5, 0)
	assertAttributes(t, attrs, map[string]any{
		AttrOutcomeSuccess:    false,
		AttrOutcomeErrorKind:  "validation",
		AttrOutcomeError:      "Missing required parameter: b",
		AttrOutcomeDurationMs: 1.5,
	})

	long := strings.Repeat("x", 50)
	attrs = OutcomeAttributes(false, ErrorKindExecution, long, 0, 10)
	for _, attr := range attrs {
		if string(attr.Key) == AttrOutcomeError && attr.Value.AsString() != strings.Repeat("x", 10)+"..." {
			t.Fatalf("expected truncated error, got %q", attr.Value.AsString())
		}
	}

	if got := OutcomeAttributes(true, "", "", 2, 0); len(got) != 2 {
		t.Fatalf("expected success and duration only, got %d", len(got))
	}
}

func assertAttributes(t *testing.T, attrs []attribute.KeyValue, expected map[string]any) {
	t.Helper()

	found := make(map[string]attribute.KeyValue)
	for _, attr := range attrs {
		found[string(attr.Key)] = attr
	}

	for key, expectedVal := range expected {
		attr, ok := found[key]
		if !ok {
			t.Errorf("missing attribute %s", key)
			continue
		}

		var actualVal any
		switch attr.Value.Type() {
		case attribute.STRING:
			actualVal = attr.Value.AsString()
		case attribute.INT64:
			actualVal = int(attr.Value.AsInt64())
		case attribute.FLOAT64:
			actualVal = attr.Value.AsFloat64()
		case attribute.BOOL:
			actualVal = attr.Value.AsBool()
		}

		if actualVal != expectedVal {
			t.Errorf("attribute %s: got %v, want %v", key, actualVal, expectedVal)
		}
	}
}
