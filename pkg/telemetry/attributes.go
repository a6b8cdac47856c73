// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides logging, tracing and metrics for skill
// execution.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for skill telemetry.
const (
	AttrSkillName     = "skillkit.skill.name"
	AttrSkillVersion  = "skillkit.skill.version"
	AttrSkillCategory = "skillkit.skill.category"

	AttrExecutionID       = "skillkit.execution.id"
	AttrExecutionValidate = "skillkit.execution.validate"
	AttrExecutionArgCount = "skillkit.execution.arg_count"

	AttrOutcomeSuccess    = "skillkit.outcome.success"
	AttrOutcomeError      = "skillkit.outcome.error"
	AttrOutcomeErrorKind  = "skillkit.outcome.error_kind"
	AttrOutcomeDurationMs = "skillkit.outcome.duration_ms"

	AttrBatchSize = "skillkit.batch.size"
)

// Error kinds recorded on failed outcomes.
const (
	ErrorKindNotFound   = "not_found"
	ErrorKindDenied     = "denied"
	ErrorKindValidation = "validation"
	ErrorKindExecution  = "execution"
	ErrorKindSkill      = "skill"
)

// SkillAttributes returns attributes identifying a skill invocation.
func SkillAttributes(name, version, category, executionID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSkillName, name),
	}
	if version != "" {
		attrs = append(attrs, attribute.String(AttrSkillVersion, version))
	}
	if category != "" {
		attrs = append(attrs, attribute.String(AttrSkillCategory, category))
	}
	if executionID != "" {
		attrs = append(attrs, attribute.String(AttrExecutionID, executionID))
	}
	return attrs
}

// OutcomeAttributes returns attributes describing an outcome. Error text is
// truncated to maxLen characters.
func OutcomeAttributes(success bool, errorKind, errText string, durationMs float64, maxLen int) []attribute.KeyValue {
	if maxLen <= 0 {
		maxLen = 500
	}
	attrs := []attribute.KeyValue{
		attribute.Bool(AttrOutcomeSuccess, success),
		attribute.Float64(AttrOutcomeDurationMs, durationMs),
	}
	if errorKind != "" {
		attrs = append(attrs, attribute.String(AttrOutcomeErrorKind, errorKind))
	}
	if errText != "" {
		if len(errText) > maxLen {
			errText = errText[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrOutcomeError, errText))
	}
	return attrs
}
