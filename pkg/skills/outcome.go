// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import "fmt"

// Outcome is the uniform result of a skill invocation.
// Success and Error are mutually exclusive by convention.
type Outcome struct {
	Success  bool           `json:"success" yaml:"success"`
	Data     any            `json:"data,omitempty" yaml:"data,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Succeed builds a successful outcome.
func Succeed(data any, metadata map[string]any) *Outcome {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Outcome{Success: true, Data: data, Metadata: metadata}
}

// Fail builds a failed outcome with a formatted error message.
func Fail(format string, args ...any) *Outcome {
	return &Outcome{Error: fmt.Sprintf(format, args...), Metadata: map[string]any{}}
}
