// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package main implements the skillctl CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jllopis/skillkit/pkg/errors"
)

// CLIError wraps errors.Error with CLI-specific formatting and hints.
type CLIError struct {
	Err  *errors.Error
	Hint string
}

// NewCLIError creates a new CLI error.
func NewCLIError(e *errors.Error, hint string) *CLIError {
	return &CLIError{
		Err:  e,
		Hint: hint,
	}
}

// Error returns the formatted error message with hints.
func (e *CLIError) Error() string {
	if e.Err == nil {
		return "unknown error"
	}

	msg := e.Err.Error()
	if e.Hint != "" {
		msg += "\n  Hint: " + e.Hint
	}
	return msg
}

// Unwrap exposes the typed error.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// PrintError prints the error with appropriate formatting.
func (e *CLIError) PrintError(asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"code":    string(e.Err.Code),
				"message": e.Err.Message,
				"hint":    e.Hint,
			},
		})
		fmt.Fprintln(os.Stderr, string(payload))
		return
	}

	fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", FormatErrorCode(e.Err.Code), e.Err.Message)
	if e.Err.Err != nil {
		fmt.Fprintf(os.Stderr, "  Cause: %v\n", e.Err.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(os.Stderr, "  Hint: %s\n", e.Hint)
	}
}

// NewNotFoundError creates a not found error with CLI hints.
func NewNotFoundError(resource, name string) *CLIError {
	e := errors.New(errors.CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, name), nil).
		WithContext("resource", resource).
		WithContext("name", name)
	return NewCLIError(e, "run 'skillctl list' to see registered skills")
}

// NewInvalidArgumentError creates an invalid argument error with CLI hints.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	e := errors.New(errors.CodeInvalidInput, fmt.Sprintf("invalid argument: %s", reason), nil).
		WithContext("argument", arg).
		WithContext("reason", reason)
	return NewCLIError(e, "run 'skillctl help' for usage information")
}

// NewConfigError creates a configuration error with CLI hints.
func NewConfigError(err error, configPath string) *CLIError {
	e := errors.New(errors.CodeInvalidInput, "configuration error", err).
		WithContext("config_path", configPath)

	hint := "check your configuration file syntax"
	if configPath != "" {
		hint = fmt.Sprintf("check %s for syntax errors", configPath)
	}
	return NewCLIError(e, hint)
}

// NewExecutionError reports a failed skill outcome.
func NewExecutionError(skill, message string) *CLIError {
	e := errors.New(errors.CodeExecution, message, nil).
		WithContext("skill", skill)
	return NewCLIError(e, fmt.Sprintf("run 'skillctl describe %s' to check its parameters", skill))
}

// NewSetupError wraps failures while wiring stores, telemetry or skills.
func NewSetupError(err error, component string) *CLIError {
	e := errors.New(errors.CodeInternal, component+" setup failed", err).
		WithContext("component", component)
	return NewCLIError(e, "")
}

// PrintSimpleError prints a simple error message (for non-CLIError cases).
func PrintSimpleError(err error, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{"code": "UNKNOWN", "message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(payload))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
}

// FormatErrorCode returns a user-friendly name for error codes.
func FormatErrorCode(code errors.ErrorCode) string {
	switch code {
	case errors.CodeInternal:
		return "Internal Error"
	case errors.CodeInvalidInput:
		return "Invalid Input"
	case errors.CodeNotFound:
		return "Not Found"
	case errors.CodeAlreadyExists:
		return "Already Exists"
	case errors.CodeExecution:
		return "Execution Failed"
	case errors.CodeTimeout:
		return "Timeout"
	case errors.CodeDenied:
		return "Denied"
	default:
		return string(code)
	}
}
