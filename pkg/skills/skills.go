// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package skills defines the skill contract: declared metadata, typed
// parameters, argument validation and the uniform Outcome returned by Run.
package skills

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultVersion is applied when a definition omits a version.
	DefaultVersion = "1.0.0"
	// DefaultCategory is applied when a definition omits a category.
	DefaultCategory = "general"
)

var (
	// ErrEmptyName is returned when a skill is constructed without a name.
	ErrEmptyName = errors.New("skill name cannot be empty")
	// ErrEmptyDescription is returned when a skill is constructed without a description.
	ErrEmptyDescription = errors.New("skill description cannot be empty")
)

// Skill is a named capability that can be described, validated and run.
type Skill interface {
	Name() string
	Describe() Metadata
	Validate(args Args) error
	// Run performs the work. Faults must be reported through the Outcome,
	// never by panicking out of Run.
	Run(ctx context.Context, args Args) *Outcome
}

// Definition is the declared metadata of a skill.
type Definition struct {
	Name        string
	Description string
	Version     string
	Category    string
	Tags        []string
	Parameters  []ParameterSpec
}

// Metadata is the read-only snapshot returned by Describe.
type Metadata struct {
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	Version     string              `json:"version" yaml:"version"`
	Category    string              `json:"category" yaml:"category"`
	Tags        []string            `json:"tags" yaml:"tags"`
	Parameters  []ParameterMetadata `json:"parameters" yaml:"parameters"`
}

// ParameterMetadata describes one parameter inside Metadata.
type ParameterMetadata struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ParameterType `json:"type" yaml:"type"`
	Description string        `json:"description" yaml:"description"`
	Required    bool          `json:"required" yaml:"required"`
	Default     any           `json:"default" yaml:"default"`
}

// ParameterSpecs converts the snapshot back into parameter declarations.
func (m Metadata) ParameterSpecs() []ParameterSpec {
	specs := make([]ParameterSpec, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		specs = append(specs, ParameterSpec{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
			Default:     p.Default,
		})
	}
	return specs
}

// ValidationKind classifies a validation failure.
type ValidationKind string

const (
	MissingParameter ValidationKind = "missing_parameter"
	UnknownParameter ValidationKind = "unknown_parameter"
	InvalidType      ValidationKind = "invalid_type"
)

// ValidationError reports the first problem found in a set of arguments.
type ValidationError struct {
	Kind     ValidationKind
	Param    string
	Expected ParameterType
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingParameter:
		return "Missing required parameter: " + e.Param
	case UnknownParameter:
		return "Unknown parameter: " + e.Param
	default:
		return fmt.Sprintf("Invalid type for parameter %s: expected %s", e.Param, e.Expected)
	}
}

// Base implements Name, Describe and Validate from a Definition.
// Concrete skills embed it and provide Run.
type Base struct {
	def Definition
}

// NewBase checks the definition and fills version, category and tag defaults.
func NewBase(def Definition) (*Base, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(def.Description) == "" {
		return nil, ErrEmptyDescription
	}
	seen := make(map[string]bool, len(def.Parameters))
	for _, p := range def.Parameters {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("skill %s: parameter name cannot be empty", def.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("skill %s: duplicate parameter %s", def.Name, p.Name)
		}
		seen[p.Name] = true
	}
	if def.Version == "" {
		def.Version = DefaultVersion
	}
	if def.Category == "" {
		def.Category = DefaultCategory
	}
	def.Tags = append([]string{}, def.Tags...)
	def.Parameters = append([]ParameterSpec(nil), def.Parameters...)
	for i := range def.Parameters {
		if def.Parameters[i].Type == "" {
			def.Parameters[i].Type = TypeAny
		}
	}
	return &Base{def: def}, nil
}

// Name returns the skill name.
func (b *Base) Name() string {
	return b.def.Name
}

// Category returns the skill category.
func (b *Base) Category() string {
	return b.def.Category
}

// Parameters returns a copy of the declared parameters.
func (b *Base) Parameters() []ParameterSpec {
	return append([]ParameterSpec(nil), b.def.Parameters...)
}

// Describe returns a snapshot of the skill metadata.
func (b *Base) Describe() Metadata {
	params := make([]ParameterMetadata, 0, len(b.def.Parameters))
	for _, p := range b.def.Parameters {
		params = append(params, ParameterMetadata{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
			Default:     p.Default,
		})
	}
	return Metadata{
		Name:        b.def.Name,
		Description: b.def.Description,
		Version:     b.def.Version,
		Category:    b.def.Category,
		Tags:        append([]string{}, b.def.Tags...),
		Parameters:  params,
	}
}

// Validate checks presence of required parameters, then rejects unknown keys.
// Values are not type checked.
func (b *Base) Validate(args Args) error {
	return ValidateArgs(b.def.Parameters, args)
}

// WithDefaults returns a copy of args with absent parameters set to their
// declared defaults.
func (b *Base) WithDefaults(args Args) Args {
	out := args.Clone()
	for _, p := range b.def.Parameters {
		if _, ok := out[p.Name]; !ok && p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	return out
}

// ValidateArgs applies the presence rules to args. Required parameters are
// scanned in declaration order first; unknown keys are then reported in
// lexical order so the message is deterministic.
func ValidateArgs(params []ParameterSpec, args Args) error {
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p.Name] = true
		if !p.mandatory() {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			return &ValidationError{Kind: MissingParameter, Param: p.Name}
		}
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !declared[k] {
			return &ValidationError{Kind: UnknownParameter, Param: k}
		}
	}
	return nil
}
