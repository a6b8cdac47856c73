// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// ParameterType is the declared type of a skill parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeFloat   ParameterType = "float"
	TypeBoolean ParameterType = "boolean"
	TypeList    ParameterType = "list"
	TypeMapping ParameterType = "mapping"
	TypeAny     ParameterType = "any"
)

// ParseParameterType maps a textual type to a ParameterType.
// "dict" is accepted as an alias of "mapping".
func ParseParameterType(value string) (ParameterType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "string", "str":
		return TypeString, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float", "number":
		return TypeFloat, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "list", "array":
		return TypeList, nil
	case "mapping", "dict", "object":
		return TypeMapping, nil
	case "", "any":
		return TypeAny, nil
	default:
		return "", fmt.Errorf("unknown parameter type %q", value)
	}
}

// ParameterSpec declares one argument accepted by a skill.
type ParameterSpec struct {
	Name        string
	Type        ParameterType
	Description string
	Required    bool
	Default     any
}

// Param declares a required parameter.
func Param(name string, typ ParameterType, description string) ParameterSpec {
	return ParameterSpec{Name: name, Type: typ, Description: description, Required: true}
}

// Optional declares a parameter that may be omitted; def is used when it is.
func Optional(name string, typ ParameterType, description string, def any) ParameterSpec {
	return ParameterSpec{Name: name, Type: typ, Description: description, Default: def}
}

// mandatory reports whether the parameter must be supplied by the caller.
func (p ParameterSpec) mandatory() bool {
	return p.Required && p.Default == nil
}

// CheckTypes verifies that supplied values match their declared types.
// Absent parameters and nil values are ignored; presence is Validate's job.
func CheckTypes(params []ParameterSpec, args Args) error {
	for _, p := range params {
		value, ok := args[p.Name]
		if !ok || value == nil {
			continue
		}
		if !matchesType(p.Type, value) {
			return &ValidationError{Kind: InvalidType, Param: p.Name, Expected: p.Type}
		}
	}
	return nil
}

func matchesType(typ ParameterType, value any) bool {
	rv := reflect.ValueOf(value)
	switch typ {
	case TypeString:
		return rv.Kind() == reflect.String
	case TypeBoolean:
		return rv.Kind() == reflect.Bool
	case TypeInteger:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		case reflect.Float32, reflect.Float64:
			// JSON and YAML decoders hand integers over as floats.
			f := rv.Float()
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		}
		return false
	case TypeFloat:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case TypeList:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	case TypeMapping:
		return rv.Kind() == reflect.Map
	default:
		return true
	}
}
