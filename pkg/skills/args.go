// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args is the loosely-typed argument mapping passed to a skill.
type Args map[string]any

// Clone returns a shallow copy; a nil receiver yields an empty map.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// String returns the argument as a string. Non-string scalars are formatted.
func (a Args) String(name string) (string, error) {
	value, ok := a[name]
	if !ok || value == nil {
		return "", fmt.Errorf("parameter %s is not set", name)
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []any, map[string]any:
		return "", fmt.Errorf("parameter %s must be a string, got %T", name, value)
	default:
		return fmt.Sprint(v), nil
	}
}

// Float returns the argument as a float64, parsing strings when needed.
func (a Args) Float(name string) (float64, error) {
	value, ok := a[name]
	if !ok || value == nil {
		return 0, fmt.Errorf("parameter %s is not set", name)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: '%s'", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("parameter %s must be a number, got %T", name, value)
	}
}

// Int returns the argument as an int, truncating floats. Floats beyond the
// int range saturate at math.MaxInt or math.MinInt.
func (a Args) Int(name string) (int, error) {
	value, ok := a[name]
	if !ok || value == nil {
		return 0, fmt.Errorf("parameter %s is not set", name)
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid literal for int: '%s'", v)
		}
		return n, nil
	}
	f, err := a.Float(name)
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(f):
		return 0, fmt.Errorf("parameter %s is not a number", name)
	case f >= math.MaxInt:
		return math.MaxInt, nil
	case f <= math.MinInt:
		return math.MinInt, nil
	}
	return int(f), nil
}

// Bool returns the argument as a bool, parsing strings when needed.
func (a Args) Bool(name string) (bool, error) {
	value, ok := a[name]
	if !ok || value == nil {
		return false, fmt.Errorf("parameter %s is not set", name)
	}
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("parameter %s must be a boolean, got %T", name, value)
	}
}
