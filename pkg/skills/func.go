// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"context"
	"errors"
)

// RunFunc is the body of a FuncSkill. A returned error becomes a failed
// Outcome. Returning an *Outcome as data passes it through untouched.
type RunFunc func(ctx context.Context, args Args) (any, error)

// FuncSkill adapts a RunFunc to the Skill contract.
type FuncSkill struct {
	*Base
	fn RunFunc
}

// New builds a FuncSkill, failing fast on an invalid definition.
func New(def Definition, fn RunFunc) (*FuncSkill, error) {
	base, err := NewBase(def)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.New("skill " + def.Name + ": run func is required")
	}
	return &FuncSkill{Base: base, fn: fn}, nil
}

// MustNew is New that panics on an invalid definition.
func MustNew(def Definition, fn RunFunc) *FuncSkill {
	s, err := New(def, fn)
	if err != nil {
		panic(err)
	}
	return s
}

// Run calls the function with defaults applied for absent optional parameters.
// A panic in the function becomes a failed outcome.
func (s *FuncSkill) Run(ctx context.Context, args Args) (out *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Fail("%v", r)
		}
	}()
	data, err := s.fn(ctx, s.WithDefaults(args))
	if err != nil {
		return Fail("%v", err)
	}
	if out, ok := data.(*Outcome); ok {
		return out
	}
	return Succeed(data, nil)
}
