// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry provides an in-memory directory of skills keyed by name.
package registry

import (
	"strings"
	"sync"

	"github.com/jllopis/skillkit/pkg/errors"
	"github.com/jllopis/skillkit/pkg/skills"
)

// Factory constructs a skill for RegisterFactory.
type Factory func() (skills.Skill, error)

// Registry maps skill names to skills. Iteration order is insertion order.
// It is safe for concurrent use: mutations are exclusive, reads are shared.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]skills.Skill
	order  []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{skills: make(map[string]skills.Skill)}
}

// Register adds a skill. A name that is already registered is rejected;
// the existing skill is kept.
func (r *Registry) Register(skill skills.Skill) error {
	if skill == nil {
		return errors.New(errors.CodeInvalidInput, "skill is nil", nil)
	}
	name, err := skillName(skill)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skills[name]; exists {
		return errors.Newf(errors.CodeAlreadyExists, "skill '%s' is already registered", name).
			WithContext("skill", name)
	}
	r.skills[name] = skill
	r.order = append(r.order, name)
	return nil
}

// skillName reads the name of a skill that may be a typed nil pointer.
func skillName(skill skills.Skill) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.CodeInvalidInput, "skill %T has no usable name: %v", skill, r)
		}
	}()
	return skill.Name(), nil
}

// RegisterFactory constructs a skill and registers it.
func (r *Registry) RegisterFactory(factory Factory) error {
	if factory == nil {
		return errors.New(errors.CodeInvalidInput, "skill factory is nil", nil)
	}
	skill, err := factory()
	if err != nil {
		return errors.New(errors.CodeInvalidInput, "construct skill", err)
	}
	return r.Register(skill)
}

// Unregister removes a skill by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.skills[name]; !exists {
		return errors.Newf(errors.CodeNotFound, "skill '%s' is not registered", name).
			WithContext("skill", name)
	}
	delete(r.skills, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get looks up a skill by name.
func (r *Registry) Get(name string) (skills.Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[name]
	return s, ok
}

// Names returns the registered names in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.order...)
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns every registered skill in insertion order.
func (r *Registry) All() []skills.Skill {
	return r.filter(func(skills.Skill) bool { return true })
}

// FindByCategory returns skills whose category equals category.
func (r *Registry) FindByCategory(category string) []skills.Skill {
	return r.filter(func(s skills.Skill) bool {
		return s.Describe().Category == category
	})
}

// FindByTag returns skills tagged with tag.
func (r *Registry) FindByTag(tag string) []skills.Skill {
	return r.filter(func(s skills.Skill) bool {
		for _, t := range s.Describe().Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// Search returns skills whose name or description contains query,
// ignoring case.
func (r *Registry) Search(query string) []skills.Skill {
	q := strings.ToLower(query)
	return r.filter(func(s skills.Skill) bool {
		meta := s.Describe()
		return strings.Contains(strings.ToLower(meta.Name), q) ||
			strings.Contains(strings.ToLower(meta.Description), q)
	})
}

// AllMetadata describes every registered skill in insertion order.
func (r *Registry) AllMetadata() []skills.Metadata {
	all := r.All()
	out := make([]skills.Metadata, 0, len(all))
	for _, s := range all {
		out = append(out, s.Describe())
	}
	return out
}

// Clear removes every skill.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills = make(map[string]skills.Skill)
	r.order = nil
}

func (r *Registry) filter(keep func(skills.Skill) bool) []skills.Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]skills.Skill, 0, len(r.order))
	for _, name := range r.order {
		if s := r.skills[name]; keep(s) {
			out = append(out, s)
		}
	}
	return out
}
