// Package builtin provides the stock skills shipped with skillkit.
package builtin

import (
	"github.com/jllopis/skillkit/pkg/registry"
	"github.com/jllopis/skillkit/pkg/skills"
)

// All returns fresh instances of every builtin skill.
func All() []skills.Skill {
	return []skills.Skill{
		Calculator(),
		TextProcessor(),
		WebSearch(),
	}
}

// Register adds every builtin skill to reg. It stops at the first error.
func Register(reg *registry.Registry) error {
	for _, s := range All() {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}
