package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	kerrors "github.com/jllopis/skillkit/pkg/errors"
	"github.com/jllopis/skillkit/pkg/skills"
)

func newSkill(t *testing.T, name, description, category string, tags ...string) skills.Skill {
	t.Helper()
	s, err := skills.New(skills.Definition{
		Name:        name,
		Description: description,
		Category:    category,
		Tags:        tags,
	}, func(context.Context, skills.Args) (any, error) { return name, nil })
	if err != nil {
		t.Fatalf("new skill: %v", err)
	}
	return s
}

func populated(t *testing.T) *Registry {
	t.Helper()
	r := New()
	for _, s := range []skills.Skill{
		newSkill(t, "calculator", "Performs basic mathematical operations", "math", "math", "arithmetic"),
		newSkill(t, "text_processor", "Processes text with operations like uppercase", "text", "text", "string"),
		newSkill(t, "web_search", "Simulates web search functionality", "search", "web", "search"),
		newSkill(t, "word_count", "Counts words in TEXT", "text", "text"),
	} {
		if err := r.Register(s); err != nil {
			t.Fatalf("register %s: %v", s.Name(), err)
		}
	}
	return r
}

func names(list []skills.Skill) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Name())
	}
	return out
}

func TestRegisterGetUnregisterRoundTrip(t *testing.T) {
	r := New()
	s := newSkill(t, "echo", "Echoes", "")
	if err := r.Register(s); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := r.Get("echo")
	if !ok || got != s {
		t.Fatalf("expected registered skill back")
	}
	if err := r.Unregister("echo"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, ok := r.Get("echo"); ok {
		t.Fatalf("expected skill to be gone")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	r := New()
	first := newSkill(t, "echo", "first", "")
	second := newSkill(t, "echo", "second", "")
	if err := r.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register(second)
	if !kerrors.Is(err, kerrors.CodeAlreadyExists) {
		t.Fatalf("expected already exists error, got %v", err)
	}
	got, _ := r.Get("echo")
	if got != first {
		t.Fatalf("expected first skill to remain registered")
	}
	if r.Len() != 1 {
		t.Fatalf("expected exactly one skill, got %d", r.Len())
	}
}

func TestUnregisterMissing(t *testing.T) {
	err := New().Unregister("ghost")
	if !kerrors.Is(err, kerrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRegisterFactory(t *testing.T) {
	r := New()
	if err := r.RegisterFactory(func() (skills.Skill, error) {
		return newSkill(t, "made", "Built by factory", ""), nil
	}); err != nil {
		t.Fatalf("register factory: %v", err)
	}
	if _, ok := r.Get("made"); !ok {
		t.Fatalf("expected factory skill registered")
	}

	err := r.RegisterFactory(func() (skills.Skill, error) {
		return newSkill(t, "made", "Again", ""), nil
	})
	if !kerrors.Is(err, kerrors.CodeAlreadyExists) {
		t.Fatalf("expected duplicate error from factory, got %v", err)
	}

	err = r.RegisterFactory(func() (skills.Skill, error) {
		return skills.New(skills.Definition{Name: "broken"}, nil)
	})
	if !errors.Is(err, skills.ErrEmptyDescription) {
		t.Fatalf("expected construction error to surface, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("failed construction must not register, len=%d", r.Len())
	}
}

func TestNamesPreserveInsertionOrder(t *testing.T) {
	r := populated(t)
	want := []string{"calculator", "text_processor", "web_search", "word_count"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if err := r.Unregister("text_processor"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if err := r.Register(newSkill(t, "text_processor", "again", "text")); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	want = []string{"calculator", "web_search", "word_count", "text_processor"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFilters(t *testing.T) {
	r := populated(t)
	tests := []struct {
		name string
		got  []skills.Skill
		want []string
	}{
		{name: "category", got: r.FindByCategory("text"), want: []string{"text_processor", "word_count"}},
		{name: "category exact", got: r.FindByCategory("Text"), want: []string{}},
		{name: "tag", got: r.FindByTag("search"), want: []string{"web_search"}},
		{name: "tag exact", got: r.FindByTag("arith"), want: []string{}},
		{name: "search name", got: r.Search("text"), want: []string{"text_processor", "word_count"}},
		{name: "search case insensitive", got: r.Search("WEB"), want: []string{"web_search"}},
		{name: "search description", got: r.Search("mathematical"), want: []string{"calculator"}},
		{name: "search miss", got: r.Search("nothing"), want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(tt.got); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAllMetadataAndClear(t *testing.T) {
	r := populated(t)
	meta := r.AllMetadata()
	if len(meta) != 4 || meta[0].Name != "calculator" || meta[3].Name != "word_count" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta[0].Version != "1.0.0" || meta[0].Category != "math" {
		t.Fatalf("unexpected calculator metadata: %+v", meta[0])
	}

	r.Clear()
	if r.Len() != 0 || len(r.Names()) != 0 || len(r.AllMetadata()) != 0 {
		t.Fatalf("expected empty registry after clear")
	}
	r.Clear()
}

func TestRegisterNil(t *testing.T) {
	var typedNil *skills.FuncSkill
	tests := []struct {
		name  string
		skill skills.Skill
	}{
		{"untyped", nil},
		{"typed", typedNil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New()
			if err := r.Register(tc.skill); !kerrors.Is(err, kerrors.CodeInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if r.Len() != 0 {
				t.Fatalf("expected nothing registered, got %v", r.Names())
			}
		})
	}

	factory := func() (skills.Skill, error) { return typedNil, nil }
	if err := New().RegisterFactory(factory); !kerrors.Is(err, kerrors.CodeInvalidInput) {
		t.Fatalf("expected invalid input from factory, got %v", err)
	}
}
