package skills

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func echoDefinition() Definition {
	return Definition{
		Name:        "echo",
		Description: "Echoes a value",
		Parameters: []ParameterSpec{
			Param("value", TypeString, "Value to echo"),
			Optional("suffix", TypeString, "Appended text", "!"),
		},
	}
}

func TestNewBaseDefaults(t *testing.T) {
	base, err := NewBase(Definition{Name: "echo", Description: "Echoes"})
	if err != nil {
		t.Fatalf("new base: %v", err)
	}
	meta := base.Describe()
	if meta.Version != "1.0.0" {
		t.Fatalf("expected default version, got %s", meta.Version)
	}
	if meta.Category != "general" {
		t.Fatalf("expected default category, got %s", meta.Category)
	}
	if meta.Tags == nil || len(meta.Tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %v", meta.Tags)
	}
}

func TestNewBaseRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want error
	}{
		{name: "empty name", def: Definition{Description: "d"}, want: ErrEmptyName},
		{name: "blank name", def: Definition{Name: "  ", Description: "d"}, want: ErrEmptyName},
		{name: "empty description", def: Definition{Name: "n"}, want: ErrEmptyDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBase(tt.def); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	_, err := NewBase(Definition{
		Name:        "dup",
		Description: "d",
		Parameters: []ParameterSpec{
			Param("a", TypeFloat, "first"),
			Param("a", TypeFloat, "again"),
		},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate parameter a") {
		t.Fatalf("expected duplicate parameter error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base, err := NewBase(echoDefinition())
	if err != nil {
		t.Fatalf("new base: %v", err)
	}
	tests := []struct {
		name    string
		args    Args
		wantErr string
	}{
		{name: "valid", args: Args{"value": "x"}},
		{name: "optional supplied", args: Args{"value": "x", "suffix": "?"}},
		{name: "missing required", args: Args{}, wantErr: "Missing required parameter: value"},
		{name: "nil args", args: nil, wantErr: "Missing required parameter: value"},
		{name: "unknown key", args: Args{"value": "x", "zzz": 1}, wantErr: "Unknown parameter: zzz"},
		{name: "missing wins over unknown", args: Args{"other": 1}, wantErr: "Missing required parameter: value"},
		{name: "unknown keys in lexical order", args: Args{"value": "x", "b": 1, "a": 2}, wantErr: "Unknown parameter: a"},
		{name: "values not type checked", args: Args{"value": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := base.Validate(tt.args)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateRequiredWithDefaultMayBeOmitted(t *testing.T) {
	base, err := NewBase(Definition{
		Name:        "limit",
		Description: "d",
		Parameters: []ParameterSpec{
			{Name: "n", Type: TypeInteger, Required: true, Default: 3},
		},
	})
	if err != nil {
		t.Fatalf("new base: %v", err)
	}
	if err := base.Validate(Args{}); err != nil {
		t.Fatalf("expected defaulted required parameter to be optional, got %v", err)
	}
}

func TestValidationErrorKind(t *testing.T) {
	base, _ := NewBase(echoDefinition())
	var verr *ValidationError
	if !errors.As(base.Validate(Args{"value": "x", "nope": true}), &verr) {
		t.Fatalf("expected ValidationError")
	}
	if verr.Kind != UnknownParameter || verr.Param != "nope" {
		t.Fatalf("unexpected validation error: %+v", verr)
	}
}

func TestDescribeIsSnapshot(t *testing.T) {
	def := echoDefinition()
	def.Tags = []string{"demo"}
	base, err := NewBase(def)
	if err != nil {
		t.Fatalf("new base: %v", err)
	}
	def.Tags[0] = "mutated"

	meta := base.Describe()
	meta.Tags[0] = "changed"
	meta.Parameters[0].Name = "changed"

	again := base.Describe()
	if again.Tags[0] != "demo" {
		t.Fatalf("tags leaked mutation: %v", again.Tags)
	}
	if again.Parameters[0].Name != "value" {
		t.Fatalf("parameters leaked mutation: %v", again.Parameters)
	}
	if len(again.Parameters) != 2 || again.Parameters[1].Default != "!" || again.Parameters[1].Required {
		t.Fatalf("unexpected parameter metadata: %+v", again.Parameters)
	}
}

func TestFuncSkillRun(t *testing.T) {
	skill := MustNew(echoDefinition(), func(_ context.Context, args Args) (any, error) {
		value, err := args.String("value")
		if err != nil {
			return nil, err
		}
		suffix, _ := args.String("suffix")
		return value + suffix, nil
	})

	out := skill.Run(context.Background(), Args{"value": "hi"})
	if !out.Success || out.Data != "hi!" {
		t.Fatalf("expected default suffix applied, got %+v", out)
	}
	if out.Metadata == nil {
		t.Fatalf("expected non-nil metadata")
	}
}

func TestFuncSkillFaultsStayInsideOutcome(t *testing.T) {
	failing := MustNew(Definition{Name: "fail", Description: "d"}, func(context.Context, Args) (any, error) {
		return nil, errors.New("boom")
	})
	if out := failing.Run(context.Background(), nil); out.Success || out.Error != "boom" {
		t.Fatalf("expected error outcome, got %+v", out)
	}

	passthrough := MustNew(Definition{Name: "raw", Description: "d"}, func(context.Context, Args) (any, error) {
		return Fail("custom %d", 7), nil
	})
	if out := passthrough.Run(context.Background(), nil); out.Error != "custom 7" {
		t.Fatalf("expected outcome passthrough, got %+v", out)
	}
}

func TestFuncSkillRecoversPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   RunFunc
		want string
	}{
		{"value", func(context.Context, Args) (any, error) { panic("kaboom") }, "kaboom"},
		{"error", func(context.Context, Args) (any, error) { panic(errors.New("disk on fire")) }, "disk on fire"},
		{"runtime", func(context.Context, Args) (any, error) {
			var m map[string]int
			m["x"] = 1
			return nil, nil
		}, "assignment to entry in nil map"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			skill := MustNew(Definition{Name: "panics", Description: "d"}, tc.fn)
			out := skill.Run(context.Background(), nil)
			if out == nil || out.Success || out.Error != tc.want {
				t.Fatalf("expected failed outcome %q, got %+v", tc.want, out)
			}
		})
	}
}

func TestNewRequiresRunFunc(t *testing.T) {
	if _, err := New(echoDefinition(), nil); err == nil {
		t.Fatalf("expected error for nil run func")
	}
}

func TestCheckTypes(t *testing.T) {
	params := []ParameterSpec{
		Param("s", TypeString, ""),
		Param("i", TypeInteger, ""),
		Param("f", TypeFloat, ""),
		Param("b", TypeBoolean, ""),
		Param("l", TypeList, ""),
		Param("m", TypeMapping, ""),
		Param("x", TypeAny, ""),
	}
	valid := Args{
		"s": "text",
		"i": float64(3),
		"f": 2,
		"b": true,
		"l": []any{1, 2},
		"m": map[string]any{"k": "v"},
		"x": struct{}{},
	}
	if err := CheckTypes(params, valid); err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}

	tests := []struct {
		name  string
		args  Args
		param string
	}{
		{name: "string", args: Args{"s": 1}, param: "s"},
		{name: "fractional integer", args: Args{"i": 1.5}, param: "i"},
		{name: "float from string", args: Args{"f": "1"}, param: "f"},
		{name: "boolean", args: Args{"b": "true"}, param: "b"},
		{name: "list", args: Args{"l": "a,b"}, param: "l"},
		{name: "mapping", args: Args{"m": []any{}}, param: "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if !errors.As(CheckTypes(params, tt.args), &verr) {
				t.Fatalf("expected type error")
			}
			if verr.Kind != InvalidType || verr.Param != tt.param {
				t.Fatalf("unexpected error: %+v", verr)
			}
		})
	}
}

func TestParseParameterType(t *testing.T) {
	tests := map[string]ParameterType{
		"string": TypeString,
		"dict":   TypeMapping,
		"FLOAT":  TypeFloat,
		"":       TypeAny,
		"array":  TypeList,
	}
	for in, want := range tests {
		got, err := ParseParameterType(in)
		if err != nil || got != want {
			t.Fatalf("ParseParameterType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseParameterType("tensor"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestArgsIntSaturates(t *testing.T) {
	tests := []struct {
		value any
		want  int
	}{
		{1e20, math.MaxInt},
		{-1e20, math.MinInt},
		{math.Inf(1), math.MaxInt},
		{math.Inf(-1), math.MinInt},
		{-7.9, -7},
	}
	for _, tc := range tests {
		n, err := Args{"n": tc.value}.Int("n")
		if err != nil || n != tc.want {
			t.Errorf("Int(%v) = %d, %v; want %d", tc.value, n, err, tc.want)
		}
	}
	if _, err := (Args{"n": math.NaN()}).Int("n"); err == nil {
		t.Fatalf("expected error for NaN")
	}
}

func TestArgsAccessors(t *testing.T) {
	args := Args{"a": "10", "b": 5, "c": 2.9, "d": "true", "e": []any{}}
	if f, err := args.Float("a"); err != nil || f != 10 {
		t.Fatalf("Float(a) = %v, %v", f, err)
	}
	if f, err := args.Float("b"); err != nil || f != 5 {
		t.Fatalf("Float(b) = %v, %v", f, err)
	}
	if n, err := args.Int("c"); err != nil || n != 2 {
		t.Fatalf("Int(c) = %v, %v", n, err)
	}
	if b, err := args.Bool("d"); err != nil || !b {
		t.Fatalf("Bool(d) = %v, %v", b, err)
	}
	if s, err := args.String("b"); err != nil || s != "5" {
		t.Fatalf("String(b) = %v, %v", s, err)
	}
	if _, err := args.String("e"); err == nil {
		t.Fatalf("expected error for list as string")
	}
	if _, err := args.Float("missing"); err == nil {
		t.Fatalf("expected error for missing parameter")
	}
	if _, err := (Args{"x": "abc"}).Float("x"); err == nil {
		t.Fatalf("expected conversion error")
	}
}
