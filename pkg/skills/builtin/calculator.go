package builtin

import (
	"context"

	"github.com/jllopis/skillkit/pkg/skills"
)

// Calculator performs basic arithmetic on two operands.
func Calculator() skills.Skill {
	return skills.MustNew(skills.Definition{
		Name:        "calculator",
		Description: "Performs basic mathematical operations: add, subtract, multiply, divide",
		Category:    "math",
		Tags:        []string{"calculator", "math", "arithmetic"},
		Parameters: []skills.ParameterSpec{
			skills.Param("operation", skills.TypeString, "Operation to perform: add, subtract, multiply, divide"),
			skills.Param("a", skills.TypeFloat, "First operand"),
			skills.Param("b", skills.TypeFloat, "Second operand"),
		},
	}, calculate)
}

func calculate(_ context.Context, args skills.Args) (any, error) {
	operation, _ := args.String("operation")
	a, err := args.Float("a")
	if err != nil {
		return skills.Fail("Calculation error: %v", err), nil
	}
	b, err := args.Float("b")
	if err != nil {
		return skills.Fail("Calculation error: %v", err), nil
	}

	var result float64
	switch operation {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return skills.Fail("Division by zero is not allowed"), nil
		}
		result = a / b
	default:
		return skills.Fail("Unknown operation: %s", operation), nil
	}

	return skills.Succeed(result, map[string]any{
		"operation": operation,
		"a":         a,
		"b":         b,
	}), nil
}
