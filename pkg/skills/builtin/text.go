package builtin

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jllopis/skillkit/pkg/skills"
)

// TextProcessor transforms or measures a piece of text.
func TextProcessor() skills.Skill {
	return skills.MustNew(skills.Definition{
		Name:        "text_processor",
		Description: "Processes text with operations like uppercase, lowercase, reverse, count words",
		Category:    "text",
		Tags:        []string{"text", "string", "processing"},
		Parameters: []skills.ParameterSpec{
			skills.Param("text", skills.TypeString, "The text to process"),
			skills.Param("operation", skills.TypeString, "Operation: uppercase, lowercase, reverse, count_words, count_chars"),
		},
	}, processText)
}

func processText(_ context.Context, args skills.Args) (any, error) {
	text, err := args.String("text")
	if err != nil {
		return skills.Fail("Text processing error: %v", err), nil
	}
	operation, _ := args.String("operation")

	var result any
	switch operation {
	case "uppercase":
		result = strings.ToUpper(text)
	case "lowercase":
		result = strings.ToLower(text)
	case "reverse":
		result = reverse(text)
	case "count_words":
		result = len(strings.Fields(text))
	case "count_chars":
		result = utf8.RuneCountInString(text)
	default:
		return skills.Fail("Unknown operation: %s", operation), nil
	}

	return skills.Succeed(result, map[string]any{
		"operation":       operation,
		"original_length": utf8.RuneCountInString(text),
	}), nil
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
