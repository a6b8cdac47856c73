package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jllopis/skillkit/pkg/executor"
	"github.com/jllopis/skillkit/pkg/skills"
	"github.com/jllopis/skillkit/pkg/skills/builtin"
)

// runDemo walks through registration, execution, discovery and batching
// against the app's registry.
func runDemo(ctx context.Context, a *app) error {
	fmt.Println("1. Registered skills")
	fmt.Printf("   %d skills: %s\n", a.registry.Len(), strings.Join(a.registry.Names(), ", "))
	for _, meta := range a.registry.AllMetadata() {
		fmt.Printf("   - %s: %s\n", meta.Name, meta.Description)
		fmt.Printf("     category=%s tags=%s\n", meta.Category, strings.Join(meta.Tags, ","))
	}

	fmt.Println("2. calculator (10 + 5)")
	printDemoOutcome(a.exec.Execute(ctx, "calculator", skills.Args{"operation": "add", "a": 10, "b": 5}))

	fmt.Println("3. text_processor (uppercase)")
	printDemoOutcome(a.exec.Execute(ctx, "text_processor", skills.Args{
		"text":      "Hello, skill registry!",
		"operation": "uppercase",
	}))

	fmt.Println("4. web_search")
	outcome := a.exec.Execute(ctx, "web_search", skills.Args{"query": "artificial intelligence", "max_results": 3})
	if results, ok := outcome.Data.([]builtin.SearchResult); ok {
		fmt.Printf("   found %d results\n", len(results))
		for i, r := range results {
			fmt.Printf("   %d. %s\n", i+1, r.Title)
		}
	} else {
		printDemoOutcome(outcome)
	}

	fmt.Println("5. parameter validation (divide without b)")
	printDemoOutcome(a.exec.Execute(ctx, "calculator", skills.Args{"operation": "divide", "a": 10}))

	fmt.Println("6. search \"text\"")
	for _, s := range a.registry.Search("text") {
		fmt.Printf("   - %s\n", s.Name())
	}

	fmt.Println("7. category \"math\"")
	for _, s := range a.registry.FindByCategory("math") {
		fmt.Printf("   - %s\n", s.Name())
	}

	fmt.Println("8. batch")
	outcomes := a.exec.BatchExecute(ctx, []executor.Call{
		{Name: "calculator", Args: skills.Args{"operation": "multiply", "a": 7, "b": 8}},
		{Name: "text_processor", Args: skills.Args{"text": "batch", "operation": "uppercase"}},
	})
	for i, o := range outcomes {
		fmt.Printf("   %d. success=%t data=%s\n", i+1, o.Success, outcomeSummary(o))
	}
	return nil
}

func printDemoOutcome(outcome *skills.Outcome) {
	fmt.Printf("   success=%t\n", outcome.Success)
	if outcome.Success {
		fmt.Printf("   result=%s\n", outcomeSummary(outcome))
		return
	}
	fmt.Printf("   error=%s\n", outcome.Error)
}
