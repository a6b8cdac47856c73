package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/skillkit/pkg/audit"
	"github.com/jllopis/skillkit/pkg/config"
	"github.com/jllopis/skillkit/pkg/executor"
	"github.com/jllopis/skillkit/pkg/governance"
	skillmcp "github.com/jllopis/skillkit/pkg/mcp"
	"github.com/jllopis/skillkit/pkg/skills"
)

func runList(a *app, flags globalFlags, args []string) error {
	if len(args) > 0 {
		return NewInvalidArgumentError("list", fmt.Sprintf("unexpected args: %v", args))
	}
	return printSkills(a.registry.All(), flags.JSON)
}

func runDescribe(a *app, flags globalFlags, args []string) error {
	if len(args) != 1 {
		return NewInvalidArgumentError("describe", "usage: skillctl describe <skill>")
	}
	skill, ok := a.registry.Get(args[0])
	if !ok {
		return NewNotFoundError("skill", args[0])
	}
	meta := skill.Describe()
	if flags.JSON {
		return printJSON(meta)
	}

	fmt.Printf("%s %s (%s)\n", meta.Name, meta.Version, meta.Category)
	fmt.Printf("  %s\n", meta.Description)
	if len(meta.Tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(meta.Tags, ", "))
	}
	if len(meta.Parameters) == 0 {
		return nil
	}
	fmt.Println()
	writer := newTabWriter()
	writeRow(writer, "PARAMETER", "TYPE", "REQUIRED", "DEFAULT", "DESCRIPTION")
	for _, p := range meta.Parameters {
		def := ""
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		writeRow(writer, p.Name, string(p.Type), strconv.FormatBool(p.Required), def, p.Description)
	}
	return writer.Flush()
}

func runSearch(a *app, flags globalFlags, args []string) error {
	if len(args) == 0 {
		return NewInvalidArgumentError("search", "usage: skillctl search <query>")
	}
	return printSkills(a.registry.Search(strings.Join(args, " ")), flags.JSON)
}

func runFind(a *app, flags globalFlags, args []string) error {
	cmd := flag.NewFlagSet("find", flag.ContinueOnError)
	category := cmd.String("category", "", "Category to match")
	tag := cmd.String("tag", "", "Tag to match")
	if err := cmd.Parse(args); err != nil {
		return NewInvalidArgumentError("find", err.Error())
	}
	switch {
	case *category != "" && *tag != "":
		return NewInvalidArgumentError("find", "use either --category or --tag")
	case *category != "":
		return printSkills(a.registry.FindByCategory(*category), flags.JSON)
	case *tag != "":
		return printSkills(a.registry.FindByTag(*tag), flags.JSON)
	default:
		return NewInvalidArgumentError("find", "usage: skillctl find --category <name> | --tag <tag>")
	}
}

func runRun(ctx context.Context, a *app, flags globalFlags, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return NewInvalidArgumentError("run", "usage: skillctl run <skill> [--arg key=value ...]")
	}
	name := args[0]

	cmd := flag.NewFlagSet("run", flag.ContinueOnError)
	var pairs multiFlag
	cmd.Var(&pairs, "arg", "Argument as key=value (repeatable)")
	argsJSON := cmd.String("args-json", "", "Arguments as a JSON object")
	noValidate := cmd.Bool("no-validate", false, "Skip parameter validation")
	if err := cmd.Parse(args[1:]); err != nil {
		return NewInvalidArgumentError("run", err.Error())
	}

	callArgs, err := buildArgs(*argsJSON, pairs)
	if err != nil {
		return NewInvalidArgumentError("arg", err.Error())
	}

	var opts []executor.CallOption
	if *noValidate {
		opts = append(opts, executor.WithoutValidation())
	}
	outcome := a.exec.Execute(ctx, name, callArgs, opts...)
	if err := printOutcome(os.Stdout, outcome, flags.JSON); err != nil {
		return err
	}
	if !outcome.Success {
		return NewExecutionError(name, outcome.Error)
	}
	return nil
}

func runBatch(ctx context.Context, a *app, flags globalFlags, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return NewInvalidArgumentError("batch", "usage: skillctl batch <file.yaml> [--no-validate]")
	}
	path := args[0]
	cmd := flag.NewFlagSet("batch", flag.ContinueOnError)
	noValidate := cmd.Bool("no-validate", false, "Skip parameter validation")
	if err := cmd.Parse(args[1:]); err != nil {
		return NewInvalidArgumentError("batch", err.Error())
	}

	calls, err := loadBatchFile(path)
	if err != nil {
		return NewInvalidArgumentError("batch", err.Error())
	}
	var opts []executor.CallOption
	if *noValidate {
		opts = append(opts, executor.WithoutValidation())
	}
	outcomes := a.exec.BatchExecute(ctx, calls, opts...)

	failed := 0
	for _, o := range outcomes {
		if !o.Success {
			failed++
		}
	}

	if flags.JSON {
		if err := printJSON(outcomes); err != nil {
			return err
		}
	} else {
		writer := newTabWriter()
		writeRow(writer, "#", "SKILL", "SUCCESS", "RESULT")
		for i, o := range outcomes {
			writeRow(writer, strconv.Itoa(i+1), calls[i].Name, strconv.FormatBool(o.Success), truncateMessage(outcomeSummary(o), 80))
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	if failed > 0 {
		return NewExecutionError("batch", fmt.Sprintf("%d of %d calls failed", failed, len(calls)))
	}
	return nil
}

func runAudit(ctx context.Context, a *app, flags globalFlags, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return NewInvalidArgumentError("audit", "usage: skillctl audit list [--skill <name>] [--failed] [--limit N]")
	}
	if a.audit == nil {
		return NewInvalidArgumentError("audit", "audit is disabled; set audit.enabled=true")
	}
	cmd := flag.NewFlagSet("audit list", flag.ContinueOnError)
	skill := cmd.String("skill", "", "Only records for this skill")
	failedOnly := cmd.Bool("failed", false, "Only failed executions")
	limit := cmd.Int("limit", 50, "Maximum records")
	if err := cmd.Parse(args[1:]); err != nil {
		return NewInvalidArgumentError("audit", err.Error())
	}

	filter := audit.Filter{Skill: *skill, Limit: *limit}
	if *failedOnly {
		success := false
		filter.Success = &success
	}
	records, err := a.audit.List(ctx, filter)
	if err != nil {
		return NewSetupError(err, "audit")
	}
	if flags.JSON {
		return printJSON(records)
	}
	writer := newTabWriter()
	writeRow(writer, "ID", "SKILL", "SUCCESS", "STARTED", "DURATION", "ERROR")
	for _, rec := range records {
		writeRow(writer,
			rec.ID,
			rec.Skill,
			strconv.FormatBool(rec.Success),
			rec.StartedAt.UTC().Format(time.RFC3339),
			rec.FinishedAt.Sub(rec.StartedAt).String(),
			truncateMessage(rec.Error, 60),
		)
	}
	return writer.Flush()
}

func runServe(ctx context.Context, a *app, _ globalFlags, args []string) error {
	if len(args) == 0 || args[0] != "mcp" {
		return NewInvalidArgumentError("serve", "usage: skillctl serve mcp [--watch]")
	}
	cmd := flag.NewFlagSet("serve mcp", flag.ContinueOnError)
	watch := cmd.Bool("watch", false, "Reload governance rules when the config file changes")
	if err := cmd.Parse(args[1:]); err != nil {
		return NewInvalidArgumentError("serve", err.Error())
	}

	srv, err := skillmcp.NewServer(a.cfg.MCP.Name, a.cfg.MCP.Version, a.exec,
		skillmcp.WithFilter(a.filter),
		skillmcp.WithLogger(a.logger),
	)
	if err != nil {
		return NewSetupError(err, "mcp")
	}

	if *watch {
		if a.configPath == "" {
			return NewInvalidArgumentError("serve", "--watch requires --config")
		}
		watcher, _, err := config.WatchConfig(ctx, a.configPath, a.profile, config.WithWatchLogger(a.logger))
		if err != nil {
			return NewConfigError(err, a.configPath)
		}
		defer watcher.Stop()
		watcher.OnChange(func(cfg *config.Config) {
			filter := governance.FromConfig(cfg.Governance)
			a.exec.SetFilter(filter)
			if err := srv.SetFilter(ctx, filter); err != nil {
				a.logger.ErrorContext(ctx, "mcp.tools.sync.failed", "error", err)
			}
		})
	}

	a.logger.InfoContext(ctx, "mcp.serve.stdio",
		"name", a.cfg.MCP.Name,
		"version", a.cfg.MCP.Version,
		"tools", len(srv.Tools()),
	)
	return srv.ServeStdio()
}

// buildArgs merges a JSON object with key=value pairs. Pairs win.
func buildArgs(rawJSON string, pairs []string) (skills.Args, error) {
	out := skills.Args{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &out); err != nil {
			return nil, fmt.Errorf("--args-json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[key] = parseArgValue(raw)
	}
	return out, nil
}

// parseArgValue reads a scalar with YAML rules so numbers and booleans keep
// their type. Anything that does not decode stays a string.
func parseArgValue(raw string) any {
	if raw == "" {
		return ""
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}
	return value
}

func loadBatchFile(path string) ([]executor.Call, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var calls []executor.Call
	if err := yaml.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, call := range calls {
		if strings.TrimSpace(call.Name) == "" {
			return nil, fmt.Errorf("%s: call %d has no skill name", path, i+1)
		}
	}
	return calls, nil
}

func printSkills(list []skills.Skill, asJSON bool) error {
	metas := make([]skills.Metadata, 0, len(list))
	for _, s := range list {
		metas = append(metas, s.Describe())
	}
	if asJSON {
		return printJSON(metas)
	}
	writer := newTabWriter()
	writeRow(writer, "NAME", "VERSION", "CATEGORY", "TAGS", "DESCRIPTION")
	for _, m := range metas {
		writeRow(writer, m.Name, m.Version, m.Category, strings.Join(m.Tags, ","), truncateMessage(m.Description, 60))
	}
	return writer.Flush()
}

func printOutcome(w io.Writer, outcome *skills.Outcome, asJSON bool) error {
	if asJSON {
		payload, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}
	if !outcome.Success {
		return nil
	}
	fmt.Fprintln(w, outcomeSummary(outcome))
	return nil
}

func outcomeSummary(outcome *skills.Outcome) string {
	if !outcome.Success {
		return outcome.Error
	}
	switch data := outcome.Data.(type) {
	case string:
		return data
	case nil:
		return ""
	default:
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Sprint(data)
		}
		return string(payload)
	}
}

type multiFlag []string

func (m *multiFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
