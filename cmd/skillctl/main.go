package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
)

var version = "dev"

type globalFlags struct {
	ConfigArgs []string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(NewInvalidArgumentError("flags", err.Error()), global.JSON)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	switch args[0] {
	case "help":
		printUsage()
		return
	case "version":
		fmt.Println(version)
		return
	}

	a, err := newApp(ctx, global.ConfigArgs)
	if err != nil {
		fatal(err, global.JSON)
	}
	defer a.Close(context.Background())

	switch cmd := args[0]; cmd {
	case "list":
		err = runList(a, global, args[1:])
	case "describe":
		err = runDescribe(a, global, args[1:])
	case "search":
		err = runSearch(a, global, args[1:])
	case "find":
		err = runFind(a, global, args[1:])
	case "run":
		err = runRun(ctx, a, global, args[1:])
	case "batch":
		err = runBatch(ctx, a, global, args[1:])
	case "audit":
		err = runAudit(ctx, a, global, args[1:])
	case "serve":
		err = runServe(ctx, a, global, args[1:])
	case "demo":
		err = runDemo(ctx, a)
	default:
		err = NewInvalidArgumentError("command", fmt.Sprintf("unknown command %q", cmd))
	}
	if err != nil {
		a.Close(context.Background())
		fatal(err, global.JSON)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config", arg == "--set", arg == "--profile", arg == "--env":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for %s", arg)
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--config="),
			strings.HasPrefix(arg, "--set="),
			strings.HasPrefix(arg, "--profile="),
			strings.HasPrefix(arg, "--env="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func printJSON(value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.Join(strings.Fields(value), " ")
}

func truncateMessage(value string, limit int) string {
	value = normalizeCell(value)
	if limit <= 0 || len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}

func printUsage() {
	fmt.Println(`skillctl

Usage:
  skillctl [global flags] <command> [args]

Global flags:
  --config <path>      Path to config.yaml
  --profile <name>     Load config.<name>.yaml on top of the base config
  --set key=value      Override config (repeatable)
  --json               JSON output

Commands:
  list
  describe <skill>
  search <query>
  find --category <name> | --tag <tag>
  run <skill> [--arg key=value ...] [--args-json <object>] [--no-validate]
  batch <file.yaml|file.json> [--no-validate]
  audit list [--skill <name>] [--failed] [--limit N]
  serve mcp [--watch]
  demo
  version`)
}

func fatal(err error, asJSON bool) {
	if cliErr, ok := err.(*CLIError); ok {
		cliErr.PrintError(asJSON)
	} else {
		PrintSimpleError(err, asJSON)
	}
	os.Exit(1)
}
