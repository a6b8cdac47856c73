package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jllopis/skillkit/pkg/audit"
	"github.com/jllopis/skillkit/pkg/config"
	"github.com/jllopis/skillkit/pkg/executor"
	"github.com/jllopis/skillkit/pkg/governance"
	"github.com/jllopis/skillkit/pkg/registry"
	"github.com/jllopis/skillkit/pkg/skills"
	"github.com/jllopis/skillkit/pkg/skills/builtin"
	"github.com/jllopis/skillkit/pkg/telemetry"
)

// app holds the wired components shared by every command.
type app struct {
	cfg        *config.Config
	configPath string
	profile    string
	logger     *slog.Logger
	registry   *registry.Registry
	exec       *executor.Executor
	filter     *governance.SkillFilter
	audit      audit.Store
	closers    []func(context.Context) error
}

func newApp(ctx context.Context, configArgs []string) (*app, error) {
	configPath, profile := configSource(configArgs)
	cfg, err := config.LoadWithCLI(configArgs)
	if err != nil {
		return nil, NewConfigError(err, configPath)
	}

	a := &app{
		cfg:        cfg,
		configPath: configPath,
		profile:    profile,
		logger:     telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format),
		registry:   registry.New(),
		filter:     governance.FromConfig(cfg.Governance),
	}

	shutdown, err := telemetry.InitWithConfig("skillctl", version, telemetry.Config{
		Exporter:           cfg.Telemetry.Exporter,
		OTLPEndpoint:       cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:       cfg.Telemetry.OTLPInsecure,
		OTLPTimeoutSeconds: cfg.Telemetry.OTLPTimeoutSeconds,
	})
	if err != nil {
		return nil, NewSetupError(err, "telemetry")
	}
	a.closers = append(a.closers, shutdown)

	metrics, err := telemetry.NewExecutionMetrics()
	if err != nil {
		a.Close(ctx)
		return nil, NewSetupError(err, "metrics")
	}

	if err := a.registerSkills(); err != nil {
		a.Close(ctx)
		return nil, NewSetupError(err, "skills")
	}

	store, err := openAuditStore(cfg.Audit)
	if err != nil {
		a.Close(ctx)
		return nil, NewSetupError(err, "audit")
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func(context.Context) error { return closer.Close() })
	}
	a.audit = store

	opts := []executor.Option{
		executor.WithLogger(a.logger),
		executor.WithMetrics(metrics),
		executor.WithFilter(a.filter),
		executor.WithValidation(cfg.Executor.Validate),
		executor.WithTypeChecking(cfg.Executor.TypeCheck),
		executor.WithTimeout(time.Duration(cfg.Executor.TimeoutSeconds) * time.Second),
	}
	if store != nil {
		opts = append(opts, executor.WithAuditStore(store))
	}
	a.exec = executor.New(a.registry, opts...)

	a.logger.DebugContext(ctx, "skillctl.ready",
		slog.Int("skills", a.registry.Len()),
		slog.Bool("audit", store != nil),
		slog.Bool("governance", a.filter != nil),
	)
	return a, nil
}

// Close releases stores and flushes telemetry. It is safe to call twice.
func (a *app) Close(ctx context.Context) {
	closers := a.closers
	a.closers = nil
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			a.logger.WarnContext(ctx, "skillctl.close.failed", slog.String("error", err.Error()))
		}
	}
}

func (a *app) registerSkills() error {
	if err := builtin.Register(a.registry); err != nil {
		return err
	}
	dir := strings.TrimSpace(a.cfg.Skills.ManifestDir)
	if dir == "" {
		return nil
	}
	manifests, err := skills.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("load manifests from %s: %w", dir, err)
	}
	for _, m := range manifests {
		skill, err := m.Skill()
		if err != nil {
			return err
		}
		if err := a.registry.Register(skill); err != nil {
			return fmt.Errorf("%s: %w", m.Path, err)
		}
		a.logger.Debug("skill.manifest.loaded", slog.String("skill", m.Name), slog.String("path", m.Path))
	}
	return nil
}

func openAuditStore(cfg config.AuditConfig) (audit.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		return audit.NewMemoryStore(), nil
	case "sqlite":
		return audit.OpenSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit driver %q", cfg.Driver)
	}
}

// configSource extracts the config path and profile from the global config args.
func configSource(args []string) (path, profile string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case (arg == "--profile" || arg == "--env") && i+1 < len(args):
			profile = args[i+1]
			i++
		case strings.HasPrefix(arg, "--profile="):
			profile = strings.TrimPrefix(arg, "--profile=")
		case strings.HasPrefix(arg, "--env="):
			profile = strings.TrimPrefix(arg, "--env=")
		}
	}
	return strings.TrimSpace(path), strings.TrimSpace(profile)
}
