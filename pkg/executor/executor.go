// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor runs registered skills and converts every failure path
// into a failed outcome.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/skillkit/pkg/audit"
	"github.com/jllopis/skillkit/pkg/errors"
	"github.com/jllopis/skillkit/pkg/governance"
	"github.com/jllopis/skillkit/pkg/registry"
	"github.com/jllopis/skillkit/pkg/resilience"
	"github.com/jllopis/skillkit/pkg/skills"
	"github.com/jllopis/skillkit/pkg/telemetry"
)

// Executor looks skills up in a registry and runs them.
type Executor struct {
	registry   *registry.Registry
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *telemetry.ExecutionMetrics
	filter     atomic.Pointer[governance.SkillFilter]
	audit      audit.Store
	auditRetry resilience.RetryConfig
	timeout    time.Duration
	validate   bool
	typeCheck  bool
	newID      func() string
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for skill.execute.* events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithMetrics records execution counters and latency.
func WithMetrics(metrics *telemetry.ExecutionMetrics) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// WithFilter gates every call through a governance filter.
func WithFilter(filter *governance.SkillFilter) Option {
	return func(e *Executor) {
		e.filter.Store(filter)
	}
}

// WithAuditStore records one audit entry per execution.
func WithAuditStore(store audit.Store) Option {
	return func(e *Executor) {
		e.audit = store
	}
}

// WithAuditRetry sets the retry policy for audit writes.
func WithAuditRetry(cfg resilience.RetryConfig) Option {
	return func(e *Executor) {
		e.auditRetry = cfg
	}
}

// WithTimeout bounds each skill run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithTypeChecking rejects values that do not match their declared type.
func WithTypeChecking(enabled bool) Option {
	return func(e *Executor) {
		e.typeCheck = enabled
	}
}

// WithValidation sets the default for presence validation. Calls may still
// opt out with WithoutValidation.
func WithValidation(enabled bool) Option {
	return func(e *Executor) {
		e.validate = enabled
	}
}

// WithIDGenerator replaces the uuid execution id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Executor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New creates an executor bound to reg.
func New(reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		registry:   reg,
		logger:     slog.Default(),
		tracer:     otel.Tracer("skillkit/executor"),
		auditRetry: resilience.DefaultRetryConfig(),
		validate:   true,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetFilter swaps the governance filter. A nil filter allows everything.
func (e *Executor) SetFilter(filter *governance.SkillFilter) {
	e.filter.Store(filter)
}

// Registry returns the registry the executor resolves names against.
func (e *Executor) Registry() *registry.Registry {
	return e.registry
}

// CallOption adjusts a single Execute call.
type CallOption func(*callOptions)

type callOptions struct {
	skipValidation bool
}

// WithoutValidation skips presence and type validation for one call.
func WithoutValidation() CallOption {
	return func(o *callOptions) {
		o.skipValidation = true
	}
}

// Execute runs the named skill. It never panics and never returns nil.
func (e *Executor) Execute(ctx context.Context, name string, args skills.Args, opts ...CallOption) *skills.Outcome {
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}
	if args == nil {
		args = skills.Args{}
	}
	validate := e.validate && !call.skipValidation

	executionID := e.newID()
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "Executor.Execute", trace.WithAttributes(
		telemetry.SkillAttributes(name, "", "", executionID)...,
	))
	defer span.End()
	span.SetAttributes(
		attribute.Bool(telemetry.AttrExecutionValidate, validate),
		attribute.Int(telemetry.AttrExecutionArgCount, len(args)),
	)

	e.logger.InfoContext(ctx, "skill.execute.start",
		slog.String("skill", name),
		slog.String("execution_id", executionID),
		slog.Int("arg_count", len(args)),
		slog.Bool("validate", validate),
	)

	outcome, kind := e.execute(ctx, span, name, args, validate)
	e.finish(ctx, span, executionRecord{
		id:      executionID,
		skill:   name,
		args:    args,
		start:   start,
		outcome: outcome,
		kind:    kind,
	})
	return outcome
}

func (e *Executor) execute(ctx context.Context, span trace.Span, name string, args skills.Args, validate bool) (*skills.Outcome, string) {
	skill, ok := e.registry.Get(name)
	if !ok {
		return skills.Fail("skill '%s' not found in registry", name), telemetry.ErrorKindNotFound
	}

	meta, err := describe(skill)
	if err != nil {
		return skills.Fail("execution error: %v", err), telemetry.ErrorKindExecution
	}
	span.SetAttributes(
		attribute.String(telemetry.AttrSkillVersion, meta.Version),
		attribute.String(telemetry.AttrSkillCategory, meta.Category),
	)

	if filter := e.filter.Load(); filter != nil {
		decision := filter.Check(ctx, governance.Action{
			Type:     governance.ActionSkill,
			Name:     name,
			Category: meta.Category,
		})
		if !decision.IsAllowed() {
			return skills.Fail("skill '%s' denied: %s", name, denialReason(decision)), telemetry.ErrorKindDenied
		}
	}

	if validate {
		err := guardErr(func() error { return skill.Validate(args) })
		if err == nil && e.typeCheck {
			err = skills.CheckTypes(meta.ParameterSpecs(), args)
		}
		if err != nil {
			if _, ok := err.(*panicError); ok {
				return skills.Fail("execution error: %v", err), telemetry.ErrorKindExecution
			}
			return skills.Fail("parameter validation failed: %v", err), telemetry.ErrorKindValidation
		}
	}

	outcome, err := resilience.WithTimeout(ctx, e.timeout, func(ctx context.Context) (*skills.Outcome, error) {
		return run(ctx, name, skill, args)
	})
	if err != nil {
		if errors.Is(err, errors.CodeTimeout) {
			return skills.Fail("execution error: skill '%s' exceeded timeout of %s", name, e.timeout), telemetry.ErrorKindExecution
		}
		return skills.Fail("execution error: %v", err), telemetry.ErrorKindExecution
	}
	if !outcome.Success {
		return outcome, telemetry.ErrorKindSkill
	}
	return outcome, ""
}

// Call is one entry of a batch.
type Call struct {
	Name string      `json:"skill" yaml:"skill"`
	Args skills.Args `json:"args,omitempty" yaml:"args,omitempty"`
}

// BatchExecute runs calls one at a time in input order. Every call is
// attempted regardless of earlier failures.
func (e *Executor) BatchExecute(ctx context.Context, calls []Call, opts ...CallOption) []*skills.Outcome {
	ctx, span := e.tracer.Start(ctx, "Executor.BatchExecute", trace.WithAttributes(
		attribute.Int(telemetry.AttrBatchSize, len(calls)),
	))
	defer span.End()
	e.metrics.RecordBatch(ctx, len(calls))

	outcomes := make([]*skills.Outcome, 0, len(calls))
	failed := 0
	for _, call := range calls {
		outcome := e.Execute(ctx, call.Name, call.Args, opts...)
		if !outcome.Success {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}
	span.SetAttributes(attribute.Int("skillkit.batch.failed", failed))

	e.logger.InfoContext(ctx, "skill.batch.complete",
		slog.Int("size", len(calls)),
		slog.Int("failed", failed),
	)
	return outcomes
}

type executionRecord struct {
	id      string
	skill   string
	args    skills.Args
	start   time.Time
	outcome *skills.Outcome
	kind    string
}

// finish emits logs, span data, metrics and the audit record. None of it
// touches the outcome.
func (e *Executor) finish(ctx context.Context, span trace.Span, rec executionRecord) {
	finished := time.Now()
	durationMs := float64(finished.Sub(rec.start).Microseconds()) / 1000
	outcome := rec.outcome

	span.SetAttributes(telemetry.OutcomeAttributes(outcome.Success, rec.kind, outcome.Error, durationMs, 0)...)
	e.metrics.RecordExecution(ctx, rec.skill, outcome.Success, rec.kind, durationMs)

	if outcome.Success {
		span.SetStatus(codes.Ok, "")
		e.logger.InfoContext(ctx, "skill.execute.complete",
			slog.String("skill", rec.skill),
			slog.String("execution_id", rec.id),
			slog.Float64("duration_ms", durationMs),
		)
	} else {
		span.SetStatus(codes.Error, outcome.Error)
		e.logger.ErrorContext(ctx, "skill.execute.failed",
			slog.String("skill", rec.skill),
			slog.String("execution_id", rec.id),
			slog.String("error_kind", rec.kind),
			slog.String("error", outcome.Error),
			slog.Float64("duration_ms", durationMs),
		)
	}

	if e.audit == nil {
		return
	}
	entry := audit.Record{
		ID:         rec.id,
		Skill:      rec.skill,
		Success:    outcome.Success,
		Error:      outcome.Error,
		Args:       rec.args.Clone(),
		Data:       outcome.Data,
		StartedAt:  rec.start,
		FinishedAt: finished,
	}
	auditCtx := context.WithoutCancel(ctx)
	retry := e.auditRetry
	if retry.OnRetry == nil {
		retry.OnRetry = func(attempt int, err error, delay time.Duration) {
			e.logger.DebugContext(ctx, "skill.audit.retry",
				slog.String("execution_id", rec.id),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := retry.Do(auditCtx, func() error {
		return e.audit.Record(auditCtx, entry)
	}); err != nil {
		e.logger.WarnContext(ctx, "skill.audit.failed",
			slog.String("skill", rec.skill),
			slog.String("execution_id", rec.id),
			slog.String("error", err.Error()),
		)
	}
}

func denialReason(decision governance.Decision) string {
	if decision.Reason != "" {
		return decision.Reason
	}
	if decision.IsPending() {
		return "approval required"
	}
	return "denied by policy"
}

// panicError carries a value recovered from a skill.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprint(p.value)
}

func guardErr(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return fn()
}

func describe(skill skills.Skill) (meta skills.Metadata, err error) {
	err = guardErr(func() error {
		meta = skill.Describe()
		return nil
	})
	return meta, err
}

// run is the fault boundary around Skill.Run.
func run(ctx context.Context, name string, skill skills.Skill, args skills.Args) (outcome *skills.Outcome, err error) {
	err = guardErr(func() error {
		outcome = skill.Run(ctx, args)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return nil, fmt.Errorf("skill '%s' returned no outcome", name)
	}
	return outcome, nil
}
