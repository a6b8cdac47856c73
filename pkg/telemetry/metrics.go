// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ExecutionMetrics counts skill executions and records their latency.
// A nil *ExecutionMetrics is valid and records nothing.
type ExecutionMetrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
	batches    metric.Int64Counter
}

// NewExecutionMetrics creates the instruments on the global meter provider.
func NewExecutionMetrics() (*ExecutionMetrics, error) {
	meter := otel.Meter("skillkit/executor")

	executions, err := meter.Int64Counter(
		"skillkit.executions.total",
		metric.WithDescription("Skill executions by skill, success and error kind"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"skillkit.execution.duration_ms",
		metric.WithDescription("Skill execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	batches, err := meter.Int64Counter(
		"skillkit.batches.total",
		metric.WithDescription("Batch executions"),
	)
	if err != nil {
		return nil, err
	}

	return &ExecutionMetrics{
		executions: executions,
		duration:   duration,
		batches:    batches,
	}, nil
}

// RecordExecution records one execution attempt.
func (m *ExecutionMetrics) RecordExecution(ctx context.Context, skill string, success bool, errorKind string, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("skill", skill),
		attribute.Bool("success", success),
		attribute.String("error_kind", errorKind),
	)
	m.executions.Add(ctx, 1, attrs)
	m.duration.Record(ctx, durationMs, metric.WithAttributes(attribute.String("skill", skill)))
}

// RecordBatch records one batch with its size.
func (m *ExecutionMetrics) RecordBatch(ctx context.Context, size int) {
	if m == nil {
		return
	}
	m.batches.Add(ctx, 1, metric.WithAttributes(attribute.Int("size", size)))
}
