// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Log keys stamped from the active span.
const (
	LogKeyTraceID = "trace_id"
	LogKeySpanID  = "span_id"
)

// ConfigureSlog installs a trace-aware logger as the slog default and
// returns it.
func ConfigureSlog(output io.Writer, level, format string) *slog.Logger {
	logger := NewLogger(output, level, format)
	slog.SetDefault(logger)
	return logger
}

// NewLogger builds a trace-aware logger without touching the global default.
// Format is "json" or "text"; anything else falls back to text.
func NewLogger(output io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	var base slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		base = slog.NewJSONHandler(output, opts)
	} else {
		base = slog.NewTextHandler(output, opts)
	}
	return slog.New(spanHandler{next: base})
}

// spanHandler adds trace_id and span_id from the record's context unless
// the caller already set them.
type spanHandler struct {
	next slog.Handler
}

func (h spanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h spanHandler) Handle(ctx context.Context, record slog.Record) error {
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			var traceSet, spanSet bool
			record.Attrs(func(a slog.Attr) bool {
				traceSet = traceSet || a.Key == LogKeyTraceID
				spanSet = spanSet || a.Key == LogKeySpanID
				return !(traceSet && spanSet)
			})
			if !traceSet {
				record.AddAttrs(slog.String(LogKeyTraceID, sc.TraceID().String()))
			}
			if !spanSet {
				record.AddAttrs(slog.String(LogKeySpanID, sc.SpanID().String()))
			}
		}
	}
	return h.next.Handle(ctx, record)
}

func (h spanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanHandler{next: h.next.WithAttrs(attrs)}
}

func (h spanHandler) WithGroup(name string) slog.Handler {
	return spanHandler{next: h.next.WithGroup(name)}
}

// parseLogLevel accepts slog level names ("debug", "WARN", "info+2") plus
// "warning". Unknown input means info.
func parseLogLevel(level string) slog.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var out slog.Level
	if err := out.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return out
}
