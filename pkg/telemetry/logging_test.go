// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "json")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoContext(ctx, "skill.execute.start", slog.String("skill", "calculator"))
	span.End()

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("expected trace id, got %v", record["trace_id"])
	}
	if record["span_id"] != span.SpanContext().SpanID().String() {
		t.Fatalf("expected span id, got %v", record["span_id"])
	}
	if record["skill"] != "calculator" {
		t.Fatalf("expected skill attribute, got %v", record["skill"])
	}
}

func TestNewLoggerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")
	logger.Info("plain")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := record["trace_id"]; ok {
		t.Fatalf("unexpected trace id without span")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLogLevelOffsetsAndGarbage(t *testing.T) {
	if got := parseLogLevel("info+2"); got != slog.LevelInfo+2 {
		t.Errorf("parseLogLevel(info+2) = %v", got)
	}
	if got := parseLogLevel("loud"); got != slog.LevelInfo {
		t.Errorf("parseLogLevel(loud) = %v, want info", got)
	}
}

func TestNewLoggerKeepsCallerTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	logger.InfoContext(ctx, "explicit", slog.String(LogKeyTraceID, "custom"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record[LogKeyTraceID] != "custom" {
		t.Fatalf("caller trace_id overwritten: %v", record[LogKeyTraceID])
	}
	if record[LogKeySpanID] != span.SpanContext().SpanID().String() {
		t.Fatalf("expected span id, got %v", record[LogKeySpanID])
	}
}
