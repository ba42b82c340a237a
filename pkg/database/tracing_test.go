package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		tp.Shutdown(context.Background()) //nolint:errcheck
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func TestTraceQuery_RecordsSpanWithAttributes(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx := context.Background()
	_, end := TraceQuery(ctx, "GetProductBySlug", "SELECT * FROM products WHERE slug = $1")
	end(nil)

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}

	span := spans[0]
	if span.Name != "db.GetProductBySlug" {
		t.Errorf("span name = %q, want %q", span.Name, "db.GetProductBySlug")
	}

	attrs := make(map[string]string)
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}

	if attrs["db.system"] != "postgresql" {
		t.Errorf("db.system = %q, want postgresql", attrs["db.system"])
	}
	if attrs["db.operation"] != "GetProductBySlug" {
		t.Errorf("db.operation = %q", attrs["db.operation"])
	}
	if attrs["db.statement"] != "SELECT * FROM products WHERE slug = $1" {
		t.Errorf("db.statement = %q", attrs["db.statement"])
	}

	// A clean query leaves the span status unset.
	if span.Status.Code != 0 {
		t.Errorf("span status = %d, want 0 (Unset)", span.Status.Code)
	}
}

func TestTraceQuery_ErrorSetsStatus(t *testing.T) {
	exporter := setupTestTracer(t)

	_, end := TraceQuery(context.Background(), "MarkOrderPaid", "UPDATE orders SET is_paid = TRUE WHERE id = $1")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}

	span := spans[0]
	if span.Status.Code != 1 { // codes.Error
		t.Errorf("span status = %d, want 1 (Error)", span.Status.Code)
	}
	if len(span.Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestTraceQuery_ChildOfParentSpan(t *testing.T) {
	setupTestTracer(t)

	tracer := otel.Tracer("test")
	ctx, parentSpan := tracer.Start(context.Background(), "parent")

	ctx, end := TraceQuery(ctx, "ListOrders", "SELECT * FROM orders")
	end(nil)
	parentSpan.End()

	if ctx == nil {
		t.Error("returned context should not be nil")
	}
}

func TestSlowQueryLogging_LogsSlowQuery(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	// 1ns threshold makes every query slow.
	SetSlowQueryLogging(1*time.Nanosecond, logger)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "ListProducts", "SELECT * FROM products")
	end(nil)

	out := buf.String()
	if !strings.Contains(out, "slow query detected") {
		t.Errorf("expected slow query log, got: %s", out)
	}
	if !strings.Contains(out, "ListProducts") {
		t.Errorf("expected operation name in log, got: %s", out)
	}
	if !strings.Contains(out, "SELECT * FROM products") {
		t.Errorf("expected SQL statement in log, got: %s", out)
	}
}

func TestSlowQueryLogging_FastQuerySilent(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	SetSlowQueryLogging(1*time.Hour, logger)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "FastSelect", "SELECT 1")
	end(nil)

	if strings.Contains(buf.String(), "slow query detected") {
		t.Error("did not expect slow query log for fast query")
	}
}

func TestSlowQueryLogging_DisabledDoesNotPanic(t *testing.T) {
	setupTestTracer(t)

	SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "AnyOp", "SELECT 1")
	end(nil)
}

func TestSlowQueryLogging_IncludesError(t *testing.T) {
	setupTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	SetSlowQueryLogging(1*time.Nanosecond, logger)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "AddReview", "INSERT INTO reviews VALUES ($1)")
	end(errors.New("unique constraint violation"))

	out := buf.String()
	if !strings.Contains(out, "slow query detected") {
		t.Errorf("expected slow query log, got: %s", out)
	}
	if !strings.Contains(out, "unique constraint violation") {
		t.Errorf("expected error in slow query log, got: %s", out)
	}
}

func TestSetSlowQueryLogging_Concurrent(t *testing.T) {
	setupTestTracer(t)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()

	for i := 0; i < 100; i++ {
		getSlowQueryConfig()
	}

	<-done
}
