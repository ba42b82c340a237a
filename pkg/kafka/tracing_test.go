package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestKafkaHeaderCarrier_GetSetOverwrite(t *testing.T) {
	headers := []kafka.Header{{Key: "event_type", Value: []byte("order.paid")}}
	carrier := &KafkaHeaderCarrier{headers: &headers}

	if got := carrier.Get("event_type"); got != "order.paid" {
		t.Errorf("Get(event_type) = %q, want order.paid", got)
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}

	carrier.Set("traceparent", "abc")
	if got := carrier.Get("traceparent"); got != "abc" {
		t.Errorf("Get(traceparent) = %q, want abc", got)
	}

	// Setting an existing key must replace it, not append a duplicate.
	carrier.Set("event_type", "order.shipped")
	if got := carrier.Get("event_type"); got != "order.shipped" {
		t.Errorf("Get(event_type) after overwrite = %q", got)
	}
	if len(headers) != 2 {
		t.Errorf("header count = %d, want 2", len(headers))
	}
}

func TestKafkaHeaderCarrier_Keys(t *testing.T) {
	headers := []kafka.Header{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2")},
		{Key: "c", Value: []byte("3")},
	}
	carrier := &KafkaHeaderCarrier{headers: &headers}

	keys := carrier.Keys()
	if len(keys) != 3 {
		t.Fatalf("Keys() returned %d keys, want 3", len(keys))
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("Keys() missing %q", want)
		}
	}
}

func TestKafkaHeaderCarrier_EmptyHeaders(t *testing.T) {
	headers := []kafka.Header{}
	carrier := &KafkaHeaderCarrier{headers: &headers}

	if len(carrier.Keys()) != 0 {
		t.Errorf("Keys() on empty headers should be empty")
	}
	if got := carrier.Get("anything"); got != "" {
		t.Errorf("Get on empty headers = %q, want empty", got)
	}
}

func TestKafkaHeaderCarrier_InjectExtractRoundTrip(t *testing.T) {
	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := []kafka.Header{}
	propagator.Inject(ctx, &KafkaHeaderCarrier{headers: &headers})

	if len(headers) == 0 {
		t.Fatal("Inject wrote no headers")
	}

	extracted := propagator.Extract(context.Background(), &KafkaHeaderCarrier{headers: &headers})
	got := trace.SpanContextFromContext(extracted)
	if got.TraceID() != traceID {
		t.Errorf("extracted trace ID = %s, want %s", got.TraceID(), traceID)
	}
	if got.SpanID() != spanID {
		t.Errorf("extracted span ID = %s, want %s", got.SpanID(), spanID)
	}
}
