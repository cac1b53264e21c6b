package kafkax

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
}

func TestNewWriterDisabledWithoutBrokers(t *testing.T) {
	if w := NewWriter(WriterConfig{Topic: "x"}); w != nil {
		t.Fatal("expected nil writer")
	}
	w := NewWriter(WriterConfig{Brokers: "localhost:9092", Topic: "x"})
	if w == nil || w.Topic != "x" {
		t.Fatalf("unexpected writer: %+v", w)
	}
}

func TestNewMessageCarriesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	msg := NewMessage(ctx, "evt-1", "availability.slots.generated.v1", "user-1", []byte("{}"))
	if HeaderValue(msg.Headers, HeaderEventID) != "evt-1" {
		t.Fatalf("missing event id header: %+v", msg.Headers)
	}
	if HeaderValue(msg.Headers, "traceparent") == "" {
		t.Fatalf("missing traceparent header: %+v", msg.Headers)
	}

	extracted := trace.SpanContextFromContext(otel.GetTextMapPropagator().Extract(context.Background(), &headerCarrier{headers: msg.Headers}))
	if extracted.TraceID() != traceID {
		t.Fatalf("trace id not round-tripped: %s", extracted.TraceID())
	}
}
