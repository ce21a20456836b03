// Package orderlog defines the order lifecycle audit log.
//
// Every significant order transition (creation, cancellation) appends one
// immutable entry. The log serves observability: a row carries the OTel
// trace_id of the request that caused the transition, so you can jump from
// business data straight to the distributed trace. It is not the order
// store — the canonical order table stays in memory.
package orderlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Event names the lifecycle transition an entry records.
type Event string

const (
	EventCreated   Event = "CREATED"
	EventCancelled Event = "CANCELLED"
)

// Entry is a single audit row: a point-in-time snapshot of an order
// transition.
type Entry struct {
	// OrderID joins the row with business data.
	OrderID string

	// Event is the transition being recorded.
	Event Event

	// Status is the order status after the transition.
	Status string

	// Reason carries the cancellation reason, empty otherwise.
	Reason string

	// TraceID is the W3C trace ID (32 hex chars) of the span active when
	// the entry was written. Empty when no span is active (unit tests).
	TraceID string

	// SpanID pinpoints the exact span within the trace (16 hex chars).
	SpanID string

	// OccurredAt is the wall-clock time of the transition.
	OccurredAt time.Time
}

// Repository is the port for persisting audit entries. The service depends
// on this abstraction, not on SQLite directly, and treats a nil repository
// as "auditing disabled".
type Repository interface {
	// Save appends a new entry. The log is append-only, never an upsert.
	Save(ctx context.Context, entry *Entry) error
}

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace_id and span_id as hex strings. Both come back empty when the
// context carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an audit entry with the trace info extracted from ctx.
func NewEntry(ctx context.Context, orderID string, event Event, status, reason string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		OrderID:    orderID,
		Event:      event,
		Status:     status,
		Reason:     reason,
		TraceID:    ti.TraceID,
		SpanID:     ti.SpanID,
		OccurredAt: time.Now().UTC(),
	}
}
