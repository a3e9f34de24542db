package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/spool/internal/core/ports"
)

// LogBufferSize determines the size of the async renderer event channel.
const LogBufferSize = 4096

var (
	_ ports.Tracer = (*OTelTracer)(nil)
	_ ports.Span   = (*OTelSpan)(nil)
)

type planEvent struct {
	entries []string
}

type logEvent struct {
	spanID string
	data   []byte
}

// OTelTracer implements ports.Tracer using OpenTelemetry. With a renderer
// attached, span console output and build plans are forwarded to it.
type OTelTracer struct {
	tracer trace.Tracer
	events chan any
	done   chan struct{}

	mu       sync.RWMutex
	renderer ports.Renderer
}

// NewOTelTracer creates a new OTelTracer with the given instrumentation name.
func NewOTelTracer(name string) *OTelTracer {
	t := &OTelTracer{
		tracer: otel.Tracer(name),
		events: make(chan any, LogBufferSize),
		done:   make(chan struct{}),
	}
	go t.runLoop()
	return t
}

func (t *OTelTracer) runLoop() {
	defer close(t.done)
	for ev := range t.events {
		r := t.currentRenderer()
		if r == nil {
			continue
		}
		switch ev := ev.(type) {
		case planEvent:
			r.OnPlanEmit(ev.entries)
		case logEvent:
			r.OnTaskLog(ev.spanID, ev.data)
		}
	}
}

// Shutdown drains pending renderer events and stops the event loop.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	close(t.events)
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithRenderer sets the renderer that receives plans and console output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

func (t *OTelTracer) currentRenderer() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if cfg.Root {
		startOpts = append(startOpts, trace.WithNewRoot())
	}
	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	var batcher *LineBatcher
	if t.currentRenderer() != nil {
		spanID := span.SpanContext().SpanID().String()
		batcher = NewLineBatcher(0, 0, func(data []byte) {
			select {
			case t.events <- logEvent{spanID: spanID, data: data}:
			default:
				// Console output is dropped rather than blocking a build.
			}
		})
	}

	return ctx, &OTelSpan{span: span, batcher: batcher}
}

// EmitPlan records the planned entries on the current span and hands them to
// the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, entries []string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("entries", entries),
		))
	}

	if t.currentRenderer() != nil {
		t.events <- planEvent{entries: entries}
	}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *LineBatcher
}

// End completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records an error for the span and marks it failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case uint64:
		s.span.SetAttributes(attribute.Int64(key, int64(v))) //nolint:gosec // counters stay far below MaxInt64
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	case fmt.Stringer:
		s.span.SetAttributes(attribute.String(key, v.String()))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write records console output of the span. With a renderer attached it is
// batched by line; otherwise it becomes a span event.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
