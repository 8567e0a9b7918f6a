package middleware

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vroute/pkg/navigation"
)

type recordingProvider struct {
	embedded.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

type recordingTracer struct {
	embedded.Tracer

	mu    sync.Mutex
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span

	name   string
	kind   trace.SpanKind
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}
func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }
func (s *recordingSpan) IsRecording() bool         { return !s.ended }

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func TestOpenTelemetryTracesNavigation(t *testing.T) {
	tp := newRecordingProvider()
	ctrl := newTestController(t, OpenTelemetry(WithTracerProvider(tp), WithIncludeQuery(true)))

	nav, err := ctrl.NavigateTo(context.Background(), "/?draft=1", nil)
	require.NoError(t, err)

	require.Len(t, tp.tracer.spans, 1)
	span := tp.tracer.spans[0]
	assert.Equal(t, "vroute.navigate", span.name)
	assert.Equal(t, trace.SpanKindInternal, span.kind)
	assert.True(t, span.ended)
	assert.Equal(t, codes.Ok, span.status)

	assert.Equal(t, "/?draft=1", span.attrs["vroute.target"].AsString())
	assert.Equal(t, "user", span.attrs["vroute.trigger"].AsString())
	assert.Equal(t, int64(nav.Record.ID), span.attrs["vroute.nav_id"].AsInt64())
	assert.Equal(t, "completed", span.attrs["vroute.status"].AsString())
	assert.Equal(t, "/write", span.attrs["vroute.route"].AsString())
	assert.Equal(t, "/write", span.attrs["vroute.path"].AsString())
	assert.Equal(t, "draft=1", span.attrs["vroute.query"].AsString())
	assert.Equal(t, "replace", span.attrs["vroute.history_action"].AsString())
	assert.Equal(t, int64(1), span.attrs["vroute.redirects"].AsInt64())
	assert.Equal(t, "WriteJournaling", span.attrs["vroute.view"].AsString())
}

func TestOpenTelemetryRecordsErrors(t *testing.T) {
	tp := newRecordingProvider()
	ctrl := newTestController(t, OpenTelemetry(WithTracerProvider(tp)))

	_, err := ctrl.NavigateTo(context.Background(), "/a?secret=1", nil)
	require.Error(t, err)

	require.Len(t, tp.tracer.spans, 1)
	span := tp.tracer.spans[0]
	assert.Equal(t, codes.Error, span.status)
	require.Len(t, span.errs, 1)
	assert.ErrorIs(t, span.errs[0], navigation.ErrRedirectLoop)
	_, hasQuery := span.attrs["vroute.query"]
	assert.False(t, hasQuery, "queries are not recorded by default")
}

func TestOpenTelemetryGuardsSeeSpan(t *testing.T) {
	tp := newRecordingProvider()
	ctrl := newTestController(t, OpenTelemetry(WithTracerProvider(tp)))

	var inGuard trace.Span
	ctrl.Use(func(ctx context.Context, _ *navigation.Transition) navigation.Decision {
		inGuard = trace.SpanFromContext(ctx)
		return navigation.Approve()
	})

	_, err := ctrl.NavigateTo(context.Background(), "/daily", nil)
	require.NoError(t, err)
	require.Len(t, tp.tracer.spans, 1)
	assert.Same(t, tp.tracer.spans[0], inGuard)
}

func TestOpenTelemetryFilterAndExtractor(t *testing.T) {
	tp := newRecordingProvider()
	ctrl := newTestController(t, OpenTelemetry(
		WithTracerProvider(tp),
		WithNavigationFilter(func(req *navigation.Request) bool { return req.Target != "/daily" }),
		WithAttributeExtractor(func(req *navigation.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("app.section", "journal")}
		}),
	))

	_, err := ctrl.NavigateTo(context.Background(), "/daily", nil)
	require.NoError(t, err)
	assert.Empty(t, tp.tracer.spans)

	_, err = ctrl.NavigateTo(context.Background(), "/write", nil)
	require.NoError(t, err)
	require.Len(t, tp.tracer.spans, 1)
	assert.Equal(t, "journal", tp.tracer.spans[0].attrs["app.section"].AsString())
}

func TestOpenTelemetryPopSpanName(t *testing.T) {
	assert.Equal(t, "vroute.pop", formatSpanName(&navigation.Request{Trigger: navigation.TriggerPop}))
	assert.Equal(t, "vroute.navigate", formatSpanName(&navigation.Request{Trigger: navigation.TriggerInitial}))
}
