package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/router"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func TestPrometheusRecordsNavigations(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	ctrl := newTestController(t, Prometheus(WithRegistry(reg)))
	ctx := context.Background()

	_, err := ctrl.NavigateTo(ctx, "/", nil)
	require.NoError(t, err)
	_, err = ctrl.NavigateTo(ctx, "/daily", nil)
	require.NoError(t, err)
	_, err = ctrl.NavigateTo(ctx, "/nowhere", nil)
	require.NoError(t, err)
	_, err = ctrl.NavigateTo(ctx, "/a", nil)
	require.Error(t, err)

	m := globalMetrics
	assert.Equal(t, 2.0, testutil.ToFloat64(m.navigationsTotal.WithLabelValues("user", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigationsTotal.WithLabelValues("user", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigationsTotal.WithLabelValues("user", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigationErrors.WithLabelValues("R010")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redirectsTotal))

	// One series per route label: "/write", "/daily", "not_found", "none".
	assert.Equal(t, 4, testutil.CollectAndCount(m.navigationDuration))
}

func TestPrometheusUsesConfiguredNamespace(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	ctrl := newTestController(t, Prometheus(WithRegistry(reg), WithNamespace("journal"), WithSubsystem("router")))

	_, err := ctrl.NavigateTo(context.Background(), "/daily", nil)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "journal_router_navigations_total")
	assert.Contains(t, names, "journal_router_navigation_duration_seconds")
}

func TestPrometheusSharesMetrics(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))
	first := globalMetrics

	// A second call must not register the collectors again.
	require.NotPanics(t, func() { Prometheus(WithRegistry(reg)) })
	assert.Same(t, first, globalMetrics)
}

func TestSessionGauge(t *testing.T) {
	resetGlobalMetricsForTest()
	RecordSessionOpen() // no metrics yet: ignored

	Prometheus(WithRegistry(prometheus.NewRegistry()))
	RecordSessionOpen()
	RecordSessionOpen()
	RecordSessionClose()
	assert.Equal(t, 1.0, testutil.ToFloat64(globalMetrics.historySessions))
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{navigation.ErrRejected, "R011"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := errorCode(tt.err); got != tt.want {
			t.Errorf("errorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/write", routeLabel(navigation.Navigation{Match: &router.Match{Route: router.Definition{Pattern: "/write"}}}))
	assert.Equal(t, "not_found", routeLabel(navigation.Navigation{Status: navigation.StatusNotFound}))
	assert.Equal(t, "none", routeLabel(navigation.Navigation{Status: navigation.StatusAborted}))
}
