package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
)

func newRouter(t *testing.T, m *Metrics) *wayfinder.Router {
	t.Helper()
	r, err := wayfinder.New(wayfinder.Config{BaseURL: "http://abc.com:123", Series: []string{"xenial"}}, m.RouterOptions("")...)
	require.NoError(t, err)
	r.Register(dispatch.Entry{
		Key:    "store",
		Create: func(_ context.Context, _ domain.Tree, next dispatch.Next) { next() },
	})
	return r
}

func TestRouterMetrics(t *testing.T) {
	m := New()
	r := newRouter(t, m)
	ctx := context.Background()

	_, err := r.ChangeState(ctx, domain.Tree{"store": "haproxy", "profile": "ant"})
	require.NoError(t, err)
	_, err = r.ChangeState(ctx, domain.Tree{"store": nil})
	require.NoError(t, err)
	_, err = r.GenerateState(ctx, "http://abc.com:123/u", false)
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StateChanges))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchPasses.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerInvocations.WithLabelValues("store", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerInvocations.WithLabelValues("store", "cleanup")))
	// "profile" has no dispatcher in both passes.
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnmatchedKeys))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DispatchDuration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.StateChanges.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "wayfinder_state_changes_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
