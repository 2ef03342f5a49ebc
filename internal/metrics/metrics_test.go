package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search/"+id, http.NoBody))
		require.Equal(t, http.StatusTeapot, rr.Code)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/search/{id}", "418")), 0)
	assert.Positive(t, testutil.CollectAndCount(httpRequestDuration))
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")), 1.0)
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchRequestsTotal.WithLabelValues("hybrid", "ok").Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.True(t, strings.Contains(rr.Body.String(), "luppa_search_requests_total"))
}
