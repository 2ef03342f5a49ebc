package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/handrades/Luppa-PLC-sub003/internal/api"
	"github.com/handrades/Luppa-PLC-sub003/internal/logger"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=pump", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesUnsafeIDs(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, id := range []string{
		"req-1\" level=error msg=forged",
		"req 1",
		strings.Repeat("a", maxRequestIDLength+1),
	} {
		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		req.Header.Set("X-Request-ID", id)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		got := w.Header().Get("X-Request-ID")
		assert.NotEqual(t, id, got)
		assert.True(t, validRequestID(got), got)
	}
}

func TestRequestID_BindsContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestID(zap.New(core))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context(), nil).Info("searching")
	}))

	req := httptest.NewRequest(http.MethodGet, "/search?q=S7", nil)
	req.Header.Set("X-Request-ID", "req-7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	h := RequestID(log)(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/search?q=S7", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "http_request", entry.Message)
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/search", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(len("short and stout")), fields["bytes"])
	assert.Equal(t, "10.0.0.7", fields["remote_addr"])
}

func TestAccessLog_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var ctxLogger *zap.Logger
	h := AccessLog(zap.New(core))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxLogger = logger.FromContext(r.Context(), nil)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
	assert.Equal(t, "192.168.1.5", logs.All()[0].ContextMap()["remote_addr"])
	assert.NotContains(t, logs.All()[0].ContextMap(), "request_id")

	// without RequestID upstream the handler still gets the access logger
	require.NotNil(t, ctxLogger)
	ctxLogger.Info("from handler")
	assert.Equal(t, 2, logs.Len())
}

func TestMaxBodyBytes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	called := false
	h := MaxBodyBytes(8, zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search/refresh", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, called)

	var body api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodePayloadTooLarge, body.Code)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(10), logs.All()[0].ContextMap()["content_length"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search/refresh", strings.NewReader("{}")))
	assert.True(t, called)
}

func TestSentryMiddleware_NamesTransactionAfterRoute(t *testing.T) {
	var tx *sentry.Span
	r := chi.NewRouter()
	r.Use(SentryMiddleware)
	r.Route("/search", func(r chi.Router) {
		r.Get("/{kind}", func(w http.ResponseWriter, r *http.Request) {
			tx = sentry.TransactionFromContext(r.Context())
			w.WriteHeader(http.StatusBadRequest)
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search/suggestions?q=s7", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, tx)
	assert.Equal(t, "GET /search/{kind}", tx.Name)
	assert.Equal(t, sentry.SourceRoute, tx.Source)
	assert.Equal(t, sentry.SpanStatusInvalidArgument, tx.Status)
}

func TestSentryMiddleware_UnroutedKeepsPath(t *testing.T) {
	var tx *sentry.Span
	h := RequestID(nil)(SentryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tx = sentry.TransactionFromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
	})))

	req := httptest.NewRequest(http.MethodPost, "/search/refresh", nil)
	req.Header.Set("X-Request-ID", "req-9")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.NotNil(t, tx)
	assert.Equal(t, "POST /search/refresh", tx.Name)
	assert.Equal(t, sentry.SourceURL, tx.Source)
	assert.Equal(t, "req-9", tx.Tags["request_id"])
}

func TestHTTPStatusToSpanStatus(t *testing.T) {
	assert.Equal(t, sentry.SpanStatusOK, httpStatusToSpanStatus(http.StatusOK))
	assert.Equal(t, sentry.SpanStatusInvalidArgument, httpStatusToSpanStatus(http.StatusBadRequest))
	assert.Equal(t, sentry.SpanStatusResourceExhausted, httpStatusToSpanStatus(http.StatusRequestEntityTooLarge))
	assert.Equal(t, sentry.SpanStatusUnimplemented, httpStatusToSpanStatus(http.StatusMethodNotAllowed))
	assert.Equal(t, sentry.SpanStatusInternalError, httpStatusToSpanStatus(http.StatusInternalServerError))
}
