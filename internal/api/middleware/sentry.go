package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
)

// SentryMiddleware runs every request inside a Sentry transaction. The
// transaction starts under the raw path so /health and /metrics can be
// dropped by the sampler, and is renamed to the chi route pattern once
// routing has happened. Without an initialized client it is a pass-through.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		options := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if trace := r.Header.Get(sentry.SentryTraceHeader); trace != "" {
			options = append(options, sentry.ContinueFromHeaders(trace, r.Header.Get(sentry.SentryBaggageHeader)))
		}

		tx := sentry.StartTransaction(r.Context(), r.Method+" "+r.URL.Path, options...)
		defer tx.Finish()

		r = r.WithContext(sentry.SetHubOnContext(tx.Context(), hub))

		// the query string is the search text; keep it as data, not a tag
		hub.Scope().SetContext("request", sentry.Context{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
		})
		if requestID := GetRequestID(r.Context()); requestID != "" {
			hub.Scope().SetTag("request_id", requestID)
			tx.SetTag("request_id", requestID)
		}

		defer func() {
			if err := recover(); err != nil {
				tx.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if name, ok := routeName(r); ok {
			tx.Name = name
			tx.Source = sentry.SourceRoute
		}

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		tx.Status = httpStatusToSpanStatus(status)
		tx.SetData("http.response.status_code", status)

		if status >= http.StatusInternalServerError {
			hub.CaptureMessage(tx.Name + ": " + http.StatusText(status))
		}
	})
}

// routeName is "METHOD /pattern" for a request chi has routed.
func routeName(r *http.Request) (string, bool) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "", false
	}
	pattern := rctx.RoutePattern()
	if pattern == "" {
		return "", false
	}
	return r.Method + " " + pattern, true
}

func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	switch {
	case status >= 200 && status < 300:
		return sentry.SpanStatusOK
	case status == http.StatusBadRequest:
		return sentry.SpanStatusInvalidArgument
	case status == http.StatusNotFound:
		return sentry.SpanStatusNotFound
	case status == http.StatusMethodNotAllowed:
		return sentry.SpanStatusUnimplemented
	case status == http.StatusRequestEntityTooLarge, status == http.StatusTooManyRequests:
		return sentry.SpanStatusResourceExhausted
	case status == 499:
		return sentry.SpanStatusCanceled
	case status >= 400 && status < 500:
		return sentry.SpanStatusInvalidArgument
	case status == http.StatusServiceUnavailable:
		return sentry.SpanStatusUnavailable
	case status == http.StatusGatewayTimeout:
		return sentry.SpanStatusDeadlineExceeded
	case status >= 500:
		return sentry.SpanStatusInternalError
	default:
		return sentry.SpanStatusUnknown
	}
}
