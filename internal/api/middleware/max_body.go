package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/api"
	"github.com/handrades/Luppa-PLC-sub003/internal/logger"
)

// CodePayloadTooLarge is returned when a declared body exceeds the limit.
const CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"

// MaxBodyBytes rejects declared bodies over limit with 413 and caps streamed
// ones. The search API reads nothing but query strings, so the limit only
// guards against abuse.
func MaxBodyBytes(limit int64, fallback *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				logger.FromContext(r.Context(), fallback).Warn("Request body rejected",
					zap.String("path", r.URL.Path),
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("limit", limit),
				)
				api.JSON(w, http.StatusRequestEntityTooLarge, api.ErrorResponse{
					Error: "request body too large",
					Code:  CodePayloadTooLarge,
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
