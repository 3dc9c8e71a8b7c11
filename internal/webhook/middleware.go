package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

type rawBodyKey struct{}

// RawBody returns the verified request bytes stored by Middleware.
func RawBody(ctx context.Context) ([]byte, bool) {
	b, ok := ctx.Value(rawBodyKey{}).([]byte)
	return b, ok
}

type decisionKey struct{}

// DecisionFromContext returns the decision Middleware made for the request.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionKey{}).(Decision)
	return d, ok
}

// Middleware gates next behind Authenticate.
//
// The body is read once (at most maxBodySize bytes), authenticated, and then
// replayed to next unchanged. Rejected requests get 401 and never reach next.
func (a *Authenticator) Middleware(maxBodySize int64, logger *slog.Logger) func(http.Handler) http.Handler {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
			if err != nil {
				writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to read request body"})
				return
			}
			if int64(len(body)) > maxBodySize {
				writeError(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "payload too large"})
				return
			}

			decision := a.Authenticate(r.Header, body)
			if !decision.Accepted {
				// Signatures and payloads stay out of the log.
				logger.Warn("webhook authentication failed",
					"path", r.URL.Path,
					"reason", decision.Reason,
					"header", decision.Header,
				)
				writeError(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Reason: decision.Reason})
				return
			}
			if decision.Unsigned {
				logger.Warn("accepted unsigned request (require_signature disabled)", "path", r.URL.Path)
			} else {
				logger.Debug("webhook signature verified", "path", r.URL.Path, "algorithm", decision.Algorithm)
			}

			ctx := context.WithValue(r.Context(), rawBodyKey{}, body)
			ctx = context.WithValue(ctx, decisionKey{}, decision)
			r = r.WithContext(ctx)
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
