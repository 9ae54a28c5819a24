package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"inkrelay-backend/pkg/api"
)

// timeoutWriter serializes writes between the handler goroutine and
// the timeout branch. After the deadline response went out, late
// handler writes are swallowed.
type timeoutWriter struct {
	w http.ResponseWriter

	mu       sync.Mutex
	wrote    bool
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wrote {
		return
	}
	tw.wrote = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.wrote = true
	return tw.w.Write(b)
}

// timeout marks the writer timed out and, if the handler has not
// produced a response yet, sends the deadline response itself.
func (tw *timeoutWriter) timeout() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
	if tw.wrote {
		return
	}
	tw.wrote = true
	tw.w.Header().Set("Content-Type", "application/json")
	tw.w.WriteHeader(http.StatusRequestTimeout)
	json.NewEncoder(tw.w).Encode(api.ErrorResponse{Error: "request timeout"})
}

// Timeout bounds request handling. Ingestion is a short pipeline; a
// request still running after the deadline is stuck on storage.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{w: w}
			done := make(chan struct{})

			go func() {
				defer func() {
					if err := recover(); err != nil {
						logger.Error("Panic in timed handler",
							zap.String("requestId", GetRequestIDFromRequest(r)),
							zap.Any("panic", err),
						)
					}
				}()

				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("Request timed out",
					zap.String("requestId", GetRequestIDFromRequest(r)),
					zap.String("path", r.URL.Path),
				)
				tw.timeout()
			}
		})
	}
}
