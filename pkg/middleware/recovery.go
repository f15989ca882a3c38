package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xmenbro/AutoRepairCenter/pkg/httputil"
	"github.com/xmenbro/AutoRepairCenter/pkg/logger"
)

var panicsRecovered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_panics_recovered_total",
		Help: "Handler panics turned into 500 responses",
	},
	[]string{"method", "path"},
)

// Recovery turns a handler panic into a 500 in the {"status":"error"} shape.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				panicsRecovered.WithLabelValues(r.Method, r.URL.Path).Inc()
				logger.WithContext(r.Context(), l).ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
					Status:    "error",
					Message:   "an internal error occurred",
					Code:      "INTERNAL_ERROR",
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
