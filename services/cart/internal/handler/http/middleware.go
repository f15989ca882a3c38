package http

import (
	"net/http"
	"strings"

	"github.com/xmenbro/AutoRepairCenter/pkg/httputil"
)

// ContentTypeJSON rejects POST bodies declared as anything other than
// application/json. A missing Content-Type is accepted.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
					Status:  "error",
					Message: "Content-Type must be application/json",
					Code:    "UNSUPPORTED_MEDIA_TYPE",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
