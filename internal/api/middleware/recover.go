package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/redact"
)

// Recoverer converts a panic in a handler into a 500 envelope. The panic value
// is returned to the client only when exposeDetails is set.
func Recoverer(exposeDetails bool) func(http.Handler) http.Handler {
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

				err := fmt.Errorf("panic: %v", rec)
				logger.FromContext(r.Context()).Error("recovered from panic",
					slog.String("error", redact.Error(err)),
					slog.String("stack", string(debug.Stack())))

				var details any
				if exposeDetails {
					details = redact.Error(err)
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Something went wrong", details, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
