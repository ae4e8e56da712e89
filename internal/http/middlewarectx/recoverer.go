package middlewarectx

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/waitlist/internal/http/response"
)

// Recoverer перехватывает панику обработчика и отвечает 500 ServerError в JSON.
// http.ErrAbortHandler пробрасывается дальше, как это делает net/http.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
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

				log.Error("panic recovered",
					slog.String("op", "middlewarectx.Recoverer"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				response.Fail(w, r, http.StatusInternalServerError, response.KindServerError, response.MsgServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
