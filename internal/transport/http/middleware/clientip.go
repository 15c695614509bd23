package middleware

import (
	"net/http"

	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
)

// ClientIPMiddleware stores the caller's address in the request context so
// remote store calls made on its behalf carry it as the ip parameter.
func ClientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := httputils.ClientIP(r); ip != "" {
			r = r.WithContext(remote.WithClientIP(r.Context(), ip))
		}
		next.ServeHTTP(w, r)
	})
}
