package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
	"go.uber.org/zap"
)

const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware guards the owner routes (profile and link changes,
// stats, dashboard). With no keys configured the gateway runs open, which
// is how it is used locally.
func APIKeyMiddleware(allowedKeys []string) func(http.Handler) http.Handler {
	allowed := make([][]byte, 0, len(allowedKeys))
	for _, k := range allowedKeys {
		if k = strings.TrimSpace(k); k != "" {
			allowed = append(allowed, []byte(k))
		}
	}

	if len(allowed) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			switch {
			case apiKey == "":
				rejectKey(w, r, constants.ErrAPIKeyMissing)
			case !knownKey(allowed, apiKey):
				rejectKey(w, r, constants.ErrAPIKeyInvalid)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// knownKey compares against every key so the time taken does not reveal
// which one matched.
func knownKey(allowed [][]byte, key string) bool {
	found := 0
	for _, a := range allowed {
		found |= subtle.ConstantTimeCompare(a, []byte(key))
	}
	return found == 1
}

func rejectKey(w http.ResponseWriter, r *http.Request, apiErr constants.APIError) {
	logger.Warn("owner route rejected",
		zap.String("code", apiErr.Code),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", httputils.ClientIP(r)),
	)
	httputils.WriteAPIError(w, r, apiErr)
}
