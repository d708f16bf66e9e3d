package httpx

import "net/http"

// RequireRole forbids the request unless the authenticated subject carries
// the given role. Must run after AuthnMiddleware.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if roleFromContext(r.Context()) != role {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":             "forbidden",
					"error_description": "insufficient privileges",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
