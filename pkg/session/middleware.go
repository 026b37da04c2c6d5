package session

import "net/http"

// Middleware ensures every request carries a session and injects it into
// the request context. Downstream handlers read it with FromContext; the
// push connection handler reads the channel binding from it exactly once,
// at connection-open time.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.Ensure(r.Context(), w, r)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
