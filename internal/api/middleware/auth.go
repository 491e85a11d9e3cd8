package middleware

import (
	"net/http"
	"strings"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/common/security"
	"tecrank_admin/internal/platform/logger"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

// SessionLoader resolves the sid claim of the dashboard cookie into a session handle and
// binds it to the request context, which also makes it the backend client's token source
// and 401 handler. Requests without a valid cookie continue anonymously.
//
// onExpired runs after the request when the backend rejected the session's token.
func SessionLoader(sessions *session.Manager, onExpired func(sid string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			sid, err := security.GetSessionIDFromClaims(claims)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess := sessions.Open(sid)
			if err := sess.Init(r.Context()); err != nil {
				logger.Log.Error("session init failed", zap.String("sid", sid), zap.Error(err))
				common.RespondWithError(w, http.StatusServiceUnavailable, "Sessão indisponível no momento.")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))

			if sess.Expired() && onExpired != nil {
				onExpired(sid)
			}
		})
	}
}

// RequireLogin lets only requests whose session still holds a backend token through.
// Browsers are sent to the login page, API clients get a 401.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if ok && sess.IsLoggedIn(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}
		if IsHTMLRequest(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		common.RespondWithJSON(w, http.StatusUnauthorized, common.ErrorResponse{
			Error:    "Faça login para continuar.",
			Kind:     common.KindAuth,
			Redirect: "/login",
		})
	})
}

// IsHTMLRequest reports whether the client asked for a page rather than JSON.
func IsHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}
