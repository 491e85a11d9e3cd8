package api

import (
	"crypto/sha256"
	"net/http"
	"tecrank_admin/internal/api/handler"
	"tecrank_admin/internal/api/middleware"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/common/security"
	"tecrank_admin/internal/platform/config"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/gorilla/csrf"
)

// Services is everything the routes call into.
type Services struct {
	Sessions      *session.Manager
	Auth          *service.AuthService
	Collaborators *service.CollaboratorService
	Sectors       *service.SectorService
	Subjects      *service.SubjectService
	Tutorials     *service.TutorialService
	Evaluations   *service.EvaluationService
	Exports       *service.ExportService
	Ranking       *service.RankingService
}

func NewRouter(cfg *config.Config, svc Services) (http.Handler, error) {
	rd, err := handler.NewRenderer(cfg.CookieSecret, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	// Report exports may use the slow backend timeout.
	r.Use(chiMiddleware.Timeout(cfg.BackendSlowTimeout + 5*time.Second))

	r.Use(CSRF(cfg))

	// The dashboard token travels in the "jwt" cookie or an Authorization header.
	r.Use(jwtauth.Verifier(security.TokenAuth))
	r.Use(middleware.SessionLoader(svc.Sessions, svc.Auth.Expired))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	handler.NewAuthHandler(rd, svc.Auth).RegisterRoutes(r)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireLogin)

		handler.NewRankingHandler(rd, svc.Ranking).RegisterRoutes(pr)
		pr.Route("/colaboradores", handler.NewCollaboratorHandler(rd, svc.Collaborators).RegisterRoutes)
		pr.Route("/setores", handler.NewSectorHandler(rd, svc.Sectors).RegisterRoutes)
		pr.Route("/assuntos", handler.NewSubjectHandler(rd, svc.Subjects).RegisterRoutes)
		pr.Route("/tutoriais", handler.NewTutorialHandler(rd, svc.Tutorials).RegisterRoutes)
		pr.Route("/avaliacoes", handler.NewEvaluationHandler(rd, svc.Evaluations).RegisterRoutes)
		pr.Route("/relatorios", handler.NewExportHandler(rd, svc.Exports).RegisterRoutes)
	})

	return r, nil
}

// CSRF protects every unsafe method. Forms carry the token as a hidden field, API
// clients send it in X-CSRF-Token after reading it from GET /login.
func CSRF(cfg *config.Config) func(http.Handler) http.Handler {
	key := sha256.Sum256(cfg.CookieSecret)
	protect := csrf.Protect(key[:],
		csrf.Secure(cfg.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			common.RespondWithError(w, http.StatusForbidden, "Requisição recusada: token de segurança inválido.")
		})),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if cfg.SecureCookies {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
