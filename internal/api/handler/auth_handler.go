package handler

import (
	"errors"
	"net/http"
	"tecrank_admin/internal/api/middleware"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/common/security"
	"tecrank_admin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

type AuthHandler struct {
	rd          *Renderer
	authService *service.AuthService
}

func NewAuthHandler(rd *Renderer, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{rd: rd, authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.loginPage)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type loginPage struct {
	Email  string
	Error  string
	Fields map[string]string
}

type loginResponse struct {
	*service.LoginResult
	CSRFToken string `json:"csrfToken"`
}

func (h *AuthHandler) loginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok && sess.IsLoggedIn(r.Context()) {
		http.Redirect(w, r, service.HomeRoute, http.StatusSeeOther)
		return
	}
	if !middleware.IsHTMLRequest(r) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"csrfToken": csrf.Token(r)})
		return
	}
	h.rd.render(w, r, http.StatusOK, "login", "Entrar", loginPage{})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := bind(r, &req, func(get func(string) string) {
		req.Email = get("email")
		req.Password = get("password")
	}); err != nil {
		common.RespondWithAPIError(w, err)
		return
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.loginFailed(w, r, req, err)
		return
	}

	token, err := security.GenerateSessionToken(res.Session.ID())
	if err != nil {
		logger.Log.Error("signing session token", zap.Error(err))
		common.RespondWithError(w, http.StatusInternalServerError, "Não foi possível iniciar a sessão.")
		return
	}
	h.rd.setSessionCookie(w, token)

	if isJSONBody(r) || (!middleware.IsHTMLRequest(r) && wantsJSON(r)) {
		common.RespondWithJSON(w, http.StatusOK, loginResponse{LoginResult: res, CSRFToken: csrf.Token(r)})
		return
	}
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, req service.LoginRequest, err error) {
	if isJSONBody(r) || !middleware.IsHTMLRequest(r) {
		common.RespondWithAPIError(w, err)
		return
	}
	data := loginPage{Email: req.Email, Error: common.UserMessage(err)}
	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		data.Fields = vErr.Fields
		data.Error = ""
	}
	h.rd.render(w, r, common.HTTPStatusFromError(err), "login", "Entrar", data)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	if err := h.authService.Logout(r.Context(), sess); err != nil {
		logger.Log.Warn("logout failed", zap.Error(err))
	}
	h.rd.clearSessionCookie(w)
	if middleware.IsHTMLRequest(r) || (isFormPost(r) && !wantsJSON(r)) {
		http.Redirect(w, r, service.LoginRoute, http.StatusSeeOther)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"redirect": service.LoginRoute})
}
