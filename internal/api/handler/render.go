package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"tecrank_admin/internal/api/middleware"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/common/security"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/logger"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashSession  = "tecrank_flash"
	csrfFieldName = "gorilla.csrf.Token"
)

// Raw HTML in tutorial descriptions is escaped: WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var pages = []string{
	"login", "ranking", "collaborators", "collaborator", "confirm", "sectors",
	"subjects", "checklist", "tutorials", "error",
}

// Renderer is shared by every handler: templates, flash messages and the common
// answers for screen outcomes.
type Renderer struct {
	templates map[string]*template.Template
	flashes   *sessions.CookieStore
	secure    bool
}

func NewRenderer(cookieSecret []byte, secure bool) (*Renderer, error) {
	funcs := template.FuncMap{
		"markdown": renderMarkdown,
		"itoa":     strconv.Itoa,
	}
	rd := &Renderer{templates: make(map[string]*template.Template, len(pages)), secure: secure}
	for _, name := range pages {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, common.Errorf("parsing template %s: %w", name, err)
		}
		rd.templates[name] = tpl
	}

	store := sessions.NewCookieStore(cookieSecret)
	store.Options = &sessions.Options{Path: "/", MaxAge: 300, HttpOnly: true, Secure: secure, SameSite: http.SameSiteLaxMode}
	rd.flashes = store
	return rd, nil
}

// page is what every template receives.
type page struct {
	Title     string
	User      *model.Identity
	Prefs     model.Preferences
	Flashes   []string
	CSRFField template.HTML
	Form      formState
	Data      any
}

type formKey struct{}

// formState is a rejected form shown again on its page: the message of each invalid
// field and what had been typed.
type formState struct {
	Fields map[string]string
	Values map[string]string
}

func (f formState) Invalid() bool             { return len(f.Fields) > 0 }
func (f formState) Error(field string) string { return f.Fields[field] }
func (f formState) Value(field string) string { return f.Values[field] }

func formFrom(r *http.Request) (formState, bool) {
	f, ok := r.Context().Value(formKey{}).(formState)
	return f, ok
}

// submitted copies the text fields of a parsed form. Files are never echoed back.
func submitted(r *http.Request) map[string]string {
	values := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if k == csrfFieldName || len(v) == 0 {
			continue
		}
		values[k] = v[0]
	}
	return values
}

func (rd *Renderer) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	tpl, ok := rd.templates[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}
	p := page{Title: title, Flashes: rd.popFlashes(w, r), CSRFField: csrf.TemplateField(r), Data: data}
	if f, ok := formFrom(r); ok {
		p.Form = f
		if status == http.StatusOK {
			status = http.StatusBadRequest
		}
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		p.User, _ = sess.User(r.Context())
		p.Prefs, _ = sess.Preferences(r.Context())
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		logger.Log.Error("render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// respond renders name for browsers and writes payload as JSON otherwise.
func (rd *Renderer) respond(w http.ResponseWriter, r *http.Request, name, title string, payload any) {
	if _, rejected := formFrom(r); rejected || middleware.IsHTMLRequest(r) {
		rd.render(w, r, http.StatusOK, name, title, payload)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, payload)
}

func (rd *Renderer) flash(w http.ResponseWriter, r *http.Request, msg string) {
	s, _ := rd.flashes.Get(r, flashSession)
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		logger.Log.Warn("saving flash", zap.Error(err))
	}
}

func (rd *Renderer) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	s, _ := rd.flashes.Get(r, flashSession)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		logger.Log.Warn("saving flash", zap.Error(err))
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (rd *Renderer) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(security.TokenExpiry().Seconds()),
		HttpOnly: true,
		Secure:   rd.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rd *Renderer) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rd.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// expired answers a request whose session the backend rejected: the session storage is
// already empty, the browser is sent to the login page once with a notice.
func (rd *Renderer) expired(w http.ResponseWriter, r *http.Request) {
	rd.clearSessionCookie(w)
	if middleware.IsHTMLRequest(r) {
		rd.flash(w, r, common.MsgSessionExpired)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	common.RespondWithJSON(w, http.StatusUnauthorized, common.ErrorResponse{
		Error:    common.MsgSessionExpired,
		Kind:     common.KindAuth,
		Redirect: "/login",
	})
}

type retryPage struct {
	Message string
	Retry   string
}

// outcome answers a load that did not reach ready and reports whether it did so.
func (rd *Renderer) outcome(w http.ResponseWriter, r *http.Request, out screen.Outcome) bool {
	if out.Ready() {
		return false
	}
	if out.AuthExpired {
		rd.expired(w, r)
		return true
	}
	status := common.HTTPStatusFromError(out.Err)
	logger.Log.Warn("screen load failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(out.Err))
	if middleware.IsHTMLRequest(r) {
		rd.render(w, r, status, "error", "Erro", retryPage{Message: out.Message, Retry: r.URL.RequestURI()})
		return true
	}
	resp := common.ErrorResponse{Error: out.Message, Kind: common.KindOf(out.Err), Retry: r.URL.RequestURI()}
	var vErr *common.ValidationError
	if errors.As(out.Err, &vErr) {
		resp.Fields = vErr.Fields
	}
	common.RespondWithJSON(w, status, resp)
	return true
}

// fail answers a single call that returned err.
func (rd *Renderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case common.IsAuth(err):
		rd.expired(w, r)
	case errors.Is(err, screen.ErrStale):
		common.RespondWithError(w, http.StatusConflict, "Outra seleção substituiu esta requisição.")
	default:
		rd.outcome(w, r, screen.Outcome{State: screen.StateError, Message: common.UserMessage(err), Err: err})
	}
}

// mutation answers a create, update or delete. Browsers are redirected back to the list
// with a notice; the list data itself is never discarded on failure.
func (rd *Renderer) mutation(w http.ResponseWriter, r *http.Request, res screen.Result, back, done string, payload any) {
	if res.AuthExpired {
		rd.expired(w, r)
		return
	}
	if fromBrowser(r) {
		if res.OK() {
			rd.flash(w, r, done)
		} else {
			rd.flash(w, r, res.Notice)
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if !res.OK() {
		common.RespondWithAPIError(w, res.Err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, payload)
}

// saved answers a create or update. A browser form that failed validation is shown
// again by relist, with a message next to each invalid field and the typed values kept.
func (rd *Renderer) saved(w http.ResponseWriter, r *http.Request, res screen.Result, relist http.HandlerFunc, back, done string, payload any) {
	var vErr *common.ValidationError
	if !res.OK() && fromBrowser(r) && errors.As(res.Err, &vErr) {
		f := formState{Fields: vErr.Fields, Values: submitted(r)}
		relist(w, r.WithContext(context.WithValue(r.Context(), formKey{}, f)))
		return
	}
	rd.mutation(w, r, res, back, done, payload)
}

func fromBrowser(r *http.Request) bool {
	return middleware.IsHTMLRequest(r) || (isFormPost(r) && !wantsJSON(r))
}

func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func queryFrom(r *http.Request) screen.Query {
	q := r.URL.Query()
	return screen.Query{
		Term:    q.Get("busca"),
		Status:  q.Get("filtro"),
		SortKey: q.Get("ordem"),
		Desc:    q.Get("dir") == "desc",
	}
}
